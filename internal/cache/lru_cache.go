package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/bbernstein/tidechart/internal/metrics"
)

// LRUCache is the in-process layer. Entries carry their own expiry so a
// station fetched late in its day still rolls over at local midnight.
type LRUCache struct {
	lru    *lru.Cache[string, *Entry]
	clock  clock
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewLRUCache(size int) (*LRUCache, error) {
	lruCache, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &LRUCache{
		lru:   lruCache,
		clock: systemClock{},
	}, nil
}

func (c *LRUCache) Get(_ context.Context, stationID string) (*Entry, error) {
	if entry, ok := c.lru.Get(stationID); ok {
		if entry.Valid(c.clock.Now()) {
			c.hits.Add(1)
			metrics.ObserveCache("lru", true)
			return entry, nil
		}
		c.lru.Remove(stationID)
	}

	c.misses.Add(1)
	metrics.ObserveCache("lru", false)
	return nil, nil
}

func (c *LRUCache) Set(_ context.Context, entry Entry) error {
	if entry.StationID == "" {
		return fmt.Errorf("station ID is required")
	}
	c.lru.Add(entry.StationID, &entry)
	return nil
}

// GetCacheStats returns statistics about cache hits and misses
func (c *LRUCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":   c.hits.Load(),
		"lru_misses": c.misses.Load(),
	}
}

// Clear removes all entries from the LRU cache
func (c *LRUCache) Clear() {
	c.lru.Purge()
}
