package cache

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/config"
)

// CacheService layers the in-process LRU in front of an optional
// persistent cache. Hits from the persistent layer are copied forward with
// their original expiry.
type CacheService struct {
	front *LRUCache
	back  PredictionCache
}

func NewTieredCache(front *LRUCache, back PredictionCache) *CacheService {
	return &CacheService{front: front, back: back}
}

// NewCacheService builds the cache layers selected by cfg. DynamoDB takes
// precedence over the file cache when both are configured.
func NewCacheService(ctx context.Context, cfg *config.CacheConfig) (*CacheService, error) {
	front, err := NewLRUCache(cfg.LRUSize)
	if err != nil {
		return nil, err
	}

	var back PredictionCache
	switch {
	case cfg.EnableDynamoCache:
		client, err := NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		back = NewDynamoCache(client, cfg)
		log.Info().Str("table", cfg.DynamoTable).Msg("Using DynamoDB prediction cache")
	case cfg.FilePath != "":
		back = NewFileCache(cfg.FilePath)
		log.Info().Str("path", cfg.FilePath).Msg("Using file prediction cache")
	}

	return NewTieredCache(front, back), nil
}

func (s *CacheService) Get(ctx context.Context, stationID string) (*Entry, error) {
	if entry, _ := s.front.Get(ctx, stationID); entry != nil {
		return entry, nil
	}
	if s.back == nil {
		return nil, nil
	}

	entry, err := s.back.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	if err := s.front.Set(ctx, *entry); err != nil {
		log.Warn().Err(err).Str("station_id", stationID).Msg("Failed to backfill LRU cache")
	}
	return entry, nil
}

// Set writes through every layer. A persistent layer failure is reported
// but the LRU still holds the entry.
func (s *CacheService) Set(ctx context.Context, entry Entry) error {
	if err := s.front.Set(ctx, entry); err != nil {
		return err
	}
	if s.back == nil {
		return nil
	}
	return s.back.Set(ctx, entry)
}

// GetCacheStats returns statistics about cache hits and misses
func (s *CacheService) GetCacheStats() map[string]uint64 {
	return s.front.GetCacheStats()
}
