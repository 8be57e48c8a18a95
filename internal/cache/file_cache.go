package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/metrics"
)

// FileCache persists entries as a single JSON document keyed by station so
// a CLI run can reuse the previous run's fetch.
type FileCache struct {
	path  string
	clock clock
	mu    sync.Mutex
}

func NewFileCache(path string) *FileCache {
	return &FileCache{
		path:  path,
		clock: systemClock{},
	}
}

func (c *FileCache) Get(_ context.Context, stationID string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return nil, err
	}

	entry, ok := entries[stationID]
	if !ok || !entry.Valid(c.clock.Now()) {
		metrics.ObserveCache("file", false)
		return nil, nil
	}

	metrics.ObserveCache("file", true)
	return entry, nil
}

func (c *FileCache) Set(_ context.Context, entry Entry) error {
	if entry.StationID == "" {
		return fmt.Errorf("station ID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Discarding unreadable cache file")
		entries = make(map[string]*Entry)
	}

	now := c.clock.Now()
	for id, e := range entries {
		if !e.Valid(now) {
			delete(entries, id)
		}
	}
	entries[entry.StationID] = &entry

	return c.save(entries)
}

func (c *FileCache) load() (map[string]*Entry, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]*Entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	entries := make(map[string]*Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding cache file: %w", err)
	}
	return entries, nil
}

func (c *FileCache) save(entries map[string]*Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache file: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
