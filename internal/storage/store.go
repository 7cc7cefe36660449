package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("store closed")
)

// Engine names accepted in configuration.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
)

// Store is a key/value store safe for concurrent use by many connections.
type Store interface {
	// Get returns the value stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the store's resources.
	Close() error
}

// Seed writes entries into s. Keys are written in sorted order so that a
// failure is reproducible.
func Seed(ctx context.Context, s Store, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := s.Set(ctx, k, []byte(entries[k])); err != nil {
			return fmt.Errorf("seed key %q: %w", k, err)
		}
	}
	return nil
}
