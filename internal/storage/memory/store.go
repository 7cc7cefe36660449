package memory

import (
	"bytes"
	"context"
	"sync/atomic"

	"github.com/yndnr/respkv/internal/storage"
	"github.com/yndnr/respkv/pkg/cmap"
)

// Store is an in-memory key/value store.
type Store struct {
	items  *cmap.Map[string, []byte]
	closed atomic.Bool
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShardCount sets the number of map shards (power of two).
func WithShardCount(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		items: cmap.NewWithShards[string, []byte](o.shards),
	}
}

// Get returns a copy of the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	v, ok := s.items.Get(key)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

// Set stores a copy of value at key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	s.items.Set(key, v)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.items.Count()
}

// Close drops all data. Further calls fail with storage.ErrClosed.
func (s *Store) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.items.Clear()
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
