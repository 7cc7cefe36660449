package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()

	cfg := DefaultBadgerConfig(t.TempDir())
	cfg.GCInterval = time.Hour // keep auto GC out of the way
	cfg.CacheSize = 1 << 20

	s, err := NewBadgerStore(cfg, slog.Default())
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_SetGet(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "ping", []byte("pong")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get(ctx, "ping")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "pong" {
		t.Errorf("Get() = %q, want pong", got)
	}

	if err := s.Set(ctx, "ping", []byte("PONG")); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _ = s.Get(ctx, "ping")
	if string(got) != "PONG" {
		t.Errorf("Get() after overwrite = %q, want PONG", got)
	}
}

func TestBadgerStore_NotFound(t *testing.T) {
	s := newTestBadgerStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultBadgerConfig(dir)
	cfg.GCInterval = time.Hour

	s, err := NewBadgerStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	if err := s.Set(ctx, "durable", []byte("yes")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = NewBadgerStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerStore() reopen error = %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "durable")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "yes" {
		t.Errorf("Get() = %q, want yes", got)
	}
}

func TestBadgerStore_Closed(t *testing.T) {
	s := newTestBadgerStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Second close is a no-op.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() error = %v, want ErrClosed", err)
	}
	if err := s.Set(context.Background(), "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() error = %v, want ErrClosed", err)
	}
}

func TestBadgerStore_GC(t *testing.T) {
	s := newTestBadgerStore(t)

	if _, err := s.GC(context.Background()); err != nil {
		t.Fatalf("GC() error = %v", err)
	}
	if s.Stats().LastGCTime == 0 {
		t.Error("LastGCTime should be set after GC")
	}
}

func TestBadgerStore_RegisterMetrics(t *testing.T) {
	s := newTestBadgerStore(t)
	reg := prometheus.NewRegistry()

	if err := s.RegisterMetrics(reg); err != nil {
		t.Fatalf("RegisterMetrics() error = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 4 {
		t.Errorf("gathered %d metric families, want 4", len(families))
	}

	if err := s.RegisterMetrics(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestNewBadgerStore_RequiresDir(t *testing.T) {
	if _, err := NewBadgerStore(BadgerConfig{}, nil); err == nil {
		t.Error("NewBadgerStore() error = nil, want error for empty dir")
	}
}

// mapStore is a minimal Store for testing Seed.
type mapStore struct {
	data    map[string][]byte
	failKey string
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte) error {
	if key == m.failKey {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *mapStore) Close() error { return nil }

func TestSeed(t *testing.T) {
	s := &mapStore{data: map[string][]byte{}}

	err := Seed(context.Background(), s, map[string]string{"ping": "pong", "a": "b"})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if string(s.data["ping"]) != "pong" || string(s.data["a"]) != "b" {
		t.Errorf("seeded data = %v", s.data)
	}
}

func TestSeed_Error(t *testing.T) {
	s := &mapStore{data: map[string][]byte{}, failKey: "b"}

	err := Seed(context.Background(), s, map[string]string{"a": "1", "b": "2", "c": "3"})
	if err == nil {
		t.Fatal("Seed() error = nil, want error")
	}
	if _, ok := s.data["c"]; ok {
		t.Error("keys after the failing one should not be written")
	}
}
