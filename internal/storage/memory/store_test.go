package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yndnr/respkv/internal/storage"
)

func TestStore_SetGet(t *testing.T) {
	s := New()
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
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_NotFound(t *testing.T) {
	s := New()

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_CopiesValues(t *testing.T) {
	s := New()
	ctx := context.Background()

	value := []byte("abc")
	_ = s.Set(ctx, "k", value)
	value[0] = 'X'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed through caller slice: %q", got)
	}

	got[1] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %q", again)
	}
}

func TestStore_EmptyValue(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.Set(ctx, "empty", nil)
	got, err := s.Get(ctx, "empty")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestStore_Close(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"))

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Get() error = %v, want ErrClosed", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Set() error = %v, want ErrClosed", err)
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := New(WithShardCount(4))
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d-%d", w, i)
				if err := s.Set(ctx, key, []byte(key)); err != nil {
					t.Errorf("Set() error = %v", err)
					return
				}
				got, err := s.Get(ctx, key)
				if err != nil || string(got) != key {
					t.Errorf("Get(%s) = %q, %v", key, got, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != 8*200 {
		t.Errorf("Len() = %d, want %d", s.Len(), 8*200)
	}
}

func TestSeed(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := storage.Seed(ctx, s, map[string]string{"ping": "pong"}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	got, err := s.Get(ctx, "ping")
	if err != nil || string(got) != "pong" {
		t.Errorf("Get(ping) = %q, %v", got, err)
	}
}
