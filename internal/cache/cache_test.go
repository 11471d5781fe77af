// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss after expiry", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v after delete, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if has, _ := c.Has(ctx, "a"); has {
		t.Error("key should be gone after Clear")
	}
}

func TestMemoryCache_CopyOnGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("abc"), 0)
	got, _ := c.Get(ctx, "k")
	got[0] = 'X'

	again, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("cached value mutated: %q", again)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	c.Close()

	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("err = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(context.Background(), "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("err = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 0)
	c.Get(ctx, "k")
	c.Get(ctx, "nope")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "info:about", []byte("1"), 0)
	c.Set(ctx, "info:contact", []byte("2"), 0)
	c.Set(ctx, "other", []byte("3"), 0)

	if err := c.DeleteByPrefix(ctx, "info:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if has, _ := c.Has(ctx, "info:about"); has {
		t.Error("prefixed key should be gone")
	}
	if has, _ := c.Has(ctx, "other"); !has {
		t.Error("unrelated key should survive")
	}
}

func TestNew_FallsBackToMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0" // nothing listens here
	c := New(cfg)
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected memory fallback, got %T", c)
	}
}
