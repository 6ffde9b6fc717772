// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL: time.Hour,
		MaxSize:    100,
	})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "key1"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("x"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
	if got := cache.Stats().Items; got != 0 {
		t.Errorf("Items = %d after expiry, want 0", got)
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 2})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)
	if _, err := cache.Get(ctx, "a"); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	_ = cache.Set(ctx, "c", []byte("3"), 0)

	if _, err := cache.Get(ctx, "b"); err != ErrCacheMiss {
		t.Errorf("expected b to be evicted, got %v", err)
	}
	for _, k := range []string{"a", "c"} {
		if _, err := cache.Get(ctx, k); err != nil {
			t.Errorf("expected %s to remain, got %v", k, err)
		}
	}
	if got := cache.Stats().Items; got != 2 {
		t.Errorf("Items = %d, want 2", got)
	}
}

func TestMemoryCache_ValueIsCopied(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	buf := []byte("hello")
	_ = cache.Set(ctx, "k", buf, 0)
	buf[0] = 'J'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "hello" {
		t.Errorf("cached value mutated: %s", got)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", s.HitRate)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, CleanupInterval: time.Millisecond})
	_ = cache.Close()
	_ = cache.Close()

	if _, err := cache.Get(context.Background(), "k"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 50})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i*100+j)%75)
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
			}
		}()
	}
	wg.Wait()

	if got := cache.Stats().Items; got > 50 {
		t.Errorf("Items = %d, exceeds MaxSize", got)
	}
}

func TestNew_FallsBackToMemory(t *testing.T) {
	c := New(Config{RedisURL: "redis://127.0.0.1:1/0", DefaultTTL: time.Minute}, testLogger())
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("expected *MemoryCache fallback, got %T", c)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := cache.Stats().Items; got != 0 {
		t.Errorf("Items = %d after Clear, want 0", got)
	}
	if _, err := cache.Get(ctx, "a"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after Clear, got %v", err)
	}
}
