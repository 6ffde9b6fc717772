// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("GOZO_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: GOZO_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Basic(t *testing.T) {
	url := skipIfNoRedis(t)

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "gozo-test:"
	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_ = cache.Clear(ctx)

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("got %q, want v", got)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after Clear, got %v", err)
	}
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
