// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/cache"
)

// Cached memoizes translations of identical (source, target, text) triples.
// Fresh requests drop the stored value before delegating, so a failed
// retranslation never leaves the rejected translation behind for later
// fills, and store the new value on success.
type Cached struct {
	next   Translator
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next with c.
func NewCached(next Translator, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl, logger: logger}
}

// Key returns the cache key of req.
func Key(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.SourceLocale))
	h.Write([]byte{0})
	h.Write([]byte(req.TargetLocale))
	h.Write([]byte{0})
	h.Write([]byte(req.Text))
	return "tr:" + hex.EncodeToString(h.Sum(nil))
}

// Translate returns a cached translation or delegates to the wrapped Translator.
func (c *Cached) Translate(ctx context.Context, req Request) (string, error) {
	key := Key(req)
	if req.Fresh {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Debug("translation cache delete failed", "error", err)
		}
	} else {
		b, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			return string(b), nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Debug("translation cache read failed", "error", err)
		}
	}

	out, err := c.next.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, []byte(out), c.ttl); err != nil {
		c.logger.Debug("translation cache write failed", "error", err)
	}
	return out, nil
}
