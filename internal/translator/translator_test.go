// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/cache"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

func completionServer(t *testing.T, status int, content string, seen *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			*seen = append(*seen, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"upstream said no","type":"server_error"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOpenAI(url string) *OpenAI {
	return NewOpenAI(OpenAIConfig{BaseURL: url, APIKey: "test", Model: "test-model", Temperature: 0.2})
}

func TestOpenAI_Translate(t *testing.T) {
	var seen []map[string]any
	srv := completionServer(t, http.StatusOK, "Bienvenue à Gozo", &seen)

	out, err := newTestOpenAI(srv.URL).Translate(context.Background(), Request{
		Text: "Welcome to Gozo", SourceLocale: "en", TargetLocale: "fr", Context: "HomePage/hero#title",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bienvenue à Gozo", out)

	require.Len(t, seen, 1)
	assert.Equal(t, "test-model", seen[0]["model"])
	msgs := seen[0]["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].(map[string]any)["content"], "from English to French")
	assert.Contains(t, msgs[1].(map[string]any)["content"], "Welcome to Gozo")
}

func TestOpenAI_ErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := completionServer(t, tt.status, "", nil)
			_, err := newTestOpenAI(srv.URL).Translate(context.Background(), Request{Text: "x", SourceLocale: "en", TargetLocale: "fr"})

			var capErr *reconcile.TranslationCapabilityError
			require.True(t, errors.As(err, &capErr))
			assert.Equal(t, tt.retryable, capErr.Retryable)
		})
	}
}

func TestOpenAI_EmptyTextIsRetryable(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "  ", nil)
	_, err := newTestOpenAI(srv.URL).Translate(context.Background(), Request{Text: "x", SourceLocale: "en", TargetLocale: "fr"})

	var capErr *reconcile.TranslationCapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.True(t, capErr.Retryable)
}

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, "Hallo", cleanResponse("```\nHallo\n```"))
	assert.Equal(t, "Hallo", cleanResponse("```text\nHallo\n```"))
	assert.Equal(t, " Hallo ", cleanResponse(" Hallo "))
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Translate(context.Background(), Request{})
	var capErr *reconcile.TranslationCapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.False(t, capErr.Retryable)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	inner := Func(func(_ context.Context, req Request) (string, error) {
		calls.Add(1)
		return req.Text + "@" + req.TargetLocale, nil
	})
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = mc.Close() }()

	c := NewCached(inner, mc, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	req := Request{Text: "Hello", SourceLocale: "en", TargetLocale: "de"}

	for range 3 {
		out, err := c.Translate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Hello@de", out)
	}
	assert.Equal(t, int32(1), calls.Load())

	req.Fresh = true
	_, err := c.Translate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "fresh requests bypass the cache")

	_, err = c.Translate(ctx, Request{Text: "Hello", SourceLocale: "en", TargetLocale: "fr"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	inner := Func(func(context.Context, Request) (string, error) {
		calls.Add(1)
		return "", &reconcile.TranslationCapabilityError{Retryable: true, Err: errors.New("boom")}
	})
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = mc.Close() }()

	c := NewCached(inner, mc, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	req := Request{Text: "Hello", SourceLocale: "en", TargetLocale: "de"}
	_, err := c.Translate(context.Background(), req)
	assert.Error(t, err)
	_, err = c.Translate(context.Background(), req)
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCached_FailedFreshRequestDropsStoredValue(t *testing.T) {
	fail := false
	inner := Func(func(_ context.Context, req Request) (string, error) {
		if fail {
			return "", &reconcile.TranslationCapabilityError{Err: errors.New("quota exceeded")}
		}
		return req.Text + "@" + req.TargetLocale, nil
	})
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = mc.Close() }()

	c := NewCached(inner, mc, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	req := Request{Text: "Hello", SourceLocale: "en", TargetLocale: "de"}

	_, err := c.Translate(ctx, req)
	require.NoError(t, err)
	_, err = mc.Get(ctx, Key(req))
	require.NoError(t, err)

	fail = true
	req.Fresh = true
	_, err = c.Translate(ctx, req)
	require.Error(t, err)

	_, err = mc.Get(ctx, Key(req))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestKey_Distinct(t *testing.T) {
	a := Key(Request{Text: "ab", SourceLocale: "en", TargetLocale: "de"})
	b := Key(Request{Text: "b", SourceLocale: "en", TargetLocale: "de"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key(Request{Text: "ab", SourceLocale: "en", TargetLocale: "de", Fresh: true}))
}
