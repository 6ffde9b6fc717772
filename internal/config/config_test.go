// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/gozo.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/gozo.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.SourceLocale != "en" {
		t.Errorf("SourceLocale = %q, want %q", cfg.SourceLocale, "en")
	}
	assert.Equal(t, []string{"en", "fr", "de", "it", "nl", "es", "pt"}, cfg.Locales)
	assert.Equal(t, []string{"*_url", "url", "*_href"}, cfg.OpaqueFields)
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.False(t, cfg.UseRedisCache())
	assert.False(t, cfg.AuditEnabled())
	assert.Equal(t, 10.0, cfg.APIRateLimit)
	assert.Equal(t, 20, cfg.APIRateBurst)
	assert.Empty(t, cfg.AdminToken)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "GOZO_DB_PATH", "/custom/path.db")
	setEnv(t, "GOZO_SERVER_HOST", "0.0.0.0")
	setEnv(t, "GOZO_SERVER_PORT", "3000")
	setEnv(t, "GOZO_LOG_LEVEL", "debug")
	setEnv(t, "GOZO_SOURCE_LOCALE", "fr")
	setEnv(t, "GOZO_LOCALES", "fr,en,de")
	setEnv(t, "GOZO_BACKFILL_MAX_BACKOFF", "2m")
	setEnv(t, "GOZO_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "GOZO_AUDIT_SCHEDULE", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.ServerAddr())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"fr", "en", "de"}, cfg.Locales)
	assert.Equal(t, 2*time.Minute, cfg.MaxBackoff)
	assert.True(t, cfg.UseRedisCache())
	assert.True(t, cfg.AuditEnabled())

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, "fr", reg.Source())
	assert.Equal(t, []string{"en", "de"}, reg.Targets())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"source not in locales", map[string]string{"GOZO_SOURCE_LOCALE": "ja"}},
		{"bad log level", map[string]string{"GOZO_LOG_LEVEL": "verbose"}},
		{"zero attempts", map[string]string{"GOZO_BACKFILL_MAX_ATTEMPTS": "0"}},
		{"zero concurrency", map[string]string{"GOZO_BACKFILL_CONCURRENCY": "0"}},
		{"backoff inverted", map[string]string{
			"GOZO_BACKFILL_INITIAL_BACKOFF": "1m",
			"GOZO_BACKFILL_MAX_BACKOFF":     "1s",
		}},
		{"negative rate", map[string]string{"GOZO_BACKFILL_RATE_LIMIT": "-1"}},
		{"zero api rate", map[string]string{"GOZO_API_RATE_LIMIT": "0"}},
		{"unparseable port", map[string]string{"GOZO_SERVER_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel_DefaultsToInfo(t *testing.T) {
	cfg := Config{LogLevel: "info"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestPolicy(t *testing.T) {
	os.Clearenv()
	setEnv(t, "GOZO_BACKFILL_CONCURRENCY", "8")
	setEnv(t, "GOZO_BACKFILL_RATE_LIMIT", "0")

	cfg, err := Load()
	require.NoError(t, err)

	p := cfg.Policy()
	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, 8, p.Concurrency)
	assert.Equal(t, time.Minute, p.DispatchTimeout)
	assert.Zero(t, p.RateLimit)
}
