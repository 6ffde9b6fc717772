// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/backfill"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"GOZO_DB_PATH" envDefault:"./data/gozo.db"`
	ServerHost string `env:"GOZO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"GOZO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"GOZO_ENV" envDefault:"development"`
	LogLevel   string `env:"GOZO_LOG_LEVEL" envDefault:"info"`

	// Locale registry
	SourceLocale string   `env:"GOZO_SOURCE_LOCALE" envDefault:"en"`
	Locales      []string `env:"GOZO_LOCALES" envDefault:"en,fr,de,it,nl,es,pt" envSeparator:","`
	OpaqueFields []string `env:"GOZO_OPAQUE_FIELDS" envDefault:"*_url,url,*_href" envSeparator:","`

	// Backfill retry policy
	MaxAttempts     int           `env:"GOZO_BACKFILL_MAX_ATTEMPTS" envDefault:"4"`
	InitialBackoff  time.Duration `env:"GOZO_BACKFILL_INITIAL_BACKOFF" envDefault:"1s"`
	MaxBackoff      time.Duration `env:"GOZO_BACKFILL_MAX_BACKOFF" envDefault:"30s"`
	DispatchTimeout time.Duration `env:"GOZO_BACKFILL_DISPATCH_TIMEOUT" envDefault:"60s"`
	Concurrency     int           `env:"GOZO_BACKFILL_CONCURRENCY" envDefault:"4"`
	RateLimit       float64       `env:"GOZO_BACKFILL_RATE_LIMIT" envDefault:"2"` // requests per second, 0 = unlimited

	// Translation capability (any OpenAI-compatible endpoint)
	TranslatorBaseURL     string  `env:"GOZO_TRANSLATOR_BASE_URL" envDefault:"https://api.openai.com/v1"`
	TranslatorAPIKey      string  `env:"GOZO_TRANSLATOR_API_KEY"`
	TranslatorModel       string  `env:"GOZO_TRANSLATOR_MODEL" envDefault:"gpt-4o-mini"`
	TranslatorTemperature float64 `env:"GOZO_TRANSLATOR_TEMPERATURE" envDefault:"0.2"`

	// Cache configuration
	RedisURL     string `env:"GOZO_REDIS_URL"`                           // Optional Redis URL for the translation cache
	CachePrefix  string `env:"GOZO_CACHE_PREFIX" envDefault:"gozo:"`     // Redis key prefix
	CacheTTL     int    `env:"GOZO_CACHE_TTL" envDefault:"86400"`        // Translation cache TTL in seconds
	CacheMaxSize int    `env:"GOZO_CACHE_MAX_SIZE" envDefault:"10000"`   // Max memory cache entries

	// Cron spec for the read-only reconciliation audit; empty disables it
	AuditSchedule string `env:"GOZO_AUDIT_SCHEDULE"`

	// Admin API
	AdminToken   string  `env:"GOZO_ADMIN_TOKEN"`                       // Bearer token for mutating routes; empty disables auth
	APIRateLimit float64 `env:"GOZO_API_RATE_LIMIT" envDefault:"10"`    // Requests per second per client IP
	APIRateBurst int     `env:"GOZO_API_RATE_BURST" envDefault:"20"`
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AuditEnabled returns true if the scheduled audit scan is configured.
func (c Config) AuditEnabled() bool {
	return c.AuditSchedule != ""
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Registry builds the locale registry described by the configuration.
func (c Config) Registry() (*locale.Registry, error) {
	return locale.NewRegistry(c.SourceLocale, c.Locales, c.OpaqueFields)
}

// Policy returns the backfill retry policy described by the configuration.
func (c Config) Policy() backfill.Policy {
	return backfill.Policy{
		MaxAttempts:     c.MaxAttempts,
		InitialBackoff:  c.InitialBackoff,
		MaxBackoff:      c.MaxBackoff,
		DispatchTimeout: c.DispatchTimeout,
		Concurrency:     c.Concurrency,
		RateLimit:       c.RateLimit,
	}
}

// Load parses environment variables and returns a validated Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("GOZO_LOG_LEVEL must be one of %v, got %q", validLogLevels, c.LogLevel))
	}
	if !slices.Contains(c.Locales, c.SourceLocale) {
		errs = append(errs, fmt.Errorf("GOZO_SOURCE_LOCALE %q is not listed in GOZO_LOCALES", c.SourceLocale))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("GOZO_BACKFILL_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("GOZO_BACKFILL_CONCURRENCY must be at least 1, got %d", c.Concurrency))
	}
	if c.InitialBackoff > c.MaxBackoff {
		errs = append(errs, fmt.Errorf("GOZO_BACKFILL_INITIAL_BACKOFF (%s) exceeds GOZO_BACKFILL_MAX_BACKOFF (%s)",
			c.InitialBackoff, c.MaxBackoff))
	}
	if c.DispatchTimeout <= 0 {
		errs = append(errs, errors.New("GOZO_BACKFILL_DISPATCH_TIMEOUT must be positive"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("GOZO_BACKFILL_RATE_LIMIT must not be negative"))
	}

	if c.APIRateLimit <= 0 || c.APIRateBurst < 1 {
		errs = append(errs, errors.New("GOZO_API_RATE_LIMIT and GOZO_API_RATE_BURST must be positive"))
	}
	if !c.IsDevelopment() && c.AdminToken == "" {
		slog.Warn("GOZO_ADMIN_TOKEN is empty; mutating API routes are unauthenticated", "category", "config")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
