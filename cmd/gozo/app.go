// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/backfill"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/cache"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/config"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/logging"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/store"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/translator"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	reg      *locale.Registry
	db       *sql.DB
	store    *store.Store
	cache    cache.Cache
	backfill *backfill.Orchestrator
	logger   *slog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("building locale registry: %w", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade logger to also write WARN and ERROR logs to the event table
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	s := store.NewStore(db, reg)
	if err := s.EnsureColumns(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("preparing category columns: %w", err)
	}
	slog.Info("database ready", "source", reg.Source(), "locales", reg.Locales())

	ttl := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      ttl,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: 5 * time.Minute,
	}, logger)

	var tr translator.Translator = translator.Unavailable{}
	if cfg.TranslatorAPIKey != "" {
		tr = translator.NewOpenAI(translator.OpenAIConfig{
			BaseURL:     cfg.TranslatorBaseURL,
			APIKey:      cfg.TranslatorAPIKey,
			Model:       cfg.TranslatorModel,
			Temperature: cfg.TranslatorTemperature,
		})
	} else {
		logger.Warn("no translator API key configured; backfill tasks will fail",
			"category", "config")
	}
	tr = translator.NewCached(tr, c, ttl, logger)

	return &app{
		cfg:      cfg,
		reg:      reg,
		db:       db,
		store:    s,
		cache:    c,
		backfill: backfill.New(s, tr, reg, cfg.Policy(), logger),
		logger:   logger,
	}, nil
}

// Close releases the cache and database.
func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("error closing cache", "error", err)
	}
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database connection", "error", err)
	}
}
