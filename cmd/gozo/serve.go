// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/handler/api"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/middleware"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/scheduler"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var audit *scheduler.Scheduler
	if a.cfg.AuditEnabled() {
		if err := scheduler.ValidateSchedule(a.cfg.AuditSchedule); err != nil {
			return err
		}
		audit = scheduler.New(a.store, a.reg, a.cfg.AuditSchedule, a.logger)
		if err := audit.Start(); err != nil {
			return err
		}
		defer audit.Stop()
	}

	h := api.NewHandler(api.Deps{
		Store:    a.store,
		Backfill: a.backfill,
		Cache:    a.cache,
		Registry: a.reg,
		Audit:    audit,
		Version:  versionInfo(),
		Logger:   a.logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.NewRateLimiter(a.cfg.APIRateLimit, a.cfg.APIRateBurst).Middleware())

	r.Mount("/api/v1", h.Routes(a.cfg.AdminToken))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Route not found")
	})

	// Backfill runs are synchronous, so the write timeout is generous.
	srv := &http.Server{
		Addr:              a.cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", a.cfg.ServerAddr(), "env", a.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
