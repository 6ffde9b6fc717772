// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic, read-only reconciliation audit.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// Store is the read surface the audit scans.
type Store interface {
	ListContentEntries(ctx context.Context) ([]model.ContentEntry, error)
	ListCategories(ctx context.Context) ([]model.CategoryRecord, error)
}

// AuditResult summarizes one audit.
type AuditResult struct {
	RanAt          time.Time                `json:"ran_at"`
	Missing        int                      `json:"missing"`
	Stale          int                      `json:"stale"`
	MissingSources int                      `json:"missing_sources"`
	Conflicts      int                      `json:"conflicts"`
	Counts         map[model.TaskReason]int `json:"-"`
}

// Scheduler runs the audit on a cron schedule. It never writes content:
// repairs and backfills stay operator-triggered.
type Scheduler struct {
	store    Store
	reg      *locale.Registry
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu   sync.Mutex
	last *AuditResult
}

// New creates a scheduler for the given five-field cron expression.
func New(store Store, reg *locale.Registry, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		reg:      reg,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// ValidateSchedule reports whether spec is a valid five-field cron expression.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// Start registers the audit job and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunAudit(context.Background()); err != nil {
			s.logger.Error("reconciliation audit failed", "category", model.EventCategoryAudit, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling audit: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running audit.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunAudit scans both stores and logs the findings. Missing sources and
// structural conflicts need a human, so they are logged at WARN.
func (s *Scheduler) RunAudit(ctx context.Context) (*AuditResult, error) {
	entries, err := s.store.ListContentEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading content entries: %w", err)
	}
	records, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	scan := reconcile.Scan(entries, records, s.reg)
	counts := scan.Counts()
	res := &AuditResult{
		RanAt:          time.Now().UTC(),
		Missing:        counts[model.ReasonMissing],
		Stale:          counts[model.ReasonStale],
		MissingSources: len(scan.MissingSources),
		Conflicts:      len(scan.Conflicts),
		Counts:         counts,
	}

	attrs := []any{
		"missing", res.Missing,
		"stale", res.Stale,
		"missing_sources", res.MissingSources,
		"conflicts", res.Conflicts,
	}
	if res.MissingSources > 0 || res.Conflicts > 0 {
		s.logger.Warn("audit found issues needing operator action",
			append([]any{"category", model.EventCategoryAudit}, attrs...)...)
	} else {
		s.logger.Info("audit complete", attrs...)
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, nil
}

// LastAudit returns the most recent audit result, or nil.
func (s *Scheduler) LastAudit() *AuditResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
