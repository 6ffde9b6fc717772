// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backfill executes translation tasks against the content and
// category stores and reports the per-task outcome of each run.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/translator"
)

// Store is the storage surface the orchestrator reads and commits to.
type Store interface {
	reconcile.RepairStore
	ListCategories(ctx context.Context) ([]model.CategoryRecord, error)
	GetCategory(ctx context.Context, slug string) (model.CategoryRecord, error)
	InsertContentEntryIfAbsent(ctx context.Context, e model.ContentEntry) (bool, error)
	OverwriteContentEntry(ctx context.Context, e model.ContentEntry) error
	FillCategoryField(ctx context.Context, slug, field, code, value string) (bool, error)
	OverwriteCategoryField(ctx context.Context, slug, field, code, value string) (bool, error)
}

// Policy bounds dispatch and retries.
type Policy struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	DispatchTimeout time.Duration
	Concurrency     int
	RateLimit       float64 // calls per second, 0 = unlimited
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     4,
		InitialBackoff:  time.Second,
		MaxBackoff:      30 * time.Second,
		DispatchTimeout: time.Minute,
		Concurrency:     4,
		RateLimit:       2,
	}
}

// calculateBackoff returns InitialBackoff * 2^(attempt-1), capped at MaxBackoff.
func (p Policy) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(p.InitialBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > p.MaxBackoff || backoff < 0 {
		backoff = p.MaxBackoff
	}
	return backoff
}

var (
	errEmptyTranslation = errors.New("translation is empty")
	errCategoryMissing  = errors.New("category no longer exists")
)

// Orchestrator runs backfill passes. It is safe for concurrent use; the
// store's uniqueness constraint resolves races between runs.
type Orchestrator struct {
	store      Store
	translator translator.Translator
	reg        *locale.Registry
	policy     Policy
	limiter    *rate.Limiter
	logger     *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator.
func New(store Store, tr translator.Translator, reg *locale.Registry, policy Policy, logger *slog.Logger) *Orchestrator {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Concurrency < 1 {
		policy.Concurrency = 1
	}

	limit := rate.Inf
	if policy.RateLimit > 0 {
		limit = rate.Limit(policy.RateLimit)
	}

	return &Orchestrator{
		store:      store,
		translator: tr,
		reg:        reg,
		policy:     policy,
		limiter:    rate.NewLimiter(limit, policy.Concurrency),
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute dispatches tasks and collects their outcomes. Tasks are
// deduplicated first; a failing task never stops the others. Results are
// reported in task order.
func (o *Orchestrator) Execute(ctx context.Context, tasks []model.TranslationTask) []TaskResult {
	tasks = reconcile.Dedupe(tasks)
	results := make([]TaskResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(o.policy.Concurrency)
	for i, t := range tasks {
		g.Go(func() error {
			results[i] = o.runTask(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Orchestrator) runTask(ctx context.Context, t model.TranslationTask) TaskResult {
	res := TaskResult{Fingerprint: t.Fingerprint, Reason: t.Reason, State: model.StatePending}

	if o.reg.IsOpaque(t.Fingerprint.OpaqueNames()...) {
		return o.copyOpaque(ctx, t, res)
	}

	res.State = model.StateDispatched
	value, attempts, err := o.translate(ctx, t)
	res.Attempts = attempts
	if err == nil && t.Reason.Overwrites() && value == t.SourceValue {
		err = &reconcile.UnchangedTranslationError{Fingerprint: t.Fingerprint}
	}
	if err != nil {
		return o.fail(res, err)
	}

	if err := o.commit(ctx, t, value); err != nil {
		return o.fail(res, err)
	}
	res.State = model.StateCommitted
	res.Value = value
	o.logger.Debug("committed translation",
		"fingerprint", t.Fingerprint.String(),
		"reason", t.Reason,
		"attempts", attempts)
	return res
}

// copyOpaque commits the source value verbatim after a shape check.
func (o *Orchestrator) copyOpaque(ctx context.Context, t model.TranslationTask, res TaskResult) TaskResult {
	if !locale.ValidOpaqueShape(t.SourceValue) {
		return o.fail(res, &reconcile.OpaqueFieldShapeError{Fingerprint: t.Fingerprint, Value: t.SourceValue})
	}
	if err := o.commit(ctx, t, t.SourceValue); err != nil {
		return o.fail(res, err)
	}
	res.State = model.StateSkipped
	res.Value = t.SourceValue
	res.Code = SkipOpaqueField
	return res
}

func (o *Orchestrator) fail(res TaskResult, err error) TaskResult {
	res.State = model.StateFailed
	res.Code = reconcile.ErrorCode(err)
	res.Error = err.Error()
	o.logger.Warn("backfill task failed",
		"category", model.EventCategoryBackfill,
		"fingerprint", res.Fingerprint.String(),
		"reason", res.Reason,
		"attempts", res.Attempts,
		"code", res.Code,
		"error", err)
	return res
}

// translate calls the translator with per-attempt timeouts, retrying
// retryable failures with exponential backoff.
func (o *Orchestrator) translate(ctx context.Context, t model.TranslationTask) (string, int, error) {
	fp := t.Fingerprint
	req := translator.Request{
		Text:         t.SourceValue,
		SourceLocale: t.SourceLocale,
		TargetLocale: fp.Locale,
		Context:      fp.Entity.String() + "#" + fp.Field,
		Fresh:        t.Reason.Overwrites(),
	}

	for attempt := 1; ; attempt++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", attempt - 1, &reconcile.TranslationCapabilityError{Err: err}
		}

		actx, cancel := context.WithTimeout(ctx, o.policy.DispatchTimeout)
		out, err := o.translator.Translate(actx, req)
		cancel()

		if err == nil && strings.TrimSpace(out) == "" {
			err = &reconcile.TranslationCapabilityError{Retryable: true, Err: errEmptyTranslation}
		}
		if err == nil {
			return out, attempt, nil
		}

		var capErr *reconcile.TranslationCapabilityError
		if !errors.As(err, &capErr) {
			// a timed-out attempt is worth retrying while the run itself is live
			capErr = &reconcile.TranslationCapabilityError{Retryable: ctx.Err() == nil, Err: err}
		}
		if !capErr.Retryable || attempt >= o.policy.MaxAttempts || ctx.Err() != nil {
			return "", attempt, capErr
		}

		backoff := o.policy.calculateBackoff(attempt)
		o.logger.Debug("retrying translation",
			"fingerprint", fp.String(),
			"attempt", attempt,
			"backoff", backoff,
			"error", err)
		if err := o.sleep(ctx, backoff); err != nil {
			return "", attempt, &reconcile.TranslationCapabilityError{Err: err}
		}
	}
}

// commit writes value to the task's cell. MISSING tasks never overwrite; a
// lost insert race is logged and treated as success.
func (o *Orchestrator) commit(ctx context.Context, t model.TranslationTask, value string) error {
	fp := t.Fingerprint

	switch fp.Entity.Kind {
	case model.EntityContent:
		e := model.ContentEntry{
			Page:    fp.Entity.Page,
			Section: fp.Entity.Section,
			Key:     fp.Field,
			Locale:  fp.Locale,
			Value:   value,
		}
		if t.Reason.Overwrites() {
			return o.store.OverwriteContentEntry(ctx, e)
		}
		inserted, err := o.store.InsertContentEntryIfAbsent(ctx, e)
		if err != nil {
			return err
		}
		if !inserted {
			o.logger.Debug("insert lost race", "error", &reconcile.DuplicateWriteConflict{Fingerprint: fp})
		}
		return nil

	case model.EntityCategory:
		if t.Reason.Overwrites() {
			ok, err := o.store.OverwriteCategoryField(ctx, fp.Entity.Slug, fp.Field, fp.Locale, value)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", fp.Entity, errCategoryMissing)
			}
			return nil
		}
		filled, err := o.store.FillCategoryField(ctx, fp.Entity.Slug, fp.Field, fp.Locale, value)
		if err != nil {
			return err
		}
		if !filled {
			o.logger.Debug("fill lost race", "error", &reconcile.DuplicateWriteConflict{Fingerprint: fp})
		}
		return nil
	}

	return fmt.Errorf("unknown entity kind %q", fp.Entity.Kind)
}

func (o *Orchestrator) start(scope Scope) *Report {
	return newReport(uuid.NewString(), scope, o.now().UTC())
}

func (o *Orchestrator) finish(r *Report) *Report {
	r.finish(o.now().UTC())

	attrs := []any{
		"run_id", r.RunID,
		"scope", r.Scope,
		"committed", len(r.Committed),
		"failed", len(r.Failed),
		"skipped", len(r.Skipped),
		"conflicts", len(r.Conflicts),
		"repaired", len(r.Repaired),
		"duration", r.FinishedAt.Sub(r.StartedAt),
	}
	if r.Success {
		o.logger.Info("backfill run complete", attrs...)
	} else {
		o.logger.Warn("backfill run completed with failures",
			append([]any{"category", model.EventCategoryBackfill}, attrs...)...)
	}
	return r
}
