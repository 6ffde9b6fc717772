// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// RepairStore is the storage surface the repairer needs.
type RepairStore interface {
	ListContentEntries(ctx context.Context) ([]model.ContentEntry, error)
	ListPageEntries(ctx context.Context, page string) ([]model.ContentEntry, error)
	DeleteContentEntry(ctx context.Context, id model.Identity) (bool, error)
}

// RepairOptions scopes a repair run.
type RepairOptions struct {
	Page   string // empty repairs every page
	DryRun bool
}

// RepairResult lists what a repair found and removed.
type RepairResult struct {
	Conflicts ConflictSet          `json:"-"`
	Deleted   []model.ContentEntry `json:"deleted"`
	DryRun    bool                 `json:"dry_run"`
}

// Repairer removes general-section rows that collide with nested sections.
// The nested section is authoritative. Every deletion is logged at WARN so
// it reaches the audit trail.
type Repairer struct {
	store  RepairStore
	logger *slog.Logger
}

// NewRepairer creates a Repairer.
func NewRepairer(store RepairStore, logger *slog.Logger) *Repairer {
	return &Repairer{store: store, logger: logger}
}

// Repair detects structural conflicts and, unless DryRun is set, deletes the
// offending rows.
func (r *Repairer) Repair(ctx context.Context, opts RepairOptions) (*RepairResult, error) {
	var (
		entries []model.ContentEntry
		err     error
	)
	if opts.Page != "" {
		entries, err = r.store.ListPageEntries(ctx, opts.Page)
	} else {
		entries, err = r.store.ListContentEntries(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("loading content entries: %w", err)
	}

	result := &RepairResult{
		Conflicts: FindConflicts(entries),
		DryRun:    opts.DryRun,
	}
	if len(result.Conflicts) == 0 {
		r.logger.Debug("no structural conflicts found", "page", opts.Page)
		return result, nil
	}

	for _, c := range result.Conflicts {
		e := c.Entry
		if opts.DryRun {
			r.logger.Info("structural conflict (dry run)",
				"category", "repair",
				"page", e.Page,
				"key", e.Key,
				"locale", e.Locale)
			continue
		}

		deleted, err := r.store.DeleteContentEntry(ctx, e.Identity())
		if err != nil {
			return result, fmt.Errorf("deleting %s@%s: %w", e.Group(), e.Locale, err)
		}
		if !deleted {
			// already gone, e.g. removed by a concurrent repair
			continue
		}
		result.Deleted = append(result.Deleted, e)
		r.logger.Warn("deleted structurally conflicting content entry",
			"category", "repair",
			"page", e.Page,
			"section", e.Section,
			"key", e.Key,
			"locale", e.Locale,
			"value", e.Value,
			"reason", c.Error())
	}

	return result, nil
}
