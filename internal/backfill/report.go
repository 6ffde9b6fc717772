// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backfill

import (
	"time"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// SkipOpaqueField marks a task that was copied instead of translated.
const SkipOpaqueField = "opaque_field"

// TaskResult is the terminal outcome of one task.
type TaskResult struct {
	Fingerprint model.Fingerprint `json:"fingerprint"`
	Reason      model.TaskReason  `json:"reason,omitempty"`
	State       model.TaskState   `json:"state"`
	Value       string            `json:"value,omitempty"`
	Attempts    int               `json:"attempts,omitempty"`
	// Code is an error code for failures and a skip code for skipped tasks.
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// Report is the outcome of one backfill run.
type Report struct {
	RunID      string               `json:"run_id"`
	Scope      Scope                `json:"scope"`
	Success    bool                 `json:"success"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Committed  []TaskResult         `json:"committed"`
	Failed     []TaskResult         `json:"failed"`
	Skipped    []TaskResult         `json:"skipped"`
	Conflicts  []model.ContentEntry `json:"conflicts,omitempty"`
	Repaired   []model.ContentEntry `json:"repaired,omitempty"`
}

func newReport(runID string, scope Scope, started time.Time) *Report {
	return &Report{
		RunID:     runID,
		Scope:     scope,
		StartedAt: started,
		Committed: []TaskResult{},
		Failed:    []TaskResult{},
		Skipped:   []TaskResult{},
	}
}

func (r *Report) add(res TaskResult) {
	switch res.State {
	case model.StateCommitted:
		r.Committed = append(r.Committed, res)
	case model.StateSkipped:
		r.Skipped = append(r.Skipped, res)
	default:
		r.Failed = append(r.Failed, res)
	}
}

func (r *Report) skipMissingSource(errs []*reconcile.MissingSourceError) {
	for _, e := range errs {
		r.Skipped = append(r.Skipped, TaskResult{
			Fingerprint: model.Fingerprint{Entity: e.Entity, Field: e.Field},
			State:       model.StateSkipped,
			Code:        e.Code(),
			Error:       e.Error(),
		})
	}
}

func (r *Report) addConflicts(set reconcile.ConflictSet) {
	for _, c := range set {
		r.Conflicts = append(r.Conflicts, c.Entry)
	}
}

func (r *Report) finish(at time.Time) {
	r.FinishedAt = at
	r.Success = len(r.Failed) == 0
}
