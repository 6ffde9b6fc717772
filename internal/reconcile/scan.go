// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// ScanResult is a read-only reconciliation of the current row sets.
type ScanResult struct {
	Tasks          []model.TranslationTask
	MissingSources []*MissingSourceError
	Conflicts      ConflictSet
}

// Counts summarizes a scan by task reason.
func (r ScanResult) Counts() map[model.TaskReason]int {
	out := make(map[model.TaskReason]int)
	for _, t := range r.Tasks {
		out[t.Reason]++
	}
	return out
}

// ScanContent runs the gap, stale and structural checks over content rows.
// Groups whose general row is structurally conflicting are excluded from
// the tasks, since a repair would delete them.
func ScanContent(entries []model.ContentEntry, reg *locale.Registry) ScanResult {
	var d Detection
	d.merge(DetectContentGaps(entries, reg))
	d.merge(DetectContentStale(entries, reg))

	conflicts := FindConflicts(entries)
	excluded := make(map[model.GroupKey]bool, len(conflicts))
	for _, c := range conflicts {
		excluded[c.Entry.Group()] = true
	}

	return ScanResult{
		Tasks:          Dedupe(ExcludeGroups(d.Tasks, excluded)),
		MissingSources: d.MissingSources,
		Conflicts:      conflicts,
	}
}

// ScanCategories runs the gap and stale checks over category records.
func ScanCategories(records []model.CategoryRecord, reg *locale.Registry) ScanResult {
	var d Detection
	d.merge(DetectCategoryGaps(records, reg))
	d.merge(DetectCategoryStale(records, reg))
	return ScanResult{
		Tasks:          Dedupe(d.Tasks),
		MissingSources: d.MissingSources,
	}
}

// Scan reconciles both stores.
func Scan(entries []model.ContentEntry, records []model.CategoryRecord, reg *locale.Registry) ScanResult {
	c := ScanContent(entries, reg)
	k := ScanCategories(records, reg)
	return ScanResult{
		Tasks:          append(c.Tasks, k.Tasks...),
		MissingSources: append(c.MissingSources, k.MissingSources...),
		Conflicts:      c.Conflicts,
	}
}
