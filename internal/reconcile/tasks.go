// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import "github.com/LSA-CEO/gozo-authentic-sub001/internal/model"

// Dedupe collapses tasks to at most one per fingerprint. When several tasks
// share a fingerprint the highest-priority reason wins (FORCED, STALE,
// MISSING); ties keep the first occurrence. Output preserves first-seen order.
func Dedupe(tasks []model.TranslationTask) []model.TranslationTask {
	idx := make(map[model.Fingerprint]int, len(tasks))
	out := make([]model.TranslationTask, 0, len(tasks))
	for _, t := range tasks {
		i, ok := idx[t.Fingerprint]
		if !ok {
			idx[t.Fingerprint] = len(out)
			out = append(out, t)
			continue
		}
		if t.Reason.Priority() > out[i].Reason.Priority() {
			out[i] = t
		}
	}
	return out
}

// ExcludeGroups drops content tasks whose group is in the excluded set.
func ExcludeGroups(tasks []model.TranslationTask, excluded map[model.GroupKey]bool) []model.TranslationTask {
	if len(excluded) == 0 {
		return tasks
	}
	out := tasks[:0:0]
	for _, t := range tasks {
		fp := t.Fingerprint
		if fp.Entity.Kind == model.EntityContent &&
			excluded[model.GroupKey{Page: fp.Entity.Page, Section: fp.Entity.Section, Key: fp.Field}] {
			continue
		}
		out = append(out, t)
	}
	return out
}
