// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reconcile detects missing, stale and structurally unsound
// localized content, and assembles flat rows into the nested page tree.
package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// Detection is the output of a detector: tasks for eligible groups and
// errors for groups excluded from backfill.
type Detection struct {
	Tasks          []model.TranslationTask
	MissingSources []*MissingSourceError
}

func (d *Detection) merge(other Detection) {
	d.Tasks = append(d.Tasks, other.Tasks...)
	d.MissingSources = append(d.MissingSources, other.MissingSources...)
}

// contentGroup holds the locale variants of one (page, section, key).
type contentGroup struct {
	key    model.GroupKey
	values map[string]string
}

// groupContent buckets rows by group, returned in deterministic order.
func groupContent(entries []model.ContentEntry) []contentGroup {
	idx := make(map[model.GroupKey]int)
	var groups []contentGroup
	for _, e := range entries {
		g := e.Group()
		i, ok := idx[g]
		if !ok {
			i = len(groups)
			idx[g] = i
			groups = append(groups, contentGroup{key: g, values: make(map[string]string)})
		}
		groups[i].values[e.Locale] = e.Value
	}
	slices.SortFunc(groups, func(a, b contentGroup) int {
		return cmp.Or(
			cmp.Compare(a.key.Page, b.key.Page),
			cmp.Compare(a.key.Section, b.key.Section),
			cmp.Compare(a.key.Key, b.key.Key),
		)
	})
	return groups
}

// sourceOf returns the usable source value of a group. A blank source row
// cannot be translated and counts as missing.
func (g contentGroup) sourceOf(reg *locale.Registry) (string, *MissingSourceError) {
	v, ok := g.values[reg.Source()]
	if !ok || strings.TrimSpace(v) == "" {
		return "", &MissingSourceError{
			Entity: model.ContentRef(g.key.Page, g.key.Section),
			Field:  g.key.Key,
			Source: reg.Source(),
		}
	}
	return v, nil
}

// DetectContentGaps emits a MISSING task for every registered locale that has
// no row in a group whose source row exists.
func DetectContentGaps(entries []model.ContentEntry, reg *locale.Registry) Detection {
	var out Detection
	for _, g := range groupContent(entries) {
		src, missing := g.sourceOf(reg)
		if missing != nil {
			out.MissingSources = append(out.MissingSources, missing)
			continue
		}
		for _, code := range reg.Targets() {
			if _, present := g.values[code]; present {
				continue
			}
			out.Tasks = append(out.Tasks, model.TranslationTask{
				Fingerprint: model.Fingerprint{
					Entity: model.ContentRef(g.key.Page, g.key.Section),
					Field:  g.key.Key,
					Locale: code,
				},
				SourceLocale: reg.Source(),
				SourceValue:  src,
				Reason:       model.ReasonMissing,
			})
		}
	}
	return out
}

// DetectCategoryGaps emits a MISSING task for every unset (nil or blank)
// category cell whose source cell is set.
func DetectCategoryGaps(records []model.CategoryRecord, reg *locale.Registry) Detection {
	var out Detection
	for _, rec := range sortedCategories(records) {
		for _, field := range model.CategoryFields {
			values, _ := rec.Field(field)
			src, ok := values.Get(reg.Source())
			if !ok {
				out.MissingSources = append(out.MissingSources, &MissingSourceError{
					Entity: model.CategoryRef(rec.Slug),
					Field:  field,
					Source: reg.Source(),
				})
				continue
			}
			for _, code := range reg.Targets() {
				if _, set := values.Get(code); set {
					continue
				}
				out.Tasks = append(out.Tasks, model.TranslationTask{
					Fingerprint: model.Fingerprint{
						Entity: model.CategoryRef(rec.Slug),
						Field:  field,
						Locale: code,
					},
					SourceLocale: reg.Source(),
					SourceValue:  src,
					Reason:       model.ReasonMissing,
				})
			}
		}
	}
	return out
}

func sortedCategories(records []model.CategoryRecord) []model.CategoryRecord {
	out := slices.Clone(records)
	slices.SortFunc(out, func(a, b model.CategoryRecord) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Slug, b.Slug))
	})
	return out
}
