// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// isStale classifies a target value against its source. Regular fields are
// suspect when byte-identical to the source; opaque fields must be identical,
// so a difference is what needs fixing.
func isStale(opaque bool, source, target string) bool {
	if opaque {
		return target != source
	}
	return target == source
}

// DetectContentStale emits a STALE task for every target row whose value is
// byte-identical to the source (or, for opaque fields, differs from it).
// Groups without a usable source are skipped; DetectContentGaps reports them.
func DetectContentStale(entries []model.ContentEntry, reg *locale.Registry) Detection {
	var out Detection
	for _, g := range groupContent(entries) {
		src, missing := g.sourceOf(reg)
		if missing != nil {
			continue
		}
		for _, code := range reg.Targets() {
			v, present := g.values[code]
			if !present {
				continue
			}
			fp := model.Fingerprint{
				Entity: model.ContentRef(g.key.Page, g.key.Section),
				Field:  g.key.Key,
				Locale: code,
			}
			if !isStale(reg.IsOpaque(fp.OpaqueNames()...), src, v) {
				continue
			}
			out.Tasks = append(out.Tasks, model.TranslationTask{
				Fingerprint:  fp,
				SourceLocale: reg.Source(),
				SourceValue:  src,
				Reason:       model.ReasonStale,
			})
		}
	}
	return out
}

// DetectCategoryStale is DetectContentStale for category locale matrices.
func DetectCategoryStale(records []model.CategoryRecord, reg *locale.Registry) Detection {
	var out Detection
	for _, rec := range sortedCategories(records) {
		for _, field := range model.CategoryFields {
			values, _ := rec.Field(field)
			src, ok := values.Get(reg.Source())
			if !ok {
				continue
			}
			for _, code := range reg.Targets() {
				v, set := values.Get(code)
				if !set {
					continue
				}
				fp := model.Fingerprint{Entity: model.CategoryRef(rec.Slug), Field: field, Locale: code}
				if !isStale(reg.IsOpaque(fp.OpaqueNames()...), src, v) {
					continue
				}
				out.Tasks = append(out.Tasks, model.TranslationTask{
					Fingerprint:  fp,
					SourceLocale: reg.Source(),
					SourceValue:  src,
					Reason:       model.ReasonStale,
				})
			}
		}
	}
	return out
}
