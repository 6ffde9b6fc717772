// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// Scope selects which cells a run considers.
type Scope string

// Backfill scopes
const (
	ScopeCategories  Scope = "categories"
	ScopeSiteContent Scope = "site_content"
	ScopeSpecific    Scope = "specific"
	ScopeRetranslate Scope = "retranslate"
)

// ErrInvalidRequest is wrapped by every request validation error.
var ErrInvalidRequest = errors.New("invalid backfill request")

// Request is the body accepted by the trigger endpoint.
type Request struct {
	ContentType  Scope                 `json:"contentType"`
	Translations []SpecificTranslation `json:"translations,omitempty"`
	// Repair deletes structurally conflicting rows before a site_content run.
	Repair bool `json:"repair,omitempty"`
}

// SpecificTranslation names one content group and the locales to fill.
// An empty Locales list means every target locale.
type SpecificTranslation struct {
	Page    string   `json:"page"`
	Section string   `json:"section"`
	Key     string   `json:"key"`
	Locales []string `json:"locales,omitempty"`
}

// RetranslateRequest forces new translations for one field of one entity.
type RetranslateRequest struct {
	Entity  model.EntityRef `json:"entity"`
	Field   string          `json:"field"`
	Locales []string        `json:"locales,omitempty"`
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// targetLocales validates requested locales, defaulting to every target.
func (o *Orchestrator) targetLocales(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return o.reg.Targets(), nil
	}
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		switch {
		case !o.reg.Has(code):
			return nil, invalidf("%v: %s", locale.ErrUnknownLocale, code)
		case o.reg.IsSource(code):
			return nil, invalidf("%s is the source locale", code)
		case slices.Contains(out, code):
			continue
		}
		out = append(out, code)
	}
	return out, nil
}

// Run executes one backfill run for the requested scope. It returns an
// error only for invalid requests and storage read failures; per-task
// failures are reported in the Report.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	switch req.ContentType {
	case ScopeCategories:
		return o.runCategories(ctx)
	case ScopeSiteContent:
		return o.runSiteContent(ctx, req.Repair)
	case ScopeSpecific:
		return o.runSpecific(ctx, req.Translations)
	case "":
		return nil, invalidf("contentType is required")
	}
	return nil, invalidf("unknown contentType %q", req.ContentType)
}

func (o *Orchestrator) runCategories(ctx context.Context) (*Report, error) {
	report := o.start(ScopeCategories)

	records, err := o.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	scan := reconcile.ScanCategories(records, o.reg)
	report.skipMissingSource(scan.MissingSources)
	for _, res := range o.Execute(ctx, scan.Tasks) {
		report.add(res)
	}
	return o.finish(report), nil
}

func (o *Orchestrator) runSiteContent(ctx context.Context, repair bool) (*Report, error) {
	report := o.start(ScopeSiteContent)

	if repair {
		res, err := reconcile.NewRepairer(o.store, o.logger).Repair(ctx, reconcile.RepairOptions{})
		if err != nil {
			return nil, fmt.Errorf("repairing content: %w", err)
		}
		report.Repaired = res.Deleted
	}

	entries, err := o.store.ListContentEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading content entries: %w", err)
	}

	scan := reconcile.ScanContent(entries, o.reg)
	report.addConflicts(scan.Conflicts)
	report.skipMissingSource(scan.MissingSources)
	for _, res := range o.Execute(ctx, scan.Tasks) {
		report.add(res)
	}
	return o.finish(report), nil
}

func (o *Orchestrator) runSpecific(ctx context.Context, items []SpecificTranslation) (*Report, error) {
	if len(items) == 0 {
		return nil, invalidf("translations is required for contentType %q", ScopeSpecific)
	}

	type plan struct {
		item    SpecificTranslation
		locales []string
	}
	plans := make([]plan, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Page) == "" || strings.TrimSpace(it.Section) == "" || strings.TrimSpace(it.Key) == "" {
			return nil, invalidf("page, section and key are required")
		}
		locales, err := o.targetLocales(it.Locales)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan{item: it, locales: locales})
	}

	report := o.start(ScopeSpecific)
	pages := make(map[string][]model.ContentEntry)
	conflicted := make(map[string]map[model.GroupKey]bool)

	var tasks []model.TranslationTask
	for _, p := range plans {
		it := p.item
		rows, ok := pages[it.Page]
		if !ok {
			var err error
			rows, err = o.store.ListPageEntries(ctx, it.Page)
			if err != nil {
				return nil, fmt.Errorf("loading page %q: %w", it.Page, err)
			}
			pages[it.Page] = rows

			conflicts := reconcile.FindConflicts(rows)
			report.addConflicts(conflicts)
			conflicted[it.Page] = make(map[model.GroupKey]bool, len(conflicts))
			for _, c := range conflicts {
				conflicted[it.Page][c.Entry.Group()] = true
			}
		}

		group := model.GroupKey{Page: it.Page, Section: it.Section, Key: it.Key}
		if conflicted[it.Page][group] {
			continue
		}

		values := make(map[string]string)
		for _, r := range rows {
			if r.Group() == group {
				values[r.Locale] = r.Value
			}
		}
		src, ok := values[o.reg.Source()]
		if !ok || strings.TrimSpace(src) == "" {
			report.skipMissingSource([]*reconcile.MissingSourceError{{
				Entity: model.ContentRef(it.Page, it.Section),
				Field:  it.Key,
				Source: o.reg.Source(),
			}})
			continue
		}

		for _, code := range p.locales {
			reason := model.ReasonMissing
			if _, present := values[code]; present {
				reason = model.ReasonForced
			}
			tasks = append(tasks, model.TranslationTask{
				Fingerprint: model.Fingerprint{
					Entity: model.ContentRef(it.Page, it.Section),
					Field:  it.Key,
					Locale: code,
				},
				SourceLocale: o.reg.Source(),
				SourceValue:  src,
				Reason:       reason,
			})
		}
	}

	for _, res := range o.Execute(ctx, tasks) {
		report.add(res)
	}
	return o.finish(report), nil
}

// Retranslate overwrites the listed locales of one field with fresh
// translations, whether or not the current values look stale.
func (o *Orchestrator) Retranslate(ctx context.Context, req RetranslateRequest) (*Report, error) {
	locales, err := o.targetLocales(req.Locales)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Field) == "" {
		return nil, invalidf("field is required")
	}

	var (
		entity    model.EntityRef
		src       string
		found     bool
		conflicts reconcile.ConflictSet
	)
	switch req.Entity.Kind {
	case model.EntityContent:
		if req.Entity.Page == "" || req.Entity.Section == "" {
			return nil, invalidf("page and section are required for content entities")
		}
		entity = model.ContentRef(req.Entity.Page, req.Entity.Section)
		rows, err := o.store.ListPageEntries(ctx, entity.Page)
		if err != nil {
			return nil, fmt.Errorf("loading page %q: %w", entity.Page, err)
		}
		for _, r := range rows {
			if r.Section == entity.Section && r.Key == req.Field && o.reg.IsSource(r.Locale) {
				src, found = r.Value, strings.TrimSpace(r.Value) != ""
			}
		}
		group := model.GroupKey{Page: entity.Page, Section: entity.Section, Key: req.Field}
		for _, c := range reconcile.FindConflicts(rows) {
			if c.Entry.Group() == group {
				conflicts = append(conflicts, c)
			}
		}

	case model.EntityCategory:
		if req.Entity.Slug == "" {
			return nil, invalidf("slug is required for category entities")
		}
		if !slices.Contains(model.CategoryFields, req.Field) {
			return nil, invalidf("unknown category field %q", req.Field)
		}
		entity = model.CategoryRef(req.Entity.Slug)
		rec, err := o.store.GetCategory(ctx, entity.Slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalidf("category %q not found", entity.Slug)
		}
		if err != nil {
			return nil, fmt.Errorf("loading category %q: %w", entity.Slug, err)
		}
		values, _ := rec.Field(req.Field)
		src, found = values.Get(o.reg.Source())

	default:
		return nil, invalidf("unknown entity kind %q", req.Entity.Kind)
	}

	report := o.start(ScopeRetranslate)
	// overwriting would add more general rows shadowing the nested section
	if len(conflicts) > 0 {
		report.addConflicts(conflicts)
		return o.finish(report), nil
	}
	if !found {
		report.skipMissingSource([]*reconcile.MissingSourceError{{Entity: entity, Field: req.Field, Source: o.reg.Source()}})
		return o.finish(report), nil
	}

	tasks := make([]model.TranslationTask, 0, len(locales))
	for _, code := range locales {
		tasks = append(tasks, model.TranslationTask{
			Fingerprint:  model.Fingerprint{Entity: entity, Field: req.Field, Locale: code},
			SourceLocale: o.reg.Source(),
			SourceValue:  src,
			Reason:       model.ReasonForced,
		})
	}
	for _, res := range o.Execute(ctx, tasks) {
		report.add(res)
	}
	return o.finish(report), nil
}
