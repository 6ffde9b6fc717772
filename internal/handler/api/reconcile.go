// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// MissingSource is the JSON form of a reconcile.MissingSourceError.
type MissingSource struct {
	Entity model.EntityRef `json:"entity"`
	Field  string          `json:"field"`
	Error  string          `json:"error"`
}

// ReconcileResponse is the result of a dry-run scan.
type ReconcileResponse struct {
	Counts         map[model.TaskReason]int `json:"counts"`
	Tasks          []model.TranslationTask  `json:"tasks"`
	MissingSources []MissingSource          `json:"missing_sources"`
	Conflicts      []model.ContentEntry     `json:"conflicts"`
}

// Reconcile handles GET /reconcile?scope=site_content|categories. Without
// a scope both stores are scanned. Nothing is written.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := r.URL.Query().Get("scope")

	var (
		entries []model.ContentEntry
		records []model.CategoryRecord
		err     error
	)
	switch scope {
	case "", "site_content", "categories":
	default:
		WriteBadRequest(w, "scope must be site_content or categories", nil)
		return
	}
	if scope != "categories" {
		if entries, err = h.store.ListContentEntries(ctx); err != nil {
			h.internalError(w, r, "Failed to load content entries", err)
			return
		}
	}
	if scope != "site_content" {
		if records, err = h.store.ListCategories(ctx); err != nil {
			h.internalError(w, r, "Failed to load categories", err)
			return
		}
	}

	scan := reconcile.Scan(entries, records, h.reg)
	resp := ReconcileResponse{
		Counts:         scan.Counts(),
		Tasks:          scan.Tasks,
		MissingSources: make([]MissingSource, 0, len(scan.MissingSources)),
		Conflicts:      make([]model.ContentEntry, 0, len(scan.Conflicts)),
	}
	if resp.Tasks == nil {
		resp.Tasks = []model.TranslationTask{}
	}
	for _, ms := range scan.MissingSources {
		resp.MissingSources = append(resp.MissingSources, MissingSource{Entity: ms.Entity, Field: ms.Field, Error: ms.Error()})
	}
	for _, c := range scan.Conflicts {
		resp.Conflicts = append(resp.Conflicts, c.Entry)
	}

	WriteSuccess(w, resp, &Meta{Total: len(resp.Tasks)})
}

// RepairRequest is the body of POST /repair.
type RepairRequest struct {
	Page   string `json:"page"`
	DryRun bool   `json:"dry_run"`
}

// RepairResponse lists the conflicting rows and those actually deleted.
type RepairResponse struct {
	DryRun    bool                 `json:"dry_run"`
	Conflicts []model.ContentEntry `json:"conflicts"`
	Deleted   []model.ContentEntry `json:"deleted"`
}

// Repair handles POST /repair.
func (h *Handler) Repair(w http.ResponseWriter, r *http.Request) {
	var req RepairRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Page = strings.TrimSpace(req.Page)

	res, err := reconcile.NewRepairer(h.store, h.logger).Repair(r.Context(), reconcile.RepairOptions{
		Page:   req.Page,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.internalError(w, r, "Repair failed", err)
		return
	}

	resp := RepairResponse{
		DryRun:    res.DryRun,
		Conflicts: make([]model.ContentEntry, 0, len(res.Conflicts)),
		Deleted:   res.Deleted,
	}
	if resp.Deleted == nil {
		resp.Deleted = []model.ContentEntry{}
	}
	for _, c := range res.Conflicts {
		resp.Conflicts = append(resp.Conflicts, c.Entry)
	}
	WriteSuccess(w, resp, nil)
}
