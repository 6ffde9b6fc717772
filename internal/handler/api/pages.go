// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// Event list limits.
const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// ListPages handles GET /pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.store.ListPages(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to list pages", err)
		return
	}
	if pages == nil {
		pages = []string{}
	}
	WriteSuccess(w, pages, &Meta{Total: len(pages)})
}

// PageTree handles GET /pages/{page}/tree. With ?locale= only that
// locale's tree is returned; otherwise every locale present.
func (h *Handler) PageTree(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	code := r.URL.Query().Get("locale")
	if code != "" && !h.reg.Has(code) {
		WriteBadRequest(w, "Unknown locale: "+code, nil)
		return
	}

	rows, err := h.store.ListPageEntries(r.Context(), page)
	if err != nil {
		h.internalError(w, r, "Failed to load page", err)
		return
	}
	if len(rows) == 0 {
		WriteNotFound(w, "Page not found")
		return
	}

	trees, err := reconcile.Assemble(page, rows)
	var conflicts reconcile.ConflictSet
	switch {
	case errors.As(err, &conflicts):
		details := make(map[string]string, len(conflicts))
		for _, c := range conflicts {
			details[c.Entry.Key+"@"+c.Entry.Locale] = c.Error()
		}
		WriteError(w, http.StatusConflict, reconcile.CodeStructuralConflict,
			"Page has general keys colliding with nested sections; run a repair", details)
		return
	case err != nil:
		h.internalError(w, r, "Failed to assemble page", err)
		return
	}

	if code == "" {
		WriteSuccess(w, trees, nil)
		return
	}
	tree, ok := trees[code]
	if !ok {
		WriteNotFound(w, "Page has no content in locale "+code)
		return
	}
	WriteSuccess(w, tree, nil)
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to list categories", err)
		return
	}
	if records == nil {
		records = []model.CategoryRecord{}
	}
	WriteSuccess(w, records, &Meta{Total: len(records)})
}

// ListEvents handles GET /events?category=&limit=.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			WriteBadRequest(w, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.store.ListEvents(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		h.internalError(w, r, "Failed to list events", err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	WriteSuccess(w, events, &Meta{Total: len(events)})
}
