// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the admin REST API for reconciliation and backfill.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/backfill"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/cache"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/middleware"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/scheduler"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/store"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/version"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store    *store.Store
	backfill *backfill.Orchestrator
	cache    cache.Cache
	reg      *locale.Registry
	audit    *scheduler.Scheduler // nil when the audit is disabled
	version  version.Info
	logger   *slog.Logger
}

// Deps groups the dependencies of NewHandler.
type Deps struct {
	Store    *store.Store
	Backfill *backfill.Orchestrator
	Cache    cache.Cache // translation cache
	Registry *locale.Registry
	Audit    *scheduler.Scheduler
	Version  version.Info
	Logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		backfill: d.Backfill,
		cache:    d.Cache,
		reg:      d.Registry,
		audit:    d.Audit,
		version:  d.Version,
		logger:   d.Logger,
	}
}

// Routes returns the /api/v1 router. Mutating routes require the admin
// token when one is configured.
func (h *Handler) Routes(adminToken string) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)
	r.Get("/reconcile", h.Reconcile)
	r.Get("/pages", h.ListPages)
	r.Get("/pages/{page}/tree", h.PageTree)
	r.Get("/categories", h.ListCategories)
	r.Get("/events", h.ListEvents)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(adminToken))
		r.Post("/backfill", h.Backfill)
		r.Post("/retranslate", h.Retranslate)
		r.Post("/repair", h.Repair)
		r.Post("/cache/clear", h.ClearCache)
	})

	return r
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list totals and other metadata.
type Meta struct {
	Total int `json:"total"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// decodeBody decodes a JSON request body, rejecting unknown fields. An
// empty body leaves dst untouched. On failure the response is written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		WriteBadRequest(w, fmt.Sprintf("Invalid JSON body: %v", err), nil)
		return false
	}
	return true
}

// internalError logs err and writes a generic 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.Error(message, "error", err, "path", r.URL.Path)
	WriteInternalError(w, message)
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status       string                 `json:"status"`
	Version      string                 `json:"version"`
	GitCommit    string                 `json:"git_commit,omitempty"`
	SourceLocale string                 `json:"source_locale"`
	Locales      []LocaleInfo           `json:"locales"`
	Cache        *cache.Stats           `json:"cache,omitempty"`
	LastAudit    *scheduler.AuditResult `json:"last_audit,omitempty"`
}

// LocaleInfo describes one registered locale.
type LocaleInfo struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Source bool   `json:"source,omitempty"`
}

// Status reports liveness, the locale registry and the last audit.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("database ping failed", "error", err)
		status = "degraded"
	}
	if p, ok := h.cache.(cache.Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.logger.Warn("cache ping failed", "category", "cache", "error", err)
			status = "degraded"
		}
	}

	locales := make([]LocaleInfo, 0, len(h.reg.Locales()))
	for _, code := range h.reg.Locales() {
		locales = append(locales, LocaleInfo{
			Code:   code,
			Name:   h.reg.DisplayName(code),
			Source: h.reg.IsSource(code),
		})
	}

	resp := StatusResponse{
		Status:       status,
		Version:      h.version.Version,
		GitCommit:    h.version.GitCommit,
		SourceLocale: h.reg.Source(),
		Locales:      locales,
	}
	if h.audit != nil {
		resp.LastAudit = h.audit.LastAudit()
	}
	resp.Cache = h.cacheStats()
	WriteSuccess(w, resp, nil)
}

func (h *Handler) cacheStats() *cache.Stats {
	sp, ok := h.cache.(cache.StatsProvider)
	if !ok {
		return nil
	}
	stats := sp.Stats()
	return &stats
}

// ClearCache handles POST /cache/clear. It drops every memoized
// translation, e.g. after the translator model or prompt changed.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		WriteNotFound(w, "No translation cache configured")
		return
	}
	if err := h.cache.Clear(r.Context()); err != nil {
		h.internalError(w, r, "Failed to clear translation cache", err)
		return
	}
	h.logger.Info("translation cache cleared", "category", "cache")
	WriteSuccess(w, h.cacheStats(), nil)
}
