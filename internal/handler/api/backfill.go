// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/backfill"
)

// Backfill handles POST /backfill. The run is synchronous; per-task
// failures are reported in the body with a 200 status.
func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req backfill.Request
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.backfill.Run(r.Context(), req)
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}
	WriteSuccess(w, report, nil)
}

// Retranslate handles POST /retranslate.
func (h *Handler) Retranslate(w http.ResponseWriter, r *http.Request) {
	var req backfill.RetranslateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.backfill.Retranslate(r.Context(), req)
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}
	WriteSuccess(w, report, nil)
}

func (h *Handler) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, backfill.ErrInvalidRequest) {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	h.internalError(w, r, "Backfill run failed", err)
}
