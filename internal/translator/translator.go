// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translator wraps the external machine-translation capability.
package translator

import (
	"context"
	"errors"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
)

// Request is one text to translate.
type Request struct {
	Text         string
	SourceLocale string
	TargetLocale string
	// Context describes where the text appears, e.g. "HomePage/hero#title".
	Context string
	// Fresh asks for a new translation rather than a memoized one.
	Fresh bool
}

// Translator translates a single text. Implementations return a
// *reconcile.TranslationCapabilityError on failure.
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Translator interface.
type Func func(ctx context.Context, req Request) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("no translation provider configured")

// Unavailable is used when no provider is configured. Every call fails
// without retry.
type Unavailable struct{}

// Translate always fails.
func (Unavailable) Translate(context.Context, Request) (string, error) {
	return "", &reconcile.TranslationCapabilityError{Err: ErrNotConfigured}
}
