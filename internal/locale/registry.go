// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package locale holds the ordered set of supported locales, the designated
// source locale, and the registry of opaque fields that are copied across
// locales instead of being translated.
package locale

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Registry errors
var (
	ErrNoLocales       = errors.New("locale registry requires at least one locale")
	ErrUnknownLocale   = errors.New("unknown locale")
	ErrDuplicateLocale = errors.New("duplicate locale")
	ErrInvalidPattern  = errors.New("invalid opaque field pattern")
)

// Registry is an immutable, ordered locale set with one source locale.
// It is safe for concurrent use.
type Registry struct {
	locales []string
	source  string
	opaque  []string
}

// NewRegistry validates and builds a Registry. Locale order is preserved.
func NewRegistry(source string, locales []string, opaquePatterns []string) (*Registry, error) {
	if len(locales) == 0 {
		return nil, ErrNoLocales
	}

	// codes sharing a column suffix ("pt-BR", "pt_BR", "PT-BR") would map
	// onto the same category columns
	suffixes := make(map[string]string, len(locales))
	cleaned := make([]string, 0, len(locales))
	for _, code := range locales {
		code = strings.TrimSpace(code)
		if _, err := language.Parse(code); err != nil {
			return nil, fmt.Errorf("parsing locale %q: %w", code, err)
		}
		suffix := ColumnSuffix(code)
		if prev, ok := suffixes[suffix]; ok {
			return nil, fmt.Errorf("%w: %s collides with %s", ErrDuplicateLocale, code, prev)
		}
		suffixes[suffix] = code
		cleaned = append(cleaned, code)
	}

	source = strings.TrimSpace(source)
	if !slices.Contains(cleaned, source) {
		return nil, fmt.Errorf("%w: source locale %q not in %v", ErrUnknownLocale, source, cleaned)
	}

	patterns := make([]string, 0, len(opaquePatterns))
	for _, p := range opaquePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
		patterns = append(patterns, p)
	}

	return &Registry{
		locales: cleaned,
		source:  source,
		opaque:  patterns,
	}, nil
}

// MustRegistry is NewRegistry that panics on error. Intended for tests and fixtures.
func MustRegistry(source string, locales []string, opaquePatterns []string) *Registry {
	r, err := NewRegistry(source, locales, opaquePatterns)
	if err != nil {
		panic(err)
	}
	return r
}

// Source returns the source locale.
func (r *Registry) Source() string {
	return r.source
}

// Locales returns all locales in registry order.
func (r *Registry) Locales() []string {
	return slices.Clone(r.locales)
}

// Targets returns every locale except the source, in registry order.
func (r *Registry) Targets() []string {
	out := make([]string, 0, len(r.locales)-1)
	for _, code := range r.locales {
		if code != r.source {
			out = append(out, code)
		}
	}
	return out
}

// Has reports whether code is a registered locale.
func (r *Registry) Has(code string) bool {
	return slices.Contains(r.locales, code)
}

// IsSource reports whether code is the source locale.
func (r *Registry) IsSource(code string) bool {
	return code == r.source
}

// OpaquePatterns returns the registered opaque field patterns.
func (r *Registry) OpaquePatterns() []string {
	return slices.Clone(r.opaque)
}

// IsOpaque reports whether any of the given names matches an opaque pattern.
// Content entries pass both the key and "section/key"; categories pass the field.
func (r *Registry) IsOpaque(names ...string) bool {
	for _, name := range names {
		if name == "" {
			continue
		}
		for _, p := range r.opaque {
			// patterns were validated at construction, so Match cannot fail
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
	}
	return false
}

// DisplayName returns the English name of a locale ("de" -> "German"),
// falling back to the code itself.
func (r *Registry) DisplayName(code string) string {
	return DisplayNameOf(code)
}

// DisplayNameOf is DisplayName without a registry.
func DisplayNameOf(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// ColumnSuffix maps a locale code to a lower-case identifier safe for use in
// a SQL column name ("pt-BR" -> "pt_br").
func ColumnSuffix(code string) string {
	var sb strings.Builder
	for _, c := range strings.ToLower(code) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			sb.WriteRune(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// opaqueSchemes are the URL schemes accepted for copied opaque values.
var opaqueSchemes = []string{"http", "https", "mailto", "tel"}

// ValidOpaqueShape reports whether a copied opaque value looks like a link:
// an absolute path, a fragment, or an http(s), mailto or tel URL.
func ValidOpaqueShape(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" || v != value {
		return false
	}
	if strings.HasPrefix(v, "/") || strings.HasPrefix(v, "#") {
		return true
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	switch scheme := strings.ToLower(u.Scheme); {
	case !slices.Contains(opaqueSchemes, scheme):
		return false
	case scheme == "http" || scheme == "https":
		return u.Host != ""
	}
	return u.Opaque != ""
}
