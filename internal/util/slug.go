// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug generation and validation for category
// identifiers.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// separators become hyphens before the character filter runs
	separators = strings.NewReplacer(" ", "-", "_", "-", "/", "-", ".", "-")
	nonSlug    = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphens    = regexp.MustCompile(`-{2,}`)
	validSlug  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify derives a slug from a display name: accents are stripped,
// separators become single hyphens and anything else outside [a-z0-9-]
// is dropped. Names without any Latin letters or digits yield "".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	out = separators.Replace(strings.ToLower(strings.TrimSpace(out)))
	out = nonSlug.ReplaceAllString(out, "")
	out = hyphens.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// IsValidSlug reports whether s is lowercase alphanumeric words joined by
// single hyphens.
func IsValidSlug(s string) bool {
	return validSlug.MatchString(s)
}
