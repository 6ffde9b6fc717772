// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strings"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
)

// Category fields carrying a per-locale value.
const (
	CategoryFieldName        = "name"
	CategoryFieldDescription = "description"
)

// CategoryFields lists the localized category fields in a stable order.
var CategoryFields = []string{CategoryFieldName, CategoryFieldDescription}

// LocaleValues maps a locale code to an optional value. A nil value is an
// unset (NULL) cell.
type LocaleValues map[string]*string

// Get returns the value for code and whether it is set and non-blank.
func (v LocaleValues) Get(code string) (string, bool) {
	p, ok := v[code]
	if !ok || p == nil || strings.TrimSpace(*p) == "" {
		return "", false
	}
	return *p, true
}

// CategoryRecord is a catalog category with one name and description per locale.
type CategoryRecord struct {
	ID           int64        `json:"id,omitempty"`
	Slug         string       `json:"slug"`
	Position     int          `json:"position"`
	Names        LocaleValues `json:"names"`
	Descriptions LocaleValues `json:"descriptions"`
}

// NewCategoryRecord creates an empty record whose locale matrix covers every
// locale in the registry.
func NewCategoryRecord(reg *locale.Registry, slug string, position int) CategoryRecord {
	rec := CategoryRecord{
		Slug:         slug,
		Position:     position,
		Names:        make(LocaleValues, len(reg.Locales())),
		Descriptions: make(LocaleValues, len(reg.Locales())),
	}
	for _, code := range reg.Locales() {
		rec.Names[code] = nil
		rec.Descriptions[code] = nil
	}
	return rec
}

// Field returns the locale matrix for a category field.
func (c CategoryRecord) Field(field string) (LocaleValues, error) {
	switch field {
	case CategoryFieldName:
		return c.Names, nil
	case CategoryFieldDescription:
		return c.Descriptions, nil
	}
	return nil, fmt.Errorf("unknown category field %q", field)
}

// Validate checks that every locale in the matrices is registered.
func (c CategoryRecord) Validate(reg *locale.Registry) error {
	if strings.TrimSpace(c.Slug) == "" {
		return fmt.Errorf("category slug is required")
	}
	for _, field := range CategoryFields {
		values, _ := c.Field(field)
		for code := range values {
			if !reg.Has(code) {
				return fmt.Errorf("category %q %s: %w: %s", c.Slug, field, locale.ErrUnknownLocale, code)
			}
		}
	}
	return nil
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
