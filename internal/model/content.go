// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// GeneralSection is the reserved section whose keys attach directly under the page.
const GeneralSection = "general"

// ContentEntry is one localized editorial value, unique on (page, section, key, locale).
type ContentEntry struct {
	ID        int64     `json:"id,omitempty"`
	Page      string    `json:"page"`
	Section   string    `json:"section"`
	Key       string    `json:"key"`
	Locale    string    `json:"locale"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Identity is the unique storage key of a ContentEntry.
type Identity struct {
	Page    string
	Section string
	Key     string
	Locale  string
}

// GroupKey identifies all locale variants of one logical content cell.
type GroupKey struct {
	Page    string `json:"page"`
	Section string `json:"section"`
	Key     string `json:"key"`
}

// String renders the group as page/section/key.
func (g GroupKey) String() string {
	return g.Page + "/" + g.Section + "/" + g.Key
}

// Identity returns the unique storage key of the entry.
func (e ContentEntry) Identity() Identity {
	return Identity{Page: e.Page, Section: e.Section, Key: e.Key, Locale: e.Locale}
}

// Group returns the logical group the entry belongs to.
func (e ContentEntry) Group() GroupKey {
	return GroupKey{Page: e.Page, Section: e.Section, Key: e.Key}
}

// IsGeneral reports whether the entry lives in the reserved general section.
func (e ContentEntry) IsGeneral() bool {
	return e.Section == GeneralSection
}
