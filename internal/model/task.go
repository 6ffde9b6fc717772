// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// EntityKind distinguishes the two localized stores.
type EntityKind string

// Entity kinds
const (
	EntityContent  EntityKind = "content"
	EntityCategory EntityKind = "category"
)

// EntityRef points at a localized entity. Content entities are identified by
// page and section (the key is the field); categories by slug.
type EntityRef struct {
	Kind    EntityKind `json:"kind"`
	Page    string     `json:"page,omitempty"`
	Section string     `json:"section,omitempty"`
	Slug    string     `json:"slug,omitempty"`
}

// ContentRef returns the entity reference for a page section.
func ContentRef(page, section string) EntityRef {
	return EntityRef{Kind: EntityContent, Page: page, Section: section}
}

// CategoryRef returns the entity reference for a category.
func CategoryRef(slug string) EntityRef {
	return EntityRef{Kind: EntityCategory, Slug: slug}
}

// String renders the reference for logs and reports.
func (r EntityRef) String() string {
	if r.Kind == EntityCategory {
		return "category:" + r.Slug
	}
	return "content:" + r.Page + "/" + r.Section
}

// Fingerprint is the (entity, field, target locale) identity of a cell.
// It is comparable and used as a map key for deduplication.
type Fingerprint struct {
	Entity EntityRef `json:"entity"`
	Field  string    `json:"field"`
	Locale string    `json:"locale"`
}

// String renders the fingerprint for logs.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%s#%s@%s", f.Entity, f.Field, f.Locale)
}

// OpaqueNames returns the names matched against the opaque field registry.
func (f Fingerprint) OpaqueNames() []string {
	if f.Entity.Kind == EntityContent {
		return []string{f.Field, f.Entity.Section + "/" + f.Field}
	}
	return []string{f.Field}
}

// TaskReason explains why a cell needs a value.
type TaskReason string

// Task reasons
const (
	ReasonMissing TaskReason = "MISSING"
	ReasonStale   TaskReason = "STALE"
	ReasonForced  TaskReason = "FORCED"
)

// Priority orders reasons when deduplicating: overwrites win over inserts.
func (r TaskReason) Priority() int {
	switch r {
	case ReasonForced:
		return 3
	case ReasonStale:
		return 2
	case ReasonMissing:
		return 1
	}
	return 0
}

// Overwrites reports whether committing the task replaces an existing value.
func (r TaskReason) Overwrites() bool {
	return r == ReasonStale || r == ReasonForced
}

// TaskState is the lifecycle state of a translation task.
type TaskState string

// Task states
const (
	StatePending    TaskState = "PENDING"
	StateDispatched TaskState = "DISPATCHED"
	StateCommitted  TaskState = "COMMITTED"
	StateFailed     TaskState = "FAILED"
	StateSkipped    TaskState = "SKIPPED"
)

// TranslationTask is an ephemeral unit of backfill work for one cell.
type TranslationTask struct {
	Fingerprint  Fingerprint `json:"fingerprint"`
	SourceLocale string      `json:"source_locale"`
	SourceValue  string      `json:"source_value"`
	Reason       TaskReason  `json:"reason"`
}
