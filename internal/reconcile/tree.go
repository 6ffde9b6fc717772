// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// Tree is the nested view of one page in one locale. Values are either a
// string (general-section key) or a map[string]string (nested section).
type Tree map[string]any

// Section returns the nested section name, or nil if absent or not a section.
func (t Tree) Section(name string) map[string]string {
	s, _ := t[name].(map[string]string)
	return s
}

// nestedSections returns, per page, the set of nested section names.
func nestedSections(entries []model.ContentEntry) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, e := range entries {
		if e.IsGeneral() {
			continue
		}
		if out[e.Page] == nil {
			out[e.Page] = make(map[string]bool)
		}
		out[e.Page][e.Section] = true
	}
	return out
}

// FindConflicts returns every general-section row whose key names a nested
// section on the same page. The rule is locale-agnostic: a collision in one
// locale makes the page ambiguous for all of them.
func FindConflicts(entries []model.ContentEntry) ConflictSet {
	sections := nestedSections(entries)

	var out ConflictSet
	for _, e := range entries {
		if e.IsGeneral() && sections[e.Page][e.Key] {
			out = append(out, &StructuralConflictError{Entry: e})
		}
	}
	slices.SortFunc(out, func(a, b *StructuralConflictError) int {
		return cmp.Or(
			cmp.Compare(a.Entry.Page, b.Entry.Page),
			cmp.Compare(a.Entry.Key, b.Entry.Key),
			cmp.Compare(a.Entry.Locale, b.Entry.Locale),
		)
	})
	return out
}

// Assemble builds the nested per-locale tree of page from flat rows. Rows of
// other pages are ignored. The result does not depend on row order.
//
// Nested sections are placed first; a general key that lands on a section
// object fails the whole page with a ConflictSet. Assemble never repairs.
func Assemble(page string, rows []model.ContentEntry) (map[string]Tree, error) {
	var pageRows []model.ContentEntry
	seen := make(map[model.Identity]bool)
	for _, r := range rows {
		if r.Page != page {
			continue
		}
		id := r.Identity()
		if seen[id] {
			return nil, fmt.Errorf("%w: %s/%s/%s@%s", ErrDuplicateIdentity, id.Page, id.Section, id.Key, id.Locale)
		}
		seen[id] = true
		pageRows = append(pageRows, r)
	}

	trees := make(map[string]Tree)
	tree := func(code string) Tree {
		t, ok := trees[code]
		if !ok {
			t = make(Tree)
			trees[code] = t
		}
		return t
	}

	sections := make(map[string]bool)
	for _, r := range pageRows {
		if r.IsGeneral() {
			continue
		}
		sections[r.Section] = true
		t := tree(r.Locale)
		s, ok := t[r.Section].(map[string]string)
		if !ok {
			s = make(map[string]string)
			t[r.Section] = s
		}
		s[r.Key] = r.Value
	}

	var conflicts ConflictSet
	for _, r := range pageRows {
		if !r.IsGeneral() {
			continue
		}
		if sections[r.Key] {
			conflicts = append(conflicts, &StructuralConflictError{Entry: r})
			continue
		}
		tree(r.Locale)[r.Key] = r.Value
	}
	if len(conflicts) > 0 {
		slices.SortFunc(conflicts, func(a, b *StructuralConflictError) int {
			return cmp.Or(cmp.Compare(a.Entry.Key, b.Entry.Key), cmp.Compare(a.Entry.Locale, b.Entry.Locale))
		})
		return nil, conflicts
	}

	return trees, nil
}

// Pages returns the distinct pages present in rows, sorted.
func Pages(rows []model.ContentEntry) []string {
	set := make(map[string]bool)
	for _, r := range rows {
		set[r.Page] = true
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
