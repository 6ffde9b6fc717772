// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

func homePageRows() []model.ContentEntry {
	return []model.ContentEntry{
		entry("HomePage", "general", "title", "en", "Gozo"),
		entry("HomePage", "general", "title", "fr", "Gozo FR"),
		entry("HomePage", "hero", "heading", "en", "Discover Gozo"),
		entry("HomePage", "hero", "heading", "fr", "Découvrez Gozo"),
		entry("HomePage", "hero", "image_url", "en", "/img/hero.jpg"),
		entry("HomePage", "gallery", "title", "en", "Moments from Gozo"),
		entry("About", "general", "title", "en", "About"),
	}
}

func TestAssemble(t *testing.T) {
	trees, err := Assemble("HomePage", homePageRows())
	require.NoError(t, err)

	require.Contains(t, trees, "en")
	en := trees["en"]
	assert.Equal(t, "Gozo", en["title"])
	assert.Equal(t, map[string]string{"heading": "Discover Gozo", "image_url": "/img/hero.jpg"}, en.Section("hero"))
	assert.Equal(t, map[string]string{"title": "Moments from Gozo"}, en.Section("gallery"))

	fr := trees["fr"]
	assert.Equal(t, "Gozo FR", fr["title"])
	assert.Equal(t, map[string]string{"heading": "Découvrez Gozo"}, fr.Section("hero"))
	assert.Nil(t, fr.Section("title"), "scalar is not a section")
}

func TestAssemble_IgnoresOtherPages(t *testing.T) {
	trees, err := Assemble("About", homePageRows())
	require.NoError(t, err)
	assert.Equal(t, map[string]Tree{"en": {"title": "About"}}, trees)
}

func TestAssemble_OrderInsensitive(t *testing.T) {
	rows := homePageRows()
	want, err := Assemble("HomePage", rows)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		shuffled := slices.Clone(rows)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := Assemble("HomePage", shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAssemble_Conflict(t *testing.T) {
	rows := []model.ContentEntry{
		entry("HomePage", "general", "cta", "es", "X"),
		entry("HomePage", "cta", "title", "es", "Y"),
	}

	for _, order := range [][]model.ContentEntry{rows, {rows[1], rows[0]}} {
		_, err := Assemble("HomePage", order)
		require.Error(t, err)

		var conflict *StructuralConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, rows[0], conflict.Entry)
	}
}

func TestAssemble_DuplicateIdentity(t *testing.T) {
	rows := []model.ContentEntry{
		entry("HomePage", "hero", "heading", "en", "A"),
		entry("HomePage", "hero", "heading", "en", "B"),
	}
	_, err := Assemble("HomePage", rows)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestFindConflicts_LocaleAgnostic(t *testing.T) {
	rows := []model.ContentEntry{
		entry("HomePage", "general", "cta", "en", "Book"),
		entry("HomePage", "general", "cta", "es", "Reservar"),
		entry("HomePage", "cta", "title", "es", "Y"),
		entry("About", "general", "cta", "en", "Fine here"),
	}

	conflicts := FindConflicts(rows)

	require.Len(t, conflicts, 2)
	assert.Equal(t, "en", conflicts[0].Entry.Locale)
	assert.Equal(t, "es", conflicts[1].Entry.Locale)
	assert.Contains(t, conflicts.Error(), "2 structural conflicts")
}

func TestPages(t *testing.T) {
	assert.Equal(t, []string{"About", "HomePage"}, Pages(homePageRows()))
}

// memoryRepairStore is a RepairStore over a slice.
type memoryRepairStore struct {
	rows []model.ContentEntry
}

func (m *memoryRepairStore) ListContentEntries(context.Context) ([]model.ContentEntry, error) {
	return slices.Clone(m.rows), nil
}

func (m *memoryRepairStore) ListPageEntries(_ context.Context, page string) ([]model.ContentEntry, error) {
	var out []model.ContentEntry
	for _, r := range m.rows {
		if r.Page == page {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepairStore) DeleteContentEntry(_ context.Context, id model.Identity) (bool, error) {
	for i, r := range m.rows {
		if r.Identity() == id {
			m.rows = slices.Delete(m.rows, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepairer_Repair(t *testing.T) {
	conflicting := entry("HomePage", "general", "cta", "es", "X")
	nested := entry("HomePage", "cta", "title", "es", "Y")
	store := &memoryRepairStore{rows: []model.ContentEntry{conflicting, nested}}

	res, err := NewRepairer(store, quietLogger()).Repair(context.Background(), RepairOptions{})
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, []model.ContentEntry{conflicting}, res.Deleted)
	assert.Equal(t, []model.ContentEntry{nested}, store.rows)

	trees, err := Assemble("HomePage", store.rows)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "Y"}, trees["es"].Section("cta"))
}

func TestRepairer_DryRun(t *testing.T) {
	store := &memoryRepairStore{rows: []model.ContentEntry{
		entry("HomePage", "general", "cta", "es", "X"),
		entry("HomePage", "cta", "title", "es", "Y"),
	}}

	res, err := NewRepairer(store, quietLogger()).Repair(context.Background(), RepairOptions{Page: "HomePage", DryRun: true})
	require.NoError(t, err)

	assert.Len(t, res.Conflicts, 1)
	assert.Empty(t, res.Deleted)
	assert.Len(t, store.rows, 2)
}

func TestRepairer_NoConflicts(t *testing.T) {
	store := &memoryRepairStore{rows: homePageRows()}

	res, err := NewRepairer(store, quietLogger()).Repair(context.Background(), RepairOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Len(t, store.rows, len(homePageRows()))
}
