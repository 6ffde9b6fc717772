// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

func testRegistry() *locale.Registry {
	return locale.MustRegistry("fr", []string{"en", "fr", "de", "it", "nl", "es", "pt"}, []string{"*_url"})
}

func entry(page, section, key, loc, value string) model.ContentEntry {
	return model.ContentEntry{Page: page, Section: section, Key: key, Locale: loc, Value: value}
}

func taskLocales(tasks []model.TranslationTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Fingerprint.Locale
	}
	return out
}

func TestDetectContentGaps(t *testing.T) {
	reg := testRegistry()
	rows := []model.ContentEntry{
		entry("HomePage", "gallery", "title", "en", "Moments from Gozo"),
		entry("HomePage", "gallery", "title", "fr", "Moments de Gozo"),
	}

	d := DetectContentGaps(rows, reg)

	assert.Empty(t, d.MissingSources)
	require.Len(t, d.Tasks, 5)
	assert.Equal(t, []string{"de", "it", "nl", "es", "pt"}, taskLocales(d.Tasks))
	for _, task := range d.Tasks {
		assert.Equal(t, model.ReasonMissing, task.Reason)
		assert.Equal(t, "Moments de Gozo", task.SourceValue)
		assert.Equal(t, "fr", task.SourceLocale)
		assert.Equal(t, model.ContentRef("HomePage", "gallery"), task.Fingerprint.Entity)
		assert.Equal(t, "title", task.Fingerprint.Field)
	}
}

func TestDetectContentGaps_MissingSource(t *testing.T) {
	reg := testRegistry()
	rows := []model.ContentEntry{
		entry("HomePage", "hero", "title", "en", "Welcome"),
		entry("HomePage", "hero", "subtitle", "fr", "   "),
	}

	d := DetectContentGaps(rows, reg)

	assert.Empty(t, d.Tasks)
	require.Len(t, d.MissingSources, 2)
	assert.Equal(t, "subtitle", d.MissingSources[0].Field)
	assert.Equal(t, "title", d.MissingSources[1].Field)
	assert.Equal(t, CodeMissingSource, ErrorCode(d.MissingSources[0]))
}

func TestDetectContentGaps_Complete(t *testing.T) {
	reg := locale.MustRegistry("en", []string{"en", "fr"}, nil)
	rows := []model.ContentEntry{
		entry("About", "general", "title", "en", "About"),
		entry("About", "general", "title", "fr", ""),
	}

	d := DetectContentGaps(rows, reg)
	assert.Empty(t, d.Tasks, "an existing row counts as present even when blank")
	assert.Empty(t, d.MissingSources)
}

func TestDetectCategoryGaps(t *testing.T) {
	reg := locale.MustRegistry("en", []string{"en", "fr", "de"}, nil)
	rec := model.NewCategoryRecord(reg, "diving", 1)
	rec.Names["en"] = model.StringPtr("Diving")
	rec.Names["fr"] = model.StringPtr("Plongée")
	rec.Names["de"] = model.StringPtr("")

	d := DetectCategoryGaps([]model.CategoryRecord{rec}, reg)

	require.Len(t, d.Tasks, 1)
	assert.Equal(t, model.Fingerprint{Entity: model.CategoryRef("diving"), Field: "name", Locale: "de"}, d.Tasks[0].Fingerprint)
	assert.Equal(t, "Diving", d.Tasks[0].SourceValue)

	require.Len(t, d.MissingSources, 1)
	assert.Equal(t, "description", d.MissingSources[0].Field)
}

func TestDetectContentStale(t *testing.T) {
	reg := testRegistry()
	rows := []model.ContentEntry{
		entry("HomePage", "hero", "greeting", "fr", "Bonjour"),
		entry("HomePage", "hero", "greeting", "de", "Bonjour"),
		entry("HomePage", "hero", "greeting", "it", "Buongiorno"),
		entry("HomePage", "hero", "image_url", "fr", "/img/hero.jpg"),
		entry("HomePage", "hero", "image_url", "de", "/img/hero.jpg"),
		entry("HomePage", "hero", "image_url", "it", "/img/hero-it.jpg"),
	}

	d := DetectContentStale(rows, reg)

	require.Len(t, d.Tasks, 2)
	byField := map[string]model.TranslationTask{}
	for _, task := range d.Tasks {
		byField[task.Fingerprint.Field] = task
		assert.Equal(t, model.ReasonStale, task.Reason)
	}
	assert.Equal(t, "de", byField["greeting"].Fingerprint.Locale)
	assert.Equal(t, "it", byField["image_url"].Fingerprint.Locale, "divergent opaque value must be restored")
}

func TestDetectCategoryStale(t *testing.T) {
	reg := locale.MustRegistry("en", []string{"en", "fr"}, nil)
	rec := model.NewCategoryRecord(reg, "hiking", 2)
	rec.Names["en"] = model.StringPtr("Hiking")
	rec.Names["fr"] = model.StringPtr("Hiking")
	rec.Descriptions["en"] = model.StringPtr("Walks")
	rec.Descriptions["fr"] = model.StringPtr("Randonnées")

	d := DetectCategoryStale([]model.CategoryRecord{rec}, reg)

	require.Len(t, d.Tasks, 1)
	assert.Equal(t, "name", d.Tasks[0].Fingerprint.Field)
	assert.Equal(t, "fr", d.Tasks[0].Fingerprint.Locale)
}

func TestDedupe(t *testing.T) {
	fp := model.Fingerprint{Entity: model.ContentRef("P", "s"), Field: "k", Locale: "de"}
	other := model.Fingerprint{Entity: model.ContentRef("P", "s"), Field: "k", Locale: "it"}

	out := Dedupe([]model.TranslationTask{
		{Fingerprint: fp, Reason: model.ReasonMissing, SourceValue: "a"},
		{Fingerprint: other, Reason: model.ReasonMissing},
		{Fingerprint: fp, Reason: model.ReasonForced, SourceValue: "b"},
		{Fingerprint: fp, Reason: model.ReasonStale, SourceValue: "c"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, fp, out[0].Fingerprint)
	assert.Equal(t, model.ReasonForced, out[0].Reason)
	assert.Equal(t, "b", out[0].SourceValue)
	assert.Equal(t, other, out[1].Fingerprint)
}

func TestScanContent_ExcludesConflictingGroups(t *testing.T) {
	reg := locale.MustRegistry("en", []string{"en", "es"}, nil)
	rows := []model.ContentEntry{
		entry("HomePage", "general", "cta", "en", "Book now"),
		entry("HomePage", "cta", "title", "en", "Contact"),
	}

	res := ScanContent(rows, reg)

	require.Len(t, res.Conflicts, 1)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "cta", res.Tasks[0].Fingerprint.Entity.Section)
	assert.Equal(t, map[model.TaskReason]int{model.ReasonMissing: 1}, res.Counts())
}

func TestErrorCode(t *testing.T) {
	fp := model.Fingerprint{Field: "k", Locale: "de"}
	tests := []struct {
		err  error
		want string
	}{
		{&StructuralConflictError{}, CodeStructuralConflict},
		{ConflictSet{&StructuralConflictError{}}, CodeStructuralConflict},
		{&TranslationCapabilityError{Err: errors.New("boom")}, CodeTranslationCapability},
		{&DuplicateWriteConflict{Fingerprint: fp}, CodeDuplicateWrite},
		{&OpaqueFieldShapeError{Fingerprint: fp}, CodeOpaqueShape},
		{&UnchangedTranslationError{Fingerprint: fp}, CodeUnchanged},
		{errors.New("plain"), CodeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err))
	}
}
