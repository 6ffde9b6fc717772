// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/testutil"
)

type stubStore struct {
	entries []model.ContentEntry
	records []model.CategoryRecord
}

func (s stubStore) ListContentEntries(context.Context) ([]model.ContentEntry, error) {
	return s.entries, nil
}

func (s stubStore) ListCategories(context.Context) ([]model.CategoryRecord, error) {
	return s.records, nil
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(stubStore{}, testutil.TestRegistry(), "*/5 * * * *", testutil.TestLoggerSilent())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(stubStore{}, testutil.TestRegistry(), "every tuesday", testutil.TestLoggerSilent())
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestValidateSchedule(t *testing.T) {
	if err := ValidateSchedule("0 3 * * *"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateSchedule("0 3 * *"); err == nil {
		t.Error("expected error for four-field schedule")
	}
}

func TestRunAudit(t *testing.T) {
	reg := locale.MustRegistry("en", []string{"en", "fr", "de"}, nil)
	st := stubStore{entries: []model.ContentEntry{
		{Page: "HomePage", Section: "hero", Key: "title", Locale: "en", Value: "Welcome"},
		{Page: "HomePage", Section: "hero", Key: "title", Locale: "fr", Value: "Welcome"},
		{Page: "HomePage", Section: "hero", Key: "subtitle", Locale: "fr", Value: "Sous-titre"},
		{Page: "HomePage", Section: "general", Key: "cta", Locale: "en", Value: "Book"},
		{Page: "HomePage", Section: "cta", Key: "label", Locale: "en", Value: "Book"},
	}}

	s := New(st, reg, "@daily", testutil.TestLoggerSilent())
	if s.LastAudit() != nil {
		t.Fatal("expected no audit before the first run")
	}

	res, err := s.RunAudit(context.Background())
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}

	// hero/title: de missing, fr stale; cta/label: fr, de missing
	if res.Missing != 3 {
		t.Errorf("Missing = %d, want 3", res.Missing)
	}
	if res.Stale != 1 {
		t.Errorf("Stale = %d, want 1", res.Stale)
	}
	if res.MissingSources != 1 {
		t.Errorf("MissingSources = %d, want 1", res.MissingSources)
	}
	if res.Conflicts != 1 {
		t.Errorf("Conflicts = %d, want 1", res.Conflicts)
	}
	if s.LastAudit() != res {
		t.Error("LastAudit should return the latest result")
	}
}
