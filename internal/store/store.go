// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
)

// Store combines the content, event and category statements over one database.
type Store struct {
	*Queries
	*Categories

	db *sql.DB
}

// NewStore creates a Store for the locales in reg.
func NewStore(db *sql.DB, reg *locale.Registry) *Store {
	return &Store{
		Queries:    New(db),
		Categories: NewCategories(db, reg),
		db:         db,
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
