// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists localized content entries, category records and
// the event audit log in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the content and event statements.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const contentColumns = `id, page, section, key, locale, value, created_at, updated_at`

func scanContentEntries(rows *sql.Rows) ([]model.ContentEntry, error) {
	defer func() { _ = rows.Close() }()

	var items []model.ContentEntry
	for rows.Next() {
		var e model.ContentEntry
		if err := rows.Scan(&e.ID, &e.Page, &e.Section, &e.Key, &e.Locale, &e.Value, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listContentEntries = `SELECT ` + contentColumns + `
FROM content_entry
ORDER BY page, section, key, locale`

// ListContentEntries returns every content row.
func (q *Queries) ListContentEntries(ctx context.Context) ([]model.ContentEntry, error) {
	rows, err := q.db.QueryContext(ctx, listContentEntries)
	if err != nil {
		return nil, err
	}
	return scanContentEntries(rows)
}

const listPageEntries = `SELECT ` + contentColumns + `
FROM content_entry
WHERE page = ?
ORDER BY section, key, locale`

// ListPageEntries returns the content rows of one page.
func (q *Queries) ListPageEntries(ctx context.Context, page string) ([]model.ContentEntry, error) {
	rows, err := q.db.QueryContext(ctx, listPageEntries, page)
	if err != nil {
		return nil, err
	}
	return scanContentEntries(rows)
}

const listPages = `SELECT DISTINCT page FROM content_entry ORDER BY page`

// ListPages returns the distinct page names.
func (q *Queries) ListPages(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPages)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

const getContentEntry = `SELECT ` + contentColumns + `
FROM content_entry
WHERE page = ? AND section = ? AND key = ? AND locale = ?`

// GetContentEntry returns one row by identity, or sql.ErrNoRows.
func (q *Queries) GetContentEntry(ctx context.Context, id model.Identity) (model.ContentEntry, error) {
	var e model.ContentEntry
	err := q.db.QueryRowContext(ctx, getContentEntry, id.Page, id.Section, id.Key, id.Locale).
		Scan(&e.ID, &e.Page, &e.Section, &e.Key, &e.Locale, &e.Value, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

const insertContentEntryIfAbsent = `INSERT INTO content_entry (page, section, key, locale, value, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (page, section, key, locale) DO NOTHING`

// InsertContentEntryIfAbsent inserts e unless its identity already exists.
// It reports whether a row was written; false means another writer won.
func (q *Queries) InsertContentEntryIfAbsent(ctx context.Context, e model.ContentEntry) (bool, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, insertContentEntryIfAbsent,
		e.Page, e.Section, e.Key, e.Locale, e.Value, now, now)
	if err != nil {
		return false, fmt.Errorf("inserting content entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const overwriteContentEntry = `INSERT INTO content_entry (page, section, key, locale, value, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (page, section, key, locale) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at`

// OverwriteContentEntry sets the value of one cell, creating it if needed.
func (q *Queries) OverwriteContentEntry(ctx context.Context, e model.ContentEntry) error {
	now := time.Now().UTC()
	if _, err := q.db.ExecContext(ctx, overwriteContentEntry,
		e.Page, e.Section, e.Key, e.Locale, e.Value, now, now); err != nil {
		return fmt.Errorf("overwriting content entry: %w", err)
	}
	return nil
}

const deleteContentEntry = `DELETE FROM content_entry
WHERE page = ? AND section = ? AND key = ? AND locale = ?`

// DeleteContentEntry removes one row and reports whether it existed.
func (q *Queries) DeleteContentEntry(ctx context.Context, id model.Identity) (bool, error) {
	res, err := q.db.ExecContext(ctx, deleteContentEntry, id.Page, id.Section, id.Key, id.Locale)
	if err != nil {
		return false, fmt.Errorf("deleting content entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
