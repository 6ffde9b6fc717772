// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/locale"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

var columnNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Categories reads and writes the category table, whose localized columns
// follow the <field>_<locale suffix> naming scheme.
type Categories struct {
	db  DBTX
	reg *locale.Registry
}

// NewCategories creates a category store for the locales in reg.
func NewCategories(db DBTX, reg *locale.Registry) *Categories {
	return &Categories{db: db, reg: reg}
}

// column returns the validated column name of (field, locale).
func (c *Categories) column(field, code string) (string, error) {
	if !slices.Contains(model.CategoryFields, field) {
		return "", fmt.Errorf("unknown category field %q", field)
	}
	if !c.reg.Has(code) {
		return "", fmt.Errorf("%w: %s", locale.ErrUnknownLocale, code)
	}
	name := field + "_" + locale.ColumnSuffix(code)
	if !columnNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid column name %q", name)
	}
	return name, nil
}

// localizedColumns lists every localized column, fields outer, locales inner.
func (c *Categories) localizedColumns() ([]string, error) {
	cols := make([]string, 0, len(model.CategoryFields)*len(c.reg.Locales()))
	for _, field := range model.CategoryFields {
		for _, code := range c.reg.Locales() {
			col, err := c.column(field, code)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
	}
	return cols, nil
}

// EnsureColumns adds any localized column missing for the registered locales.
// Existing columns are never dropped.
func (c *Categories) EnsureColumns(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx, `PRAGMA table_info(category)`)
	if err != nil {
		return fmt.Errorf("reading category columns: %w", err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			_ = rows.Close()
			return err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	cols, err := c.localizedColumns()
	if err != nil {
		return err
	}
	for _, col := range cols {
		if existing[col] {
			continue
		}
		if _, err := c.db.ExecContext(ctx, `ALTER TABLE category ADD COLUMN `+col+` TEXT`); err != nil {
			return fmt.Errorf("adding column %s: %w", col, err)
		}
	}
	return nil
}

func (c *Categories) selectSQL(where string) (string, error) {
	cols, err := c.localizedColumns()
	if err != nil {
		return "", err
	}
	q := `SELECT id, slug, position, ` + strings.Join(cols, ", ") + ` FROM category`
	if where != "" {
		q += ` WHERE ` + where
	}
	return q + ` ORDER BY position, slug`, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (c *Categories) scanRecord(row rowScanner) (model.CategoryRecord, error) {
	rec := model.NewCategoryRecord(c.reg, "", 0)
	locales := c.reg.Locales()
	cells := make([]sql.NullString, len(model.CategoryFields)*len(locales))

	dest := make([]any, 0, 3+len(cells))
	dest = append(dest, &rec.ID, &rec.Slug, &rec.Position)
	for i := range cells {
		dest = append(dest, &cells[i])
	}
	if err := row.Scan(dest...); err != nil {
		return model.CategoryRecord{}, err
	}

	for fi, field := range model.CategoryFields {
		values, _ := rec.Field(field)
		for li, code := range locales {
			if cell := cells[fi*len(locales)+li]; cell.Valid {
				values[code] = model.StringPtr(cell.String)
			}
		}
	}
	return rec, nil
}

// ListCategories returns every category ordered by position then slug.
func (c *Categories) ListCategories(ctx context.Context) ([]model.CategoryRecord, error) {
	q, err := c.selectSQL("")
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.CategoryRecord
	for rows.Next() {
		rec, err := c.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCategory returns one category by slug, or sql.ErrNoRows.
func (c *Categories) GetCategory(ctx context.Context, slug string) (model.CategoryRecord, error) {
	q, err := c.selectSQL("slug = ?")
	if err != nil {
		return model.CategoryRecord{}, err
	}
	return c.scanRecord(c.db.QueryRowContext(ctx, q, slug))
}

// InsertCategoryIfAbsent inserts rec unless its slug exists and reports
// whether a row was written.
func (c *Categories) InsertCategoryIfAbsent(ctx context.Context, rec model.CategoryRecord) (bool, error) {
	if err := rec.Validate(c.reg); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	cols := []string{"slug", "position", "created_at", "updated_at"}
	args := []any{rec.Slug, rec.Position, now, now}
	for _, field := range model.CategoryFields {
		values, _ := rec.Field(field)
		for _, code := range c.reg.Locales() {
			v, ok := values[code]
			if !ok || v == nil {
				continue
			}
			col, err := c.column(field, code)
			if err != nil {
				return false, err
			}
			cols = append(cols, col)
			args = append(args, *v)
		}
	}

	q := `INSERT INTO category (` + strings.Join(cols, ", ") + `) VALUES (` +
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") +
		`) ON CONFLICT (slug) DO NOTHING`
	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("inserting category %q: %w", rec.Slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FillCategoryField writes value into an unset (NULL or blank) cell and
// reports whether it did. An already-populated cell is left untouched.
func (c *Categories) FillCategoryField(ctx context.Context, slug, field, code, value string) (bool, error) {
	col, err := c.column(field, code)
	if err != nil {
		return false, err
	}
	q := `UPDATE category SET ` + col + ` = ?, updated_at = ?
WHERE slug = ? AND (` + col + ` IS NULL OR trim(` + col + `) = '')`
	res, err := c.db.ExecContext(ctx, q, value, time.Now().UTC(), slug)
	if err != nil {
		return false, fmt.Errorf("filling %s.%s: %w", slug, col, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// OverwriteCategoryField replaces the value of one cell and reports whether
// the category exists.
func (c *Categories) OverwriteCategoryField(ctx context.Context, slug, field, code, value string) (bool, error) {
	col, err := c.column(field, code)
	if err != nil {
		return false, err
	}
	q := `UPDATE category SET ` + col + ` = ?, updated_at = ? WHERE slug = ?`
	res, err := c.db.ExecContext(ctx, q, value, time.Now().UTC(), slug)
	if err != nil {
		return false, fmt.Errorf("overwriting %s.%s: %w", slug, col, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
