// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// CreateEventParams holds the columns of a new event row.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

const createEvent = `INSERT INTO event (level, category, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, level, category, message, metadata, created_at`

// CreateEvent appends an event to the audit log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	var e model.Event
	err := q.db.QueryRowContext(ctx, createEvent,
		arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt.UTC()).
		Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt)
	return e, err
}

const listEvents = `SELECT id, level, category, message, metadata, created_at
FROM event
WHERE (? = '' OR category = ?)
ORDER BY created_at DESC, id DESC
LIMIT ?`

// ListEvents returns the newest events, optionally filtered by category.
func (q *Queries) ListEvents(ctx context.Context, category string, limit int) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, category, category, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
