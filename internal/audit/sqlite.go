// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore implements Store on a sqlite database. It shares the
// handle opened by the store package.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a sqlite-backed audit store. The
// security_events table is created by the store package's migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append persists an event, assigning its ID from the table's
// autoincrement sequence.
func (s *SQLiteStore) Append(ctx context.Context, event *Event) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO security_events (date, action, subject, object, path) VALUES (?, ?, ?, ?, ?)`,
		event.Date.UTC().Format(time.RFC3339Nano), string(event.Action), event.Subject, event.Object, event.Path)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	event.ID = id
	return nil
}

// ListAll returns all events ordered by id ascending.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, action, subject, object, path FROM security_events ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var date string
		var action string
		if err := rows.Scan(&e.ID, &date, &action, &e.Subject, &e.Object, &e.Path); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Action = Action(action)
		if t, err := time.Parse(time.RFC3339Nano, date); err == nil {
			e.Date = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
