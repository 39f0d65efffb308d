// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// InsertEvent stores an event and its tags. Used by seeding and tests; the
// events catalog itself is owned by the wider platform.
func (db *DB) InsertEvent(ctx context.Context, event recommend.Event) error {
	if event.ID == "" {
		return fmt.Errorf("event id is required")
	}
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert event: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	start := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO events (id, title, status, start_at, neighbourhood, favorites_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.Title, string(event.Status), event.StartAt,
		nullable(event.Neighbourhood), event.FavoritesCount)
	metrics.RecordDBQuery("insert", "events", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_tags WHERE event_id = ?`, event.ID); err != nil {
		return fmt.Errorf("clear event tags: %w", err)
	}
	for _, tag := range event.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO event_tags (event_id, category, value)
			VALUES (?, ?, ?)`,
			event.ID, string(tag.Category), tag.Value); err != nil {
			return fmt.Errorf("insert event tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert event: %w", err)
	}
	return nil
}

// GetEvent returns one event with its tags, or ErrNotFound.
func (db *DB) GetEvent(ctx context.Context, eventID string) (*recommend.Event, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT e.id, e.title, e.status, e.start_at, e.neighbourhood, e.favorites_count,
		       t.category, t.value
		FROM events e
		LEFT JOIN event_tags t ON t.event_id = e.id
		WHERE e.id = ?`, eventID)
	metrics.RecordDBQuery("select", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	defer rows.Close()

	events, err := scanEventRows(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return &events[0], nil
}

// RecomputeFavoritesCount refreshes the denormalized counter for one event.
func (db *DB) recomputeFavoritesCount(ctx context.Context, tx *sql.Tx, eventID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE events SET favorites_count =
			(SELECT COUNT(*) FROM favorites WHERE event_id = ?)
		WHERE id = ?`, eventID, eventID)
	if err != nil {
		return fmt.Errorf("recompute favorites count: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// IsNotFound reports whether err carries ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
