// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
)

// AddFavorite marks an event as favorited by the user and refreshes the
// event's denormalized counter. Favoriting twice is a no-op.
func (db *DB) AddFavorite(ctx context.Context, userID, eventID string) error {
	if _, err := db.GetEvent(ctx, eventID); err != nil {
		return err
	}

	ctx, cancel := queryCtx(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add favorite: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	start := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (user_id, event_id, created_at)
		VALUES (?, ?, ?)`,
		userID, eventID, time.Now().UTC())
	if err != nil {
		metrics.RecordDBQuery("insert", "favorites", time.Since(start), err)
		return fmt.Errorf("insert favorite: %w", err)
	}
	if err := db.recomputeFavoritesCount(ctx, tx, eventID); err != nil {
		return err
	}

	err = tx.Commit()
	metrics.RecordDBQuery("insert", "favorites", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("commit add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks an event and refreshes the counter.
func (db *DB) RemoveFavorite(ctx context.Context, userID, eventID string) error {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove favorite: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	start := time.Now()
	_, err = tx.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND event_id = ?`,
		userID, eventID)
	if err != nil {
		metrics.RecordDBQuery("delete", "favorites", time.Since(start), err)
		return fmt.Errorf("delete favorite: %w", err)
	}
	if err := db.recomputeFavoritesCount(ctx, tx, eventID); err != nil {
		return err
	}

	err = tx.Commit()
	metrics.RecordDBQuery("delete", "favorites", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("commit remove favorite: %w", err)
	}
	return nil
}
