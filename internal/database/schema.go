// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and indexes.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		// Events are owned by the wider platform; this subsystem reads them
		// and maintains favorites_count.
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'live',
			start_at TIMESTAMP NOT NULL,
			neighbourhood TEXT,
			favorites_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS event_tags (
			event_id TEXT NOT NULL,
			category TEXT NOT NULL,
			value TEXT NOT NULL,
			UNIQUE (event_id, category, value)
		)`,

		// Append-only behavioral log.
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			type TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS interest_tags (
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			value TEXT NOT NULL,
			score DOUBLE NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, category, value, source)
		)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			user_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, event_id)
		)`,

		// One snapshot per user, replaced wholesale on rebuild.
		`CREATE TABLE IF NOT EXISTS taste_profiles (
			user_id TEXT PRIMARY KEY,
			profile JSON NOT NULL,
			computed_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_start ON events (status, start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_event_tags_event ON event_tags (event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_event_tags_value ON event_tags (category, value)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_interest_tags_user ON interest_tags (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites (user_id)`,
	}
}
