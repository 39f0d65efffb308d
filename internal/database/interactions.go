// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// InsertInteraction appends one behavioral signal to the log. The event must
// exist so profile builds always find the joined metadata.
func (db *DB) InsertInteraction(ctx context.Context, interaction recommend.Interaction) error {
	if interaction.UserID == "" || interaction.EventID == "" {
		return fmt.Errorf("user id and event id are required")
	}
	if !interaction.Type.Valid() {
		return fmt.Errorf("unknown interaction type %q", interaction.Type)
	}
	if _, err := db.GetEvent(ctx, interaction.EventID); err != nil {
		return err
	}

	createdAt := interaction.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, event_id, type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), interaction.UserID, interaction.EventID,
		string(interaction.Type), createdAt)
	metrics.RecordDBQuery("insert", "interactions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}
