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
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// GetInterestTags returns all of the user's interest tags across sources.
func (db *DB) GetInterestTags(ctx context.Context, userID string) ([]recommend.InterestTag, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, category, value, score, source
		FROM interest_tags
		WHERE user_id = ?
		ORDER BY category, value, source`, userID)
	metrics.RecordDBQuery("select", "interest_tags", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query interest tags: %w", err)
	}
	defer rows.Close()

	var tags []recommend.InterestTag
	for rows.Next() {
		var tag recommend.InterestTag
		var category, source string
		if err := rows.Scan(&tag.UserID, &category, &tag.Value, &tag.Score, &source); err != nil {
			return nil, fmt.Errorf("scan interest tag: %w", err)
		}
		tag.Category = recommend.TagCategory(category)
		tag.Source = recommend.TagSource(source)
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interest tags: %w", err)
	}
	return tags, nil
}

// UpsertInterestTags writes the given tags, replacing duplicates on
// (user, category, value, source).
func (db *DB) UpsertInterestTags(ctx context.Context, userID string, tags []recommend.InterestTag) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert interest tags: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	start := now
	for _, tag := range tags {
		if !tag.Category.Valid() {
			return fmt.Errorf("unknown tag category %q", tag.Category)
		}
		if !tag.Source.Valid() {
			return fmt.Errorf("unknown tag source %q", tag.Source)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO interest_tags
				(user_id, category, value, score, source, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, string(tag.Category), tag.Value,
			recommend.ClampWeight(tag.Score), string(tag.Source), now, now); err != nil {
			return fmt.Errorf("upsert interest tag %s/%s: %w", tag.Category, tag.Value, err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("upsert", "interest_tags", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("commit interest tags: %w", err)
	}
	return nil
}

// DeleteInterestTags removes the user's tags, limited to one source when
// source is non-empty.
func (db *DB) DeleteInterestTags(ctx context.Context, userID string, source recommend.TagSource) error {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	query := `DELETE FROM interest_tags WHERE user_id = ?`
	args := []any{userID}
	if source != "" {
		query += ` AND source = ?`
		args = append(args, string(source))
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery("delete", "interest_tags", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete interest tags: %w", err)
	}
	return nil
}
