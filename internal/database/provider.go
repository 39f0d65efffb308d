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

	json "github.com/goccy/go-json"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

var _ recommend.DataProvider = (*DB)(nil)

// GetUserInteractions returns the user's interactions since the given time,
// each joined to the tags and metadata of its event. One bulk query serves
// the whole taste profile build.
func (db *DB) GetUserInteractions(ctx context.Context, userID string, since time.Time) ([]recommend.Interaction, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.id, i.user_id, i.event_id, i.type, i.created_at,
		       e.neighbourhood, e.start_at, t.category, t.value
		FROM interactions i
		JOIN events e ON e.id = i.event_id
		LEFT JOIN event_tags t ON t.event_id = i.event_id
		WHERE i.user_id = ? AND i.created_at >= ?
		ORDER BY i.created_at, i.id`,
		userID, since)
	metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query user interactions: %w", err)
	}
	defer rows.Close()

	var out []recommend.Interaction
	index := map[string]int{}
	for rows.Next() {
		var (
			id, uid, eventID, typ  string
			createdAt, eventStart  time.Time
			neighbourhood          sql.NullString
			tagCategory, tagValue  sql.NullString
		)
		if err := rows.Scan(&id, &uid, &eventID, &typ, &createdAt,
			&neighbourhood, &eventStart, &tagCategory, &tagValue); err != nil {
			return nil, fmt.Errorf("scan interaction row: %w", err)
		}
		pos, ok := index[id]
		if !ok {
			out = append(out, recommend.Interaction{
				UserID:             uid,
				EventID:            eventID,
				Type:               recommend.InteractionType(typ),
				CreatedAt:          createdAt,
				EventNeighbourhood: neighbourhood.String,
				EventStartAt:       eventStart,
			})
			pos = len(out) - 1
			index[id] = pos
		}
		if tagCategory.Valid && tagValue.Valid {
			out[pos].EventTags = append(out[pos].EventTags, recommend.EventTag{
				Category: recommend.TagCategory(tagCategory.String),
				Value:    tagValue.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction rows: %w", err)
	}
	return out, nil
}

// GetFavoriteEvents returns the user's favorited events with tags.
func (db *DB) GetFavoriteEvents(ctx context.Context, userID string) ([]recommend.Event, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT e.id, e.title, e.status, e.start_at, e.neighbourhood, e.favorites_count,
		       t.category, t.value
		FROM favorites f
		JOIN events e ON e.id = f.event_id
		LEFT JOIN event_tags t ON t.event_id = e.id
		WHERE f.user_id = ?
		ORDER BY f.created_at, e.id`,
		userID)
	metrics.RecordDBQuery("select", "favorites", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query favorite events: %w", err)
	}
	defer rows.Close()
	return scanEventRows(rows)
}

// GetCandidateEvents returns live events inside the window, ordered by start
// time. Genre and style filters are pushed into the query.
func (db *DB) GetCandidateEvents(ctx context.Context, q recommend.CandidateQuery) ([]recommend.Event, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	query := `
		SELECT e.id, e.title, e.status, e.start_at, e.neighbourhood, e.favorites_count,
		       t.category, t.value
		FROM events e
		LEFT JOIN event_tags t ON t.event_id = e.id
		WHERE e.status = 'live' AND e.start_at >= ?`
	args := []any{q.From}
	if !q.Until.IsZero() {
		query += ` AND e.start_at < ?`
		args = append(args, q.Until)
	}
	if q.Genre != "" {
		query += ` AND EXISTS (SELECT 1 FROM event_tags g
			WHERE g.event_id = e.id AND g.category = 'genre' AND g.value = ?)`
		args = append(args, q.Genre)
	}
	if q.Style != "" {
		query += ` AND EXISTS (SELECT 1 FROM event_tags s
			WHERE s.event_id = e.id AND s.category = 'style' AND s.value = ?)`
		args = append(args, q.Style)
	}
	query += ` ORDER BY e.start_at, e.id`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query candidate events: %w", err)
	}
	defer rows.Close()

	events, err := scanEventRows(rows)
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(events) > q.Limit {
		events = events[:q.Limit]
	}
	return events, nil
}

// GetTasteProfile returns the stored snapshot, or (nil, nil) when the user
// has never had one computed.
func (db *DB) GetTasteProfile(ctx context.Context, userID string) (*recommend.TasteProfile, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	var raw string
	err := db.conn.QueryRowContext(ctx,
		`SELECT profile FROM taste_profiles WHERE user_id = ?`, userID).Scan(&raw)
	metrics.RecordDBQuery("select", "taste_profiles", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query taste profile: %w", err)
	}

	profile := &recommend.TasteProfile{}
	if err := json.Unmarshal([]byte(raw), profile); err != nil {
		return nil, fmt.Errorf("decode taste profile: %w", err)
	}
	return profile, nil
}

// SaveTasteProfile replaces the user's snapshot. Last write wins.
func (db *DB) SaveTasteProfile(ctx context.Context, profile *recommend.TasteProfile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("taste profile with user id is required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode taste profile: %w", err)
	}

	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO taste_profiles (user_id, profile, computed_at)
		VALUES (?, ?, ?)`,
		profile.UserID, string(raw), profile.LastComputedAt)
	metrics.RecordDBQuery("upsert", "taste_profiles", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert taste profile: %w", err)
	}
	return nil
}

// GetActiveUserIDs returns users with at least one interaction since the
// given time. Drives the background profile refresh.
func (db *DB) GetActiveUserIDs(ctx context.Context, since time.Time) ([]string, error) {
	ctx, cancel := queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM interactions
		WHERE created_at >= ? ORDER BY user_id`, since)
	metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return users, nil
}

// scanEventRows folds (event, tag) joined rows into ordered events.
func scanEventRows(rows *sql.Rows) ([]recommend.Event, error) {
	var out []recommend.Event
	index := map[string]int{}
	for rows.Next() {
		var (
			id, title, status     string
			startAt               time.Time
			neighbourhood         sql.NullString
			favoritesCount        int
			tagCategory, tagValue sql.NullString
		)
		if err := rows.Scan(&id, &title, &status, &startAt, &neighbourhood,
			&favoritesCount, &tagCategory, &tagValue); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		pos, ok := index[id]
		if !ok {
			out = append(out, recommend.Event{
				ID:             id,
				Title:          title,
				Status:         recommend.EventStatus(status),
				StartAt:        startAt,
				Neighbourhood:  neighbourhood.String,
				FavoritesCount: favoritesCount,
			})
			pos = len(out) - 1
			index[id] = pos
		}
		if tagCategory.Valid && tagValue.Valid {
			out[pos].Tags = append(out[pos].Tags, recommend.EventTag{
				Category: recommend.TagCategory(tagCategory.String),
				Value:    tagValue.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return out, nil
}
