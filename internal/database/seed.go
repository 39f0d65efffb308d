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

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// Demo user IDs kept stable so developers can hit the API right after
// seeding.
const (
	SeedUserMelomane = "00000000-0000-0000-0000-0000000000a1"
	SeedUserNewcomer = "00000000-0000-0000-0000-0000000000a2"
)

// SeedMockData populates the store with a small Montreal-flavored data set
// for development and demos. Idempotent on event titles is not attempted;
// run against a fresh database.
func (db *DB) SeedMockData(ctx context.Context) error {
	now := time.Now().UTC()
	nextFriday := now.AddDate(0, 0, (5-int(now.Weekday())+7)%7+7)

	type seedEvent struct {
		title         string
		startAt       time.Time
		neighbourhood string
		tags          []recommend.EventTag
	}
	seeds := []seedEvent{
		{
			title:         "Piknic Electronik",
			startAt:       time.Date(nextFriday.Year(), nextFriday.Month(), nextFriday.Day(), 22, 0, 0, 0, time.UTC),
			neighbourhood: "Parc Jean-Drapeau",
			tags: []recommend.EventTag{
				{Category: recommend.CategoryGenre, Value: "techno"},
				{Category: recommend.CategoryType, Value: "festival"},
				{Category: recommend.CategoryAmbiance, Value: "outdoor"},
			},
		},
		{
			title:         "Jazz at Upstairs",
			startAt:       time.Date(nextFriday.Year(), nextFriday.Month(), nextFriday.Day(), 20, 0, 0, 0, time.UTC),
			neighbourhood: "Ville-Marie",
			tags: []recommend.EventTag{
				{Category: recommend.CategoryGenre, Value: "jazz"},
				{Category: recommend.CategoryType, Value: "concert"},
				{Category: recommend.CategoryAmbiance, Value: "intimate"},
			},
		},
		{
			title:         "Reggae Sunsplash MTL",
			startAt:       nextFriday.AddDate(0, 0, 1),
			neighbourhood: "Plateau",
			tags: []recommend.EventTag{
				{Category: recommend.CategoryGenre, Value: "reggae"},
				{Category: recommend.CategoryStyle, Value: "dub"},
				{Category: recommend.CategoryType, Value: "concert"},
			},
		},
		{
			title:         "Symphonie du Nouveau Monde",
			startAt:       nextFriday.AddDate(0, 0, 2),
			neighbourhood: "Quartier des Spectacles",
			tags: []recommend.EventTag{
				{Category: recommend.CategoryGenre, Value: "classical"},
				{Category: recommend.CategoryType, Value: "concert"},
				{Category: recommend.CategoryAmbiance, Value: "formal"},
			},
		},
		{
			title:         "Mile End Block Party",
			startAt:       nextFriday.AddDate(0, 0, 1),
			neighbourhood: "Mile End",
			tags: []recommend.EventTag{
				{Category: recommend.CategoryGenre, Value: "hip hop"},
				{Category: recommend.CategoryType, Value: "festival"},
				{Category: recommend.CategoryAmbiance, Value: "outdoor"},
			},
		},
	}

	eventIDs := make([]string, len(seeds))
	for i, seed := range seeds {
		id := uuid.NewString()
		eventIDs[i] = id
		if err := db.InsertEvent(ctx, recommend.Event{
			ID:            id,
			Title:         seed.title,
			Status:        recommend.StatusLive,
			StartAt:       seed.startAt,
			Neighbourhood: seed.neighbourhood,
			Tags:          seed.tags,
		}); err != nil {
			return fmt.Errorf("seed event %q: %w", seed.title, err)
		}
	}

	if err := db.UpsertInterestTags(ctx, SeedUserMelomane, []recommend.InterestTag{
		{UserID: SeedUserMelomane, Category: recommend.CategoryGenre, Value: "techno", Score: 0.9, Source: recommend.SourceSpotify},
		{UserID: SeedUserMelomane, Category: recommend.CategoryGenre, Value: "reggae", Score: 0.7, Source: recommend.SourceSpotify},
		{UserID: SeedUserMelomane, Category: recommend.CategoryAmbiance, Value: "outdoor", Score: 0.8, Source: recommend.SourceManual},
	}); err != nil {
		return fmt.Errorf("seed interest tags: %w", err)
	}

	interactions := []recommend.Interaction{
		{UserID: SeedUserMelomane, EventID: eventIDs[0], Type: recommend.InteractionFavorite},
		{UserID: SeedUserMelomane, EventID: eventIDs[2], Type: recommend.InteractionClick},
		{UserID: SeedUserMelomane, EventID: eventIDs[1], Type: recommend.InteractionView},
		{UserID: SeedUserNewcomer, EventID: eventIDs[4], Type: recommend.InteractionView},
	}
	for _, it := range interactions {
		if err := db.InsertInteraction(ctx, it); err != nil {
			return fmt.Errorf("seed interaction: %w", err)
		}
	}

	if err := db.AddFavorite(ctx, SeedUserMelomane, eventIDs[0]); err != nil {
		return fmt.Errorf("seed favorite: %w", err)
	}
	return nil
}
