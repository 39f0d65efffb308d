// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
)

// BuildTasteProfile derives a normalized taste snapshot from the user's
// interactions inside the configured window. A user with no interactions
// gets an empty profile, not an error.
func (s *Service) BuildTasteProfile(ctx context.Context, userID string) (*TasteProfile, error) {
	now := s.now()
	since := now.Add(-s.config.Taste.Window)

	interactions, err := s.provider.GetUserInteractions(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: get user interactions: %w", ErrUpstream, err)
	}

	profile := &TasteProfile{
		UserID:         userID,
		LastComputedAt: now,
	}
	if len(interactions) == 0 {
		profile.PreferredTags = map[string]float64{}
		profile.PreferredGenres = map[string]float64{}
		profile.PreferredTimeSlots = map[string]float64{}
		return profile, nil
	}

	tags := map[string]float64{}
	genres := map[string]float64{}
	slots := map[string]float64{}
	hoods := map[string]float64{}
	var weekend, weekday float64

	for _, it := range interactions {
		decay := recencyDecay(now.Sub(it.CreatedAt), s.config.Taste.HalfLife)
		contribution := it.Type.BaseWeight() * decay

		for _, tag := range it.EventTags {
			tags[tag.Value] += contribution
			switch tag.Category {
			case CategoryGenre:
				genres[tag.Value] += contribution
			case CategoryStyle:
				genres[tag.Value] += contribution * s.config.Taste.StyleFactor
			}
		}
		if it.EventNeighbourhood != "" {
			hoods[it.EventNeighbourhood] += contribution
		}
		if !it.EventStartAt.IsZero() {
			local := it.EventStartAt.In(s.loc)
			slots[timeSlot(local)] += contribution
			if isWeekend(local) {
				weekend += contribution
			} else {
				weekday += contribution
			}
		}
	}

	profile.PreferredTags = normalizeTop(tags, s.config.Taste.MaxTags)
	profile.PreferredGenres = normalizeTop(genres, s.config.Taste.MaxGenres)
	profile.PreferredTimeSlots = normalizeTop(slots, s.config.Taste.MaxTimeSlots)
	profile.PreferredNeighbourhoods = topKeys(hoods, s.config.Taste.MaxNeighbours)
	switch {
	case weekend > weekday && weekend > 0:
		profile.PreferredDayType = "weekend"
	case weekday > weekend && weekday > 0:
		profile.PreferredDayType = "weekday"
	}

	return profile, nil
}

// RefreshTasteProfile rebuilds the snapshot and persists it.
func (s *Service) RefreshTasteProfile(ctx context.Context, userID string) (*TasteProfile, error) {
	profile, err := s.BuildTasteProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.provider.SaveTasteProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save taste profile: %w", err)
	}
	metrics.ProfileRebuildsTotal.Inc()
	return profile, nil
}

// recencyDecay is the exponential half-life factor for an interaction of the
// given age. Age at exactly one half-life yields 0.5; future timestamps
// clamp to 1.
func recencyDecay(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, age.Hours()/halfLife.Hours())
}

// timeSlot buckets a local timestamp into its hour label, e.g. "21:00".
func timeSlot(t time.Time) string {
	return fmt.Sprintf("%d:00", t.Hour())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

type weightedKey struct {
	key    string
	weight float64
}

// sortedPositive drops non-positive totals and orders the rest by weight
// descending, key ascending for determinism.
func sortedPositive(totals map[string]float64) []weightedKey {
	entries := make([]weightedKey, 0, len(totals))
	for k, w := range totals {
		if w > 0 {
			entries = append(entries, weightedKey{key: k, weight: w})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

// normalizeTop keeps the max strongest positive entries and rescales them
// so the strongest retained weight is exactly 1.0.
func normalizeTop(totals map[string]float64, max int) map[string]float64 {
	entries := sortedPositive(totals)
	if len(entries) > max {
		entries = entries[:max]
	}
	out := make(map[string]float64, len(entries))
	if len(entries) == 0 {
		return out
	}
	top := entries[0].weight
	for _, e := range entries {
		out[e.key] = ClampWeight(e.weight / top)
	}
	return out
}

// topKeys keeps the max strongest positive keys in rank order.
func topKeys(totals map[string]float64, max int) []string {
	entries := sortedPositive(totals)
	if len(entries) > max {
		entries = entries[:max]
	}
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}
