// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecencyDecay(t *testing.T) {
	halfLife := 30 * 24 * time.Hour

	t.Run("half life halves the weight", func(t *testing.T) {
		assert.InDelta(t, 0.5, recencyDecay(halfLife, halfLife), 1e-9)
	})

	t.Run("fresh interaction keeps full weight", func(t *testing.T) {
		assert.Equal(t, 1.0, recencyDecay(0, halfLife))
		assert.Equal(t, 1.0, recencyDecay(-time.Hour, halfLife))
	})

	t.Run("monotonically decreasing", func(t *testing.T) {
		prev := recencyDecay(0, halfLife)
		for days := 1; days <= 120; days += 7 {
			cur := recencyDecay(time.Duration(days)*24*time.Hour, halfLife)
			assert.Less(t, cur, prev, "day %d", days)
			prev = cur
		}
	})
}

func TestNormalizeTop(t *testing.T) {
	t.Run("max retained weight is one", func(t *testing.T) {
		out := normalizeTop(map[string]float64{"a": 8, "b": 4, "c": 2}, 10)
		assert.Equal(t, 1.0, out["a"])
		assert.InDelta(t, 0.5, out["b"], 1e-9)
		assert.InDelta(t, 0.25, out["c"], 1e-9)
	})

	t.Run("cap keeps the strongest", func(t *testing.T) {
		totals := map[string]float64{}
		for i := 0; i < 30; i++ {
			totals[fmt.Sprintf("tag-%02d", i)] = float64(i + 1)
		}
		out := normalizeTop(totals, 20)
		assert.Len(t, out, 20)
		assert.Equal(t, 1.0, out["tag-29"])
		assert.NotContains(t, out, "tag-00")
	})

	t.Run("drops non-positive totals", func(t *testing.T) {
		out := normalizeTop(map[string]float64{"liked": 3, "dismissed": -2, "neutral": 0}, 10)
		assert.Len(t, out, 1)
		assert.Equal(t, 1.0, out["liked"])
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		assert.Empty(t, normalizeTop(map[string]float64{}, 10))
	})
}

func TestBuildTasteProfile(t *testing.T) {
	evening := time.Date(2026, 5, 16, 21, 0, 0, 0, time.UTC) // Saturday 21:00

	t.Run("no interactions yields empty profile", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile, err := svc.BuildTasteProfile(context.Background(), "user-1")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.True(t, profile.Empty())
		assert.Equal(t, testNow, profile.LastComputedAt)
	})

	t.Run("accumulates and normalizes", func(t *testing.T) {
		provider := &mockProvider{interactions: []Interaction{
			{
				Type:      InteractionFavorite,
				CreatedAt: testNow.Add(-time.Hour),
				EventTags: []EventTag{
					{Category: CategoryGenre, Value: "techno"},
					{Category: CategoryAmbiance, Value: "underground"},
				},
				EventNeighbourhood: "Mile End",
				EventStartAt:       evening,
			},
			{
				Type:               InteractionView,
				CreatedAt:          testNow.Add(-2 * time.Hour),
				EventTags:          []EventTag{{Category: CategoryGenre, Value: "jazz"}},
				EventNeighbourhood: "Plateau",
				EventStartAt:       evening.Add(24 * time.Hour),
			},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildTasteProfile(context.Background(), "user-1")
		require.NoError(t, err)

		assert.Equal(t, 1.0, profile.PreferredGenres["techno"])
		assert.Greater(t, profile.PreferredGenres["techno"], profile.PreferredGenres["jazz"])
		assert.Equal(t, 1.0, profile.PreferredTags["techno"])
		assert.Contains(t, profile.PreferredTags, "underground")
		assert.Equal(t, []string{"Mile End", "Plateau"}, profile.PreferredNeighbourhoods)
		assert.Equal(t, 1.0, profile.PreferredTimeSlots["21:00"])
		assert.Equal(t, "weekend", profile.PreferredDayType)
	})

	t.Run("style tags count at half weight", func(t *testing.T) {
		provider := &mockProvider{interactions: []Interaction{
			{
				Type:      InteractionClick,
				CreatedAt: testNow.Add(-time.Hour),
				EventTags: []EventTag{
					{Category: CategoryGenre, Value: "rock"},
					{Category: CategoryStyle, Value: "garage"},
				},
				EventStartAt: evening,
			},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildTasteProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1.0, profile.PreferredGenres["rock"])
		assert.InDelta(t, 0.5, profile.PreferredGenres["garage"], 1e-9)
	})

	t.Run("dismiss suppresses the genre", func(t *testing.T) {
		provider := &mockProvider{interactions: []Interaction{
			{
				Type:         InteractionView,
				CreatedAt:    testNow.Add(-time.Hour),
				EventTags:    []EventTag{{Category: CategoryGenre, Value: "opera"}},
				EventStartAt: evening,
			},
			{
				Type:         InteractionDismiss,
				CreatedAt:    testNow.Add(-time.Hour),
				EventTags:    []EventTag{{Category: CategoryGenre, Value: "opera"}},
				EventStartAt: evening,
			},
			{
				Type:         InteractionClick,
				CreatedAt:    testNow.Add(-time.Hour),
				EventTags:    []EventTag{{Category: CategoryGenre, Value: "funk"}},
				EventStartAt: evening,
			},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildTasteProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.NotContains(t, profile.PreferredGenres, "opera")
		assert.Equal(t, 1.0, profile.PreferredGenres["funk"])
	})

	t.Run("older interactions weigh less than fresh ones", func(t *testing.T) {
		provider := &mockProvider{interactions: []Interaction{
			{
				Type:         InteractionClick,
				CreatedAt:    testNow.Add(-29 * 24 * time.Hour),
				EventTags:    []EventTag{{Category: CategoryGenre, Value: "stale"}},
				EventStartAt: evening,
			},
			{
				Type:         InteractionClick,
				CreatedAt:    testNow.Add(-time.Hour),
				EventTags:    []EventTag{{Category: CategoryGenre, Value: "fresh"}},
				EventStartAt: evening,
			},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildTasteProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1.0, profile.PreferredGenres["fresh"])
		assert.Less(t, profile.PreferredGenres["stale"], 1.0)
	})
}

func TestRefreshTasteProfile(t *testing.T) {
	provider := &mockProvider{interactions: []Interaction{
		{
			Type:         InteractionFavorite,
			CreatedAt:    testNow.Add(-time.Hour),
			EventTags:    []EventTag{{Category: CategoryGenre, Value: "house"}},
			EventStartAt: testNow.Add(24 * time.Hour),
		},
	}}
	svc := newTestService(t, provider, nil)

	profile, err := svc.RefreshTasteProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, provider.saved)
	assert.Equal(t, profile, provider.saved)
	assert.Equal(t, 1.0, provider.saved.PreferredGenres["house"])
}
