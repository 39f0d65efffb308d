// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMusicProfile(t *testing.T) {
	t.Run("empty sources yield empty profile", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile, err := svc.BuildMusicProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, profile.Empty())
	})

	t.Run("duplicate values merge by max, never average", func(t *testing.T) {
		provider := &mockProvider{interestTags: []InterestTag{
			{Category: CategoryGenre, Value: "techno", Score: 0.9, Source: SourceSpotify},
			{Category: CategoryGenre, Value: "techno", Score: 0.3, Source: SourceManual},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildMusicProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 0.9, profile.Genres["techno"])
		assert.True(t, profile.Sources[SourceSpotify])
		assert.True(t, profile.Sources[SourceManual])
	})

	t.Run("out of range scores are clamped", func(t *testing.T) {
		provider := &mockProvider{interestTags: []InterestTag{
			{Category: CategoryGenre, Value: "house", Score: 2.5, Source: SourceManual},
			{Category: CategoryAmbiance, Value: "chill", Score: -0.5, Source: SourceManual},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildMusicProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1.0, profile.Genres["house"])
		assert.Equal(t, 0.0, profile.Ambiances["chill"])
	})

	t.Run("favorites boost matching weights capped at one", func(t *testing.T) {
		provider := &mockProvider{
			interestTags: []InterestTag{
				{Category: CategoryGenre, Value: "reggae", Score: 0.95, Source: SourceSpotify},
			},
			favorites: []Event{
				{
					ID:      "ev-1",
					StartAt: testNow.Add(24 * time.Hour),
					Tags: []EventTag{
						{Category: CategoryGenre, Value: "reggae"},
						{Category: CategoryStyle, Value: "dub"},
					},
				},
			},
		}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildMusicProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1.0, profile.Genres["reggae"], "0.95 + 0.1 boost must cap at 1.0")
		assert.InDelta(t, 0.1, profile.Styles["dub"], 1e-9)
		assert.Equal(t, []string{"ev-1"}, profile.FavoriteEventIDs)
		assert.Equal(t, []string{"reggae"}, profile.FavoriteGenres)
		assert.Equal(t, []string{"dub"}, profile.FavoriteStyles)
	})

	t.Run("type and category tags share one bucket", func(t *testing.T) {
		provider := &mockProvider{interestTags: []InterestTag{
			{Category: CategoryType, Value: "concert", Score: 0.8, Source: SourceManual},
			{Category: CategoryCategory, Value: "music", Score: 0.6, Source: SourceManual},
		}}
		svc := newTestService(t, provider, nil)

		profile, err := svc.BuildMusicProfile(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 0.8, profile.Types["concert"])
		assert.Equal(t, 0.6, profile.Types["music"])
	})
}

func TestFuseSnapshot(t *testing.T) {
	t.Run("nil snapshot is a no-op", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile := NewMusicProfile("user-1")
		svc.fuseSnapshot(profile, nil)
		assert.True(t, profile.Empty())
	})

	t.Run("snapshot genres merge by max", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile := NewMusicProfile("user-1")
		profile.Genres["techno"] = 0.4

		svc.fuseSnapshot(profile, &TasteProfile{
			PreferredGenres: map[string]float64{"techno": 0.8, "jazz": 0.6},
		})
		assert.Equal(t, 0.8, profile.Genres["techno"])
		assert.Equal(t, 0.6, profile.Genres["jazz"])
	})

	t.Run("snapshot never lowers an existing weight", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile := NewMusicProfile("user-1")
		profile.Genres["techno"] = 0.9

		svc.fuseSnapshot(profile, &TasteProfile{
			PreferredGenres: map[string]float64{"techno": 0.2},
		})
		assert.Equal(t, 0.9, profile.Genres["techno"])
	})

	t.Run("loose tags classify against the genre vocabulary", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile := NewMusicProfile("user-1")

		svc.fuseSnapshot(profile, &TasteProfile{
			PreferredTags: map[string]float64{
				"Hip Hop":     0.7, // vocabulary match, case-insensitive
				"candlelight": 0.5, // no match, lands in styles
			},
		})
		assert.Equal(t, 0.7, profile.Genres["Hip Hop"])
		assert.Equal(t, 0.5, profile.Styles["candlelight"])
		assert.NotContains(t, profile.Genres, "candlelight")
	})

	t.Run("already classified tags stay in their bucket", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile := NewMusicProfile("user-1")
		profile.Styles["acoustic rock"] = 0.3

		svc.fuseSnapshot(profile, &TasteProfile{
			PreferredTags: map[string]float64{"acoustic rock": 0.9},
		})
		assert.Equal(t, 0.9, profile.Styles["acoustic rock"])
		assert.NotContains(t, profile.Genres, "acoustic rock")
	})

	t.Run("time slots and day type carry over", func(t *testing.T) {
		svc := newTestService(t, &mockProvider{}, nil)
		profile := NewMusicProfile("user-1")

		svc.fuseSnapshot(profile, &TasteProfile{
			PreferredTimeSlots: map[string]float64{"21:00": 1.0},
			PreferredDayType:   "weekend",
		})
		assert.Equal(t, 1.0, profile.TimeSlots["21:00"])
		assert.Equal(t, "weekend", profile.PreferredDayType)
	})
}

func TestSourceLabel(t *testing.T) {
	cases := []struct {
		name    string
		sources map[TagSource]bool
		want    string
	}{
		{"spotify wins", map[TagSource]bool{SourceSpotify: true, SourceManual: true}, "Spotify"},
		{"apple music next", map[TagSource]bool{SourceAppleMusic: true, SourceManual: true}, "Apple Music"},
		{"manual last", map[TagSource]bool{SourceManual: true}, "your tags"},
		{"none", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &MusicProfile{Sources: tc.sources}
			assert.Equal(t, tc.want, p.SourceLabel())
		})
	}
}
