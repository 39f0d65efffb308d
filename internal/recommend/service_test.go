// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	interactions    []Interaction
	interactionsErr error
	interestTags    []InterestTag
	interestTagsErr error
	favorites       []Event
	favoritesErr    error
	candidates      []Event
	candidatesErr   error
	snapshot        *TasteProfile
	snapshotErr     error
	saved           *TasteProfile
	activeUsers     []string
	lastQuery       CandidateQuery
	candidateCalls  int
}

func (m *mockProvider) GetUserInteractions(_ context.Context, _ string, _ time.Time) ([]Interaction, error) {
	return m.interactions, m.interactionsErr
}

func (m *mockProvider) GetInterestTags(_ context.Context, _ string) ([]InterestTag, error) {
	return m.interestTags, m.interestTagsErr
}

func (m *mockProvider) GetFavoriteEvents(_ context.Context, _ string) ([]Event, error) {
	return m.favorites, m.favoritesErr
}

func (m *mockProvider) GetCandidateEvents(_ context.Context, q CandidateQuery) ([]Event, error) {
	m.lastQuery = q
	m.candidateCalls++
	return m.candidates, m.candidatesErr
}

func (m *mockProvider) GetTasteProfile(_ context.Context, _ string) (*TasteProfile, error) {
	return m.snapshot, m.snapshotErr
}

func (m *mockProvider) SaveTasteProfile(_ context.Context, profile *TasteProfile) error {
	m.saved = profile
	return nil
}

func (m *mockProvider) GetActiveUserIDs(_ context.Context, _ time.Time) ([]string, error) {
	return m.activeUsers, nil
}

type mockCache struct {
	entries map[string][]Recommendation
	gets    int
	hits    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]Recommendation{}}
}

func (c *mockCache) Get(key string) ([]Recommendation, bool) {
	c.gets++
	recs, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return recs, ok
}

func (c *mockCache) Set(key string, recs []Recommendation) { c.entries[key] = recs }
func (c *mockCache) Delete(key string)                     { delete(c.entries, key) }
func (c *mockCache) Clear()                                { c.entries = map[string][]Recommendation{} }
func (c *mockCache) Cleanup() int                          { return 0 }

var testNow = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC) // a Wednesday

func floatPtr(f float64) *float64 { return &f }

func newTestService(t *testing.T, provider *mockProvider, cache Cache) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Timezone = "UTC"
	svc, err := NewService(provider, cache, cfg, zerolog.Nop())
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }
	return svc
}

func futureEvent(id, title string, startAt time.Time, favorites int, tags ...EventTag) Event {
	return Event{
		ID:             id,
		Title:          title,
		Status:         StatusLive,
		StartAt:        startAt,
		FavoritesCount: favorites,
		Tags:           tags,
	}
}

func TestNewService(t *testing.T) {
	t.Run("requires provider", func(t *testing.T) {
		_, err := NewService(nil, nil, DefaultConfig(), zerolog.Nop())
		require.Error(t, err)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Limits.DefaultLimit = 0
		_, err := NewService(&mockProvider{}, nil, cfg, zerolog.Nop())
		require.Error(t, err)
	})

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})
}

func TestGetPersonalizedRecommendations_RankingOrder(t *testing.T) {
	reggaeNight := futureEvent("ev-reggae", "Reggae Night", testNow.Add(26*time.Hour), 3,
		EventTag{Category: CategoryGenre, Value: "reggae"})
	technoRave := futureEvent("ev-techno", "Techno Rave", testNow.Add(27*time.Hour), 3,
		EventTag{Category: CategoryGenre, Value: "techno"})

	provider := &mockProvider{
		interestTags: []InterestTag{
			{Category: CategoryGenre, Value: "reggae", Score: 0.9, Source: SourceSpotify},
			{Category: CategoryGenre, Value: "techno", Score: 0.2, Source: SourceManual},
		},
		candidates: []Event{technoRave, reggaeNight},
	}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "ev-reggae", recs[0].Event.ID)
	assert.Equal(t, "ev-techno", recs[1].Event.ID)
	assert.Greater(t, recs[0].Score, recs[1].Score)
	require.NotEmpty(t, recs[0].Reasons)
	assert.Equal(t, "You like reggae (Spotify)", recs[0].Reasons[0])
}

func TestGetPersonalizedRecommendations_ColdStartFallback(t *testing.T) {
	popular := futureEvent("ev-popular", "Big Festival", testNow.Add(48*time.Hour), 40)
	niche := futureEvent("ev-niche", "Small Show", testNow.Add(24*time.Hour), 2)

	provider := &mockProvider{candidates: []Event{niche, popular}}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-cold", Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "ev-popular", recs[0].Event.ID)
	assert.Equal(t, 0.5, recs[0].Score)
	assert.Equal(t, []string{"Popular event"}, recs[0].Reasons)
}

func TestGetPersonalizedRecommendations_FallbackTiesByStartTime(t *testing.T) {
	later := futureEvent("ev-later", "Later", testNow.Add(72*time.Hour), 5)
	sooner := futureEvent("ev-sooner", "Sooner", testNow.Add(24*time.Hour), 5)

	provider := &mockProvider{candidates: []Event{later, sooner}}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-cold", Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "ev-sooner", recs[0].Event.ID)
}

func TestGetPersonalizedRecommendations_MinScoreFallback(t *testing.T) {
	weak := futureEvent("ev-weak", "Unrelated", testNow.Add(24*time.Hour), 0,
		EventTag{Category: CategoryGenre, Value: "opera"})

	provider := &mockProvider{
		interestTags: []InterestTag{
			{Category: CategoryGenre, Value: "techno", Score: 1.0, Source: SourceManual},
		},
		candidates: []Event{weak},
	}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{MinScore: floatPtr(0.9)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"Popular event"}, recs[0].Reasons)
}

func TestGetPersonalizedRecommendations_ZeroMinScoreDisablesFloor(t *testing.T) {
	weak := futureEvent("ev-weak", "Unrelated", testNow.Add(24*time.Hour), 0,
		EventTag{Category: CategoryGenre, Value: "opera"})

	provider := &mockProvider{
		interestTags: []InterestTag{
			{Category: CategoryGenre, Value: "techno", Score: 1.0, Source: SourceManual},
		},
		candidates: []Event{weak},
	}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{MinScore: floatPtr(0)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEqual(t, []string{"Popular event"}, recs[0].Reasons)
	assert.Less(t, recs[0].Score, 0.5)
}

func TestGetPersonalizedRecommendations_EmptyPool(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGetPersonalizedRecommendations_LimitTruncation(t *testing.T) {
	var events []Event
	for i := 0; i < 30; i++ {
		events = append(events, futureEvent(
			"ev-"+string(rune('a'+i)), "Show", testNow.Add(time.Duration(i+1)*time.Hour), i,
			EventTag{Category: CategoryGenre, Value: "jazz"}))
	}
	provider := &mockProvider{
		interestTags: []InterestTag{{Category: CategoryGenre, Value: "jazz", Score: 1.0, Source: SourceManual}},
		candidates:   events,
	}
	svc := newTestService(t, provider, nil)

	recs, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestGetPersonalizedRecommendations_UpstreamErrors(t *testing.T) {
	boom := errors.New("db down")
	cases := []struct {
		name     string
		provider *mockProvider
	}{
		{"interest tags", &mockProvider{interestTagsErr: boom}},
		{"favorites", &mockProvider{favoritesErr: boom}},
		{"snapshot", &mockProvider{snapshotErr: boom}},
		{"candidates", &mockProvider{candidatesErr: boom}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, tc.provider, nil)
			_, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUpstream)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestGetPersonalizedRecommendations_OptionValidation(t *testing.T) {
	svc := newTestService(t, &mockProvider{}, nil)

	_, err := svc.GetPersonalizedRecommendations(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = svc.GetPersonalizedRecommendations(context.Background(), "u", Options{Scope: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = svc.GetPersonalizedRecommendations(context.Background(), "u", Options{MinScore: floatPtr(1.5)})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestGetPersonalizedRecommendations_CacheRoundTrip(t *testing.T) {
	event := futureEvent("ev-1", "Show", testNow.Add(24*time.Hour), 10,
		EventTag{Category: CategoryGenre, Value: "jazz"})
	provider := &mockProvider{
		interestTags: []InterestTag{{Category: CategoryGenre, Value: "jazz", Score: 1.0, Source: SourceManual}},
		candidates:   []Event{event},
	}
	cache := newMockCache()
	svc := newTestService(t, provider, cache)

	first, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, provider.candidateCalls)

	second, err := svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.candidateCalls, "second request must be served from cache")
	assert.Equal(t, 1, cache.hits)

	// A different filter is a different cache entry.
	_, err = svc.GetPersonalizedRecommendations(context.Background(), "user-1", Options{Genre: "jazz"})
	require.NoError(t, err)
	assert.Equal(t, 2, provider.candidateCalls)
}

func TestGetRecommendationsByGenreAndStyle(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(t, provider, nil)

	_, err := svc.GetRecommendationsByGenre(context.Background(), "user-1", "techno", 10)
	require.NoError(t, err)
	assert.Equal(t, "techno", provider.lastQuery.Genre)

	_, err = svc.GetRecommendationsByStyle(context.Background(), "user-1", "acoustic", 10)
	require.NoError(t, err)
	assert.Equal(t, "acoustic", provider.lastQuery.Style)
}

func TestCacheKey(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"plain", Options{}, "rec:user-1"},
		{"genre", Options{Genre: "techno"}, "rec:user-1:g:techno"},
		{"style", Options{Style: "acoustic"}, "rec:user-1:s:acoustic"},
		{"scope", Options{Scope: ScopeWeekend}, "rec:user-1:scope:weekend"},
		{"combined", Options{Genre: "techno", Scope: ScopeToday}, "rec:user-1:g:techno:scope:today"},
		{"default scope omitted", Options{Scope: ScopeAll}, "rec:user-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CacheKey("user-1", tc.opts))
		})
	}
}

func TestClampWeight(t *testing.T) {
	assert.Equal(t, 0.0, ClampWeight(-0.3))
	assert.Equal(t, 1.0, ClampWeight(1.7))
	assert.Equal(t, 0.42, ClampWeight(0.42))
}
