// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
)

// Service orchestrates profile building, candidate scoring, fallback and
// caching for recommendation requests.
type Service struct {
	provider DataProvider
	cache    Cache
	config   Config
	logger   zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewService builds a Service. The provider is required; cache may be nil
// to disable result caching.
func NewService(provider DataProvider, cache Cache, config Config, logger zerolog.Logger) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", config.Timezone, err)
	}
	return &Service{
		provider: provider,
		cache:    cache,
		config:   config,
		logger:   logger.With().Str("component", "recommend").Logger(),
		loc:      loc,
		now:      time.Now,
	}, nil
}

// GetPersonalizedRecommendations returns scored, explained, ranked events
// for a user. Results are cached per (user, filters, scope).
func (s *Service) GetPersonalizedRecommendations(ctx context.Context, userID string, opts Options) ([]Recommendation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidOptions)
	}
	opts, err := s.normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	key := CacheKey(userID, opts)
	if s.cache != nil {
		if recs, ok := s.cache.Get(key); ok {
			return recs, nil
		}
	}

	profile, err := s.BuildMusicProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.provider.GetTasteProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get taste profile: %w", ErrUpstream, err)
	}
	s.fuseSnapshot(profile, snapshot)

	now := s.now()
	from, until := s.scopeWindow(opts.Scope, now)
	query := CandidateQuery{From: from, Until: until, Genre: opts.Genre, Style: opts.Style}
	candidates, err := s.provider.GetCandidateEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: get candidate events: %w", ErrUpstream, err)
	}

	var recs []Recommendation
	if profile.Empty() {
		recs = s.popularFallback(candidates, opts.Limit)
	} else {
		recs = s.rank(candidates, profile, opts)
		if len(recs) == 0 {
			recs = s.popularFallback(candidates, opts.Limit)
		}
	}

	if s.cache != nil {
		s.cache.Set(key, recs)
	}
	s.logger.Debug().
		Str("user_id", userID).
		Str("scope", string(opts.Scope)).
		Int("candidates", len(candidates)).
		Int("results", len(recs)).
		Msg("recommendations computed")
	return recs, nil
}

// GetRecommendationsByGenre is a fixed-genre convenience wrapper.
func (s *Service) GetRecommendationsByGenre(ctx context.Context, userID, genre string, limit int) ([]Recommendation, error) {
	return s.GetPersonalizedRecommendations(ctx, userID, Options{Limit: limit, Genre: genre})
}

// GetRecommendationsByStyle is a fixed-style convenience wrapper.
func (s *Service) GetRecommendationsByStyle(ctx context.Context, userID, style string, limit int) ([]Recommendation, error) {
	return s.GetPersonalizedRecommendations(ctx, userID, Options{Limit: limit, Style: style})
}

// rank scores every candidate, drops those below the score floor and orders
// the survivors score descending. The candidate query returns events in
// start-time order, so the stable sort keeps equal scores chronological.
func (s *Service) rank(candidates []Event, profile *MusicProfile, opts Options) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for _, event := range candidates {
		score, reasons := s.scoreEvent(event, profile)
		if score < *opts.MinScore {
			continue
		}
		recs = append(recs, Recommendation{Event: event, Score: score, Reasons: reasons})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs
}

// popularFallback serves popularity-ranked events from the same candidate
// pool when personalization produces nothing. Empty only when the pool is.
func (s *Service) popularFallback(candidates []Event, limit int) []Recommendation {
	candidates = append([]Event(nil), candidates...)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].FavoritesCount != candidates[j].FavoritesCount {
			return candidates[i].FavoritesCount > candidates[j].FavoritesCount
		}
		return candidates[i].StartAt.Before(candidates[j].StartAt)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	recs := make([]Recommendation, 0, len(candidates))
	for _, event := range candidates {
		recs = append(recs, Recommendation{
			Event:   event,
			Score:   s.config.Limits.FallbackScore,
			Reasons: []string{"Popular event"},
		})
	}
	metrics.FallbackTotal.Inc()
	return recs
}

// normalizeOptions applies defaults and bounds.
func (s *Service) normalizeOptions(opts Options) (Options, error) {
	if opts.Limit <= 0 {
		opts.Limit = s.config.Limits.DefaultLimit
	}
	if opts.Limit > s.config.Limits.MaxLimit {
		opts.Limit = s.config.Limits.MaxLimit
	}
	if opts.Scope == "" {
		opts.Scope = ScopeAll
	}
	if !opts.Scope.Valid() {
		return opts, fmt.Errorf("%w: unknown scope %q", ErrInvalidOptions, opts.Scope)
	}
	if opts.MinScore == nil {
		floor := s.config.Limits.MinScore
		opts.MinScore = &floor
	} else if *opts.MinScore < 0 || *opts.MinScore > 1 {
		return opts, fmt.Errorf("%w: min score %f out of range", ErrInvalidOptions, *opts.MinScore)
	}
	return opts, nil
}

// CacheKey derives the cache key for a normalized request.
func CacheKey(userID string, opts Options) string {
	var b strings.Builder
	b.WriteString("rec:")
	b.WriteString(userID)
	if opts.Genre != "" {
		b.WriteString(":g:")
		b.WriteString(opts.Genre)
	}
	if opts.Style != "" {
		b.WriteString(":s:")
		b.WriteString(opts.Style)
	}
	if opts.Scope != "" && opts.Scope != ScopeAll {
		b.WriteString(":scope:")
		b.WriteString(string(opts.Scope))
	}
	return b.String()
}
