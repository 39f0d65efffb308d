// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// ProfileRefresher recomputes and persists one user's taste profile.
// Satisfied by *recommend.Service.
type ProfileRefresher interface {
	RefreshTasteProfile(ctx context.Context, userID string) (*recommend.TasteProfile, error)
}

// ActiveUserSource lists users with interactions since a point in time.
// Satisfied by *database.DB.
type ActiveUserSource interface {
	GetActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

// ProfileRefreshServiceConfig holds configuration for the refresh loop.
type ProfileRefreshServiceConfig struct {
	// RefreshOnStartup triggers a full sweep when the service starts.
	RefreshOnStartup bool

	// Interval is how often to recompute profiles. Default: 6h
	Interval time.Duration

	// Window bounds which users count as active, matching the taste
	// profile's interaction window. Default: 30 days
	Window time.Duration
}

// ProfileRefreshService periodically rebuilds taste profile snapshots for
// every recently active user, so cold reads and batch consumers see
// profiles no staler than one interval.
type ProfileRefreshService struct {
	refresher ProfileRefresher
	users     ActiveUserSource
	config    ProfileRefreshServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewProfileRefreshService creates a new profile refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileRefreshService(refresher ProfileRefresher, users ActiveUserSource, cfg ProfileRefreshServiceConfig, logger zerolog.Logger) *ProfileRefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.Window <= 0 {
		cfg.Window = 30 * 24 * time.Hour
	}
	return &ProfileRefreshService{
		refresher: refresher,
		users:     users,
		config:    cfg,
		logger:    logger.With().Str("service", "profile-refresh").Logger(),
		name:      "profile-refresh",
	}
}

// Serve implements suture.Service. It runs the refresh loop until the
// context is canceled.
func (s *ProfileRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("refresh_on_startup", s.config.RefreshOnStartup).
		Dur("interval", s.config.Interval).
		Msg("profile refresh service starting")

	if s.config.RefreshOnStartup {
		if err := s.refreshAll(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup refresh failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("profile refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.refreshAll(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// refreshAll rebuilds the snapshot of every active user. A failure on one
// user is logged and does not block the rest of the sweep.
func (s *ProfileRefreshService) refreshAll(ctx context.Context) error {
	start := time.Now()
	since := start.Add(-s.config.Window)

	userIDs, err := s.users.GetActiveUserIDs(ctx, since)
	if err != nil {
		return err
	}

	var failed int
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.refresher.RefreshTasteProfile(ctx, userID); err != nil {
			failed++
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("profile refresh failed")
		}
	}

	s.logger.Info().
		Int("users", len(userIDs)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("profile refresh sweep complete")

	return nil
}

// String returns the service name for logging.
func (s *ProfileRefreshService) String() string {
	return s.name
}
