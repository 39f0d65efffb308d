// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"fmt"
	"strings"
)

// BuildMusicProfile fuses the user's interest tags and favorited events into
// a preference vector. Duplicate values merge by max so no source is ever
// diluted by a weaker one.
func (s *Service) BuildMusicProfile(ctx context.Context, userID string) (*MusicProfile, error) {
	tags, err := s.provider.GetInterestTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get interest tags: %w", ErrUpstream, err)
	}
	favorites, err := s.provider.GetFavoriteEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get favorite events: %w", ErrUpstream, err)
	}

	profile := NewMusicProfile(userID)

	for _, tag := range tags {
		weight := ClampWeight(tag.Score)
		switch tag.Category {
		case CategoryGenre:
			mergeMax(profile.Genres, tag.Value, weight)
		case CategoryStyle:
			mergeMax(profile.Styles, tag.Value, weight)
		case CategoryType, CategoryCategory:
			mergeMax(profile.Types, tag.Value, weight)
		case CategoryAmbiance:
			mergeMax(profile.Ambiances, tag.Value, weight)
		}
		if tag.Source.Valid() {
			profile.Sources[tag.Source] = true
		}
	}

	boost := s.config.Music.FavoriteBoost
	for _, event := range favorites {
		profile.FavoriteEventIDs = append(profile.FavoriteEventIDs, event.ID)
		for _, tag := range event.Tags {
			switch tag.Category {
			case CategoryGenre:
				profile.Genres[tag.Value] = ClampWeight(profile.Genres[tag.Value] + boost)
				profile.FavoriteGenres = appendUnique(profile.FavoriteGenres, tag.Value)
			case CategoryStyle:
				profile.Styles[tag.Value] = ClampWeight(profile.Styles[tag.Value] + boost)
				profile.FavoriteStyles = appendUnique(profile.FavoriteStyles, tag.Value)
			case CategoryType, CategoryCategory:
				profile.Types[tag.Value] = ClampWeight(profile.Types[tag.Value] + boost)
			case CategoryAmbiance:
				profile.Ambiances[tag.Value] = ClampWeight(profile.Ambiances[tag.Value] + boost)
			}
		}
	}

	return profile, nil
}

// fuseSnapshot folds the persisted taste snapshot into the request-time
// music profile. Snapshot genres merge directly; loose snapshot tags are
// classified against the genre vocabulary before merging.
func (s *Service) fuseSnapshot(profile *MusicProfile, snapshot *TasteProfile) {
	if snapshot == nil {
		return
	}
	for genre, weight := range snapshot.PreferredGenres {
		mergeMax(profile.Genres, genre, ClampWeight(weight))
	}
	for value, weight := range snapshot.PreferredTags {
		w := ClampWeight(weight)
		switch {
		case hasKey(profile.Genres, value):
			mergeMax(profile.Genres, value, w)
		case hasKey(profile.Styles, value):
			mergeMax(profile.Styles, value, w)
		case s.isGenre(value):
			mergeMax(profile.Genres, value, w)
		default:
			mergeMax(profile.Styles, value, w)
		}
	}
	for slot, weight := range snapshot.PreferredTimeSlots {
		mergeMax(profile.TimeSlots, slot, ClampWeight(weight))
	}
	if profile.PreferredDayType == "" {
		profile.PreferredDayType = snapshot.PreferredDayType
	}
}

// isGenre reports whether the value matches the configured genre vocabulary.
func (s *Service) isGenre(value string) bool {
	v := strings.ToLower(value)
	for _, entry := range s.config.GenreVocabulary {
		if strings.Contains(v, entry) {
			return true
		}
	}
	return false
}

func mergeMax(dst map[string]float64, key string, weight float64) {
	if weight > dst[key] {
		dst[key] = weight
	}
}

func hasKey(m map[string]float64, key string) bool {
	_, ok := m[key]
	return ok
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
