// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"fmt"
	"strconv"
	"strings"
)

// dayPart labels for the temporal bonus. Hours 02:00-07:59 belong to none.
const (
	dayPartDay     = "day"
	dayPartEvening = "evening"
	dayPartNight   = "night"
)

// neutralCategoryScore is used when the profile records no category
// preference at all, so unknown-category events are neither rewarded
// nor punished.
const neutralCategoryScore = 0.5

// scoreEvent computes the weighted score and ordered explanations for one
// candidate against a fused profile. Pure in-memory, no I/O.
func (s *Service) scoreEvent(event Event, profile *MusicProfile) (float64, []string) {
	var genres, styles, types, ambiances []string
	for _, tag := range event.Tags {
		switch tag.Category {
		case CategoryGenre:
			genres = append(genres, tag.Value)
		case CategoryStyle:
			styles = append(styles, tag.Value)
		case CategoryType, CategoryCategory:
			types = append(types, tag.Value)
		case CategoryAmbiance:
			ambiances = append(ambiances, tag.Value)
		}
	}

	// Style matches surface as explanations only. The style signal reaches
	// ranking through the genre weights, which the taste builder feeds at
	// half weight.
	bestGenre, genreScore := bestMatch(genres, profile.Genres)
	bestStyle, _ := bestMatch(styles, profile.Styles)

	categoryScore := neutralCategoryScore
	if len(profile.Types) > 0 {
		_, categoryScore = bestMatch(types, profile.Types)
	}

	_, ambianceScore := bestMatch(ambiances, profile.Ambiances)

	score := genreScore*s.config.Weights.Genre +
		categoryScore*s.config.Weights.Category +
		ambianceScore*s.config.Weights.Ambiance +
		s.temporalBonus(event, profile) +
		s.popularityScore(event.FavoritesCount)*s.config.Weights.Popularity
	score = ClampWeight(score)

	var reasons []string
	if bestGenre != "" {
		if label := profile.SourceLabel(); label != "" {
			reasons = append(reasons, fmt.Sprintf("You like %s (%s)", bestGenre, label))
		} else {
			reasons = append(reasons, fmt.Sprintf("You like %s", bestGenre))
		}
	}
	if bestStyle != "" {
		reasons = append(reasons, fmt.Sprintf("Matches your taste for %s", bestStyle))
	}
	if favoriteGenreMatch(genres, profile.FavoriteGenres) {
		reasons = append(reasons, "Similar to your favorites")
	}
	if len(reasons) == 0 && score > s.config.GenericReasonThreshold {
		reasons = append(reasons, "This might interest you")
	}

	return score, reasons
}

// temporalBonus stacks the day-type and day-part affinity bonuses, capped.
func (s *Service) temporalBonus(event Event, profile *MusicProfile) float64 {
	local := event.StartAt.In(s.loc)

	var bonus float64
	if profile.PreferredDayType != "" {
		eventDayType := "weekday"
		if isWeekend(local) {
			eventDayType = "weekend"
		}
		if eventDayType == profile.PreferredDayType {
			bonus += s.config.Temporal.DayTypeBonus
		}
	}

	if part := dayPart(local.Hour()); part != "" && prefersDayPart(profile.TimeSlots, part) {
		switch part {
		case dayPartDay:
			bonus += s.config.Temporal.DayBonus
		case dayPartEvening:
			bonus += s.config.Temporal.EveningBonus
		case dayPartNight:
			bonus += s.config.Temporal.NightBonus
		}
	}

	if bonus > s.config.Temporal.BonusCap {
		bonus = s.config.Temporal.BonusCap
	}
	return bonus
}

// popularityScore saturates at the configured favorites count.
func (s *Service) popularityScore(favorites int) float64 {
	if favorites <= 0 {
		return 0
	}
	score := float64(favorites) / float64(s.config.Limits.PopularitySaturation)
	if score > 1 {
		return 1
	}
	return score
}

// bestMatch returns the strongest preferred value among the event's tags.
func bestMatch(values []string, prefs map[string]float64) (string, float64) {
	var best string
	var bestWeight float64
	for _, v := range values {
		if w, ok := prefs[v]; ok && w > bestWeight {
			best, bestWeight = v, w
		}
	}
	return best, bestWeight
}

func favoriteGenreMatch(eventGenres, favoriteGenres []string) bool {
	for _, g := range eventGenres {
		for _, fav := range favoriteGenres {
			if g == fav {
				return true
			}
		}
	}
	return false
}

// dayPart maps an hour to its coarse label. Night wraps past midnight.
func dayPart(hour int) string {
	switch {
	case hour >= 8 && hour <= 16:
		return dayPartDay
	case hour >= 17 && hour <= 21:
		return dayPartEvening
	case hour >= 22 || hour <= 1:
		return dayPartNight
	}
	return ""
}

// prefersDayPart reports whether any preferred hour slot falls in the part.
func prefersDayPart(slots map[string]float64, part string) bool {
	for slot := range slots {
		raw, _, ok := strings.Cut(slot, ":")
		if !ok {
			continue
		}
		hour, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if dayPart(hour) == part {
			return true
		}
	}
	return false
}
