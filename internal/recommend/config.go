// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"fmt"
	"time"
)

// Weights are the scoring component coefficients. They sum to 1.0 together
// with the temporal bonus cap.
type Weights struct {
	Genre      float64 `koanf:"genre"`
	Category   float64 `koanf:"category"`
	Ambiance   float64 `koanf:"ambiance"`
	Popularity float64 `koanf:"popularity"`
}

// Temporal configures the stacking time-affinity bonuses.
type Temporal struct {
	BonusCap     float64 `koanf:"bonus_cap"`
	DayTypeBonus float64 `koanf:"day_type_bonus"`
	DayBonus     float64 `koanf:"day_bonus"`
	EveningBonus float64 `koanf:"evening_bonus"`
	NightBonus   float64 `koanf:"night_bonus"`
}

// Taste configures the behavioral profile builder.
type Taste struct {
	Window        time.Duration `koanf:"window"`
	HalfLife      time.Duration `koanf:"half_life"`
	MaxTags       int           `koanf:"max_tags"`
	MaxGenres     int           `koanf:"max_genres"`
	MaxTimeSlots  int           `koanf:"max_time_slots"`
	MaxNeighbours int           `koanf:"max_neighbourhoods"`
	StyleFactor   float64       `koanf:"style_factor"`
}

// Music configures interest-tag and favorites fusion.
type Music struct {
	FavoriteBoost float64 `koanf:"favorite_boost"`
}

// Limits bound request shaping.
type Limits struct {
	DefaultLimit         int     `koanf:"default_limit"`
	MaxLimit             int     `koanf:"max_limit"`
	MinScore             float64 `koanf:"min_score"`
	FallbackScore        float64 `koanf:"fallback_score"`
	PopularitySaturation int     `koanf:"popularity_saturation"`
}

// Config is the recommendation engine configuration.
type Config struct {
	Weights  Weights  `koanf:"weights"`
	Temporal Temporal `koanf:"temporal"`
	Taste    Taste    `koanf:"taste"`
	Music    Music    `koanf:"music"`
	Limits   Limits   `koanf:"limits"`

	// GenreVocabulary classifies snapshot tags during fusion. A tag whose
	// value contains any entry as a substring counts as a genre; everything
	// else falls back to style.
	GenreVocabulary []string `koanf:"genre_vocabulary"`

	// Timezone resolves scope windows to local civil time.
	Timezone string `koanf:"timezone"`

	// GenericReasonThreshold adds the generic explanation above this score.
	GenericReasonThreshold float64 `koanf:"generic_reason_threshold"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Genre:      0.30,
			Category:   0.30,
			Ambiance:   0.20,
			Popularity: 0.10,
		},
		Temporal: Temporal{
			BonusCap:     0.10,
			DayTypeBonus: 0.05,
			DayBonus:     0.033,
			EveningBonus: 0.033,
			NightBonus:   0.034,
		},
		Taste: Taste{
			Window:        30 * 24 * time.Hour,
			HalfLife:      30 * 24 * time.Hour,
			MaxTags:       20,
			MaxGenres:     10,
			MaxTimeSlots:  8,
			MaxNeighbours: 5,
			StyleFactor:   0.5,
		},
		Music: Music{
			FavoriteBoost: 0.1,
		},
		Limits: Limits{
			DefaultLimit:         20,
			MaxLimit:             100,
			MinScore:             0.1,
			FallbackScore:        0.5,
			PopularitySaturation: 10,
		},
		GenreVocabulary: []string{
			"rock", "pop", "jazz", "blues", "metal", "punk", "folk",
			"country", "reggae", "ska", "soul", "funk", "disco",
			"techno", "house", "trance", "electro", "ambient", "drum and bass",
			"hip hop", "hip-hop", "rap", "r&b", "rnb",
			"classical", "opera", "latin", "salsa", "afrobeat", "world",
			"indie", "alternative", "experimental",
		},
		Timezone:               "America/Montreal",
		GenericReasonThreshold: 0.3,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"weights.genre", c.Weights.Genre},
		{"weights.category", c.Weights.Category},
		{"weights.ambiance", c.Weights.Ambiance},
		{"weights.popularity", c.Weights.Popularity},
		{"temporal.bonus_cap", c.Temporal.BonusCap},
	} {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %f", w.name, w.value)
		}
	}
	if c.Taste.Window <= 0 {
		return fmt.Errorf("taste.window must be positive, got %s", c.Taste.Window)
	}
	if c.Taste.HalfLife <= 0 {
		return fmt.Errorf("taste.half_life must be positive, got %s", c.Taste.HalfLife)
	}
	if c.Taste.MaxTags <= 0 || c.Taste.MaxGenres <= 0 || c.Taste.MaxTimeSlots <= 0 || c.Taste.MaxNeighbours <= 0 {
		return fmt.Errorf("taste retention caps must be positive")
	}
	if c.Taste.StyleFactor < 0 || c.Taste.StyleFactor > 1 {
		return fmt.Errorf("taste.style_factor must be in [0,1], got %f", c.Taste.StyleFactor)
	}
	if c.Music.FavoriteBoost < 0 || c.Music.FavoriteBoost > 1 {
		return fmt.Errorf("music.favorite_boost must be in [0,1], got %f", c.Music.FavoriteBoost)
	}
	if c.Limits.DefaultLimit <= 0 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit %d below default_limit %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.MinScore < 0 || c.Limits.MinScore > 1 {
		return fmt.Errorf("limits.min_score must be in [0,1], got %f", c.Limits.MinScore)
	}
	if c.Limits.FallbackScore < 0 || c.Limits.FallbackScore > 1 {
		return fmt.Errorf("limits.fallback_score must be in [0,1], got %f", c.Limits.FallbackScore)
	}
	if c.Limits.PopularitySaturation <= 0 {
		return fmt.Errorf("limits.popularity_saturation must be positive, got %d", c.Limits.PopularitySaturation)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() Config {
	clone := *c
	clone.GenreVocabulary = append([]string(nil), c.GenreVocabulary...)
	return clone
}
