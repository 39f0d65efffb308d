// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import (
	"context"
	"time"
)

// TagCategory classifies a tag attached to an event or a user interest.
type TagCategory string

const (
	CategoryGenre    TagCategory = "genre"
	CategoryStyle    TagCategory = "style"
	CategoryType     TagCategory = "type"
	CategoryAmbiance TagCategory = "ambiance"
	CategoryCategory TagCategory = "category"
)

// Valid reports whether c is one of the known tag categories.
func (c TagCategory) Valid() bool {
	switch c {
	case CategoryGenre, CategoryStyle, CategoryType, CategoryAmbiance, CategoryCategory:
		return true
	}
	return false
}

// TagSource identifies where an interest tag came from.
type TagSource string

const (
	SourceManual     TagSource = "manual"
	SourceSpotify    TagSource = "spotify"
	SourceAppleMusic TagSource = "apple_music"
)

// Valid reports whether s is one of the known tag sources.
func (s TagSource) Valid() bool {
	switch s {
	case SourceManual, SourceSpotify, SourceAppleMusic:
		return true
	}
	return false
}

// InteractionType is a behavioral signal recorded against an event.
type InteractionType string

const (
	InteractionView     InteractionType = "VIEW"
	InteractionClick    InteractionType = "CLICK"
	InteractionShare    InteractionType = "SHARE"
	InteractionFavorite InteractionType = "FAVORITE"
	InteractionDismiss  InteractionType = "DISMISS"
)

// BaseWeight returns the undecayed contribution of one interaction.
// DISMISS carries a negative weight and suppresses accumulated interest.
func (t InteractionType) BaseWeight() float64 {
	switch t {
	case InteractionFavorite:
		return 10
	case InteractionShare:
		return 5
	case InteractionClick:
		return 2
	case InteractionView:
		return 1
	case InteractionDismiss:
		return -5
	}
	return 0
}

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	return t.BaseWeight() != 0
}

// Scope selects the time window candidate events are drawn from.
type Scope string

const (
	ScopeToday   Scope = "today"
	ScopeWeekend Scope = "weekend"
	ScopeAll     Scope = "all"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeToday, ScopeWeekend, ScopeAll:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of an event. Only live events are
// ever recommended.
type EventStatus string

const (
	StatusLive      EventStatus = "live"
	StatusDraft     EventStatus = "draft"
	StatusCancelled EventStatus = "cancelled"
)

// EventTag is one categorized label on an event.
type EventTag struct {
	Category TagCategory `json:"category"`
	Value    string      `json:"value"`
}

// Event is a candidate for recommendation. Tags are pre-joined so the
// scoring loop never touches storage.
type Event struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Status         EventStatus `json:"status"`
	StartAt        time.Time   `json:"startAt"`
	Neighbourhood  string      `json:"neighbourhood,omitempty"`
	FavoritesCount int         `json:"favoritesCount"`
	Tags           []EventTag  `json:"tags,omitempty"`
}

// InterestTag is a user-declared or streaming-derived preference.
type InterestTag struct {
	UserID   string      `json:"userId"`
	Category TagCategory `json:"category"`
	Value    string      `json:"value"`
	Score    float64     `json:"score"`
	Source   TagSource   `json:"source"`
}

// Interaction is one behavioral event, joined to the tags and metadata
// of the event it targeted so profile building runs off a single bulk fetch.
type Interaction struct {
	UserID             string          `json:"userId"`
	EventID            string          `json:"eventId"`
	Type               InteractionType `json:"type"`
	CreatedAt          time.Time       `json:"createdAt"`
	EventTags          []EventTag      `json:"eventTags,omitempty"`
	EventNeighbourhood string          `json:"eventNeighbourhood,omitempty"`
	EventStartAt       time.Time       `json:"eventStartAt"`
}

// TasteProfile is the persisted snapshot of decayed behavioral interest.
// All weights are normalized to (0, 1] with the strongest entry at 1.0.
type TasteProfile struct {
	UserID                  string             `json:"userId"`
	PreferredTags           map[string]float64 `json:"preferredTags"`
	PreferredGenres         map[string]float64 `json:"preferredGenres"`
	PreferredTimeSlots      map[string]float64 `json:"preferredTimeSlots"`
	PreferredNeighbourhoods []string           `json:"preferredNeighbourhoods"`
	PreferredDayType        string             `json:"preferredDayType,omitempty"`
	LastComputedAt          time.Time          `json:"lastComputedAt"`
}

// Empty reports whether the snapshot carries no signal at all.
func (p *TasteProfile) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.PreferredTags) == 0 && len(p.PreferredGenres) == 0 &&
		len(p.PreferredTimeSlots) == 0 && len(p.PreferredNeighbourhoods) == 0
}

// MusicProfile is the fused preference vector the scorer consumes.
// Built per request from interest tags and favorites, then merged with
// the persisted taste snapshot.
type MusicProfile struct {
	UserID           string             `json:"userId"`
	Genres           map[string]float64 `json:"genres"`
	Styles           map[string]float64 `json:"styles"`
	Types            map[string]float64 `json:"types"`
	Ambiances        map[string]float64 `json:"ambiances"`
	TimeSlots        map[string]float64 `json:"timeSlots"`
	PreferredDayType string             `json:"preferredDayType,omitempty"`
	FavoriteEventIDs []string           `json:"favoriteEventIds,omitempty"`
	FavoriteGenres   []string           `json:"favoriteGenres,omitempty"`
	FavoriteStyles   []string           `json:"favoriteStyles,omitempty"`
	Sources          map[TagSource]bool `json:"sources,omitempty"`
}

// NewMusicProfile returns an empty profile with all maps allocated.
func NewMusicProfile(userID string) *MusicProfile {
	return &MusicProfile{
		UserID:    userID,
		Genres:    map[string]float64{},
		Styles:    map[string]float64{},
		Types:     map[string]float64{},
		Ambiances: map[string]float64{},
		TimeSlots: map[string]float64{},
		Sources:   map[TagSource]bool{},
	}
}

// Empty reports whether no preference signal was collected from any source.
func (p *MusicProfile) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.Genres) == 0 && len(p.Styles) == 0 && len(p.Types) == 0 &&
		len(p.Ambiances) == 0 && len(p.TimeSlots) == 0 && len(p.FavoriteEventIDs) == 0
}

// SourceLabel returns a human-readable label for the highest-priority
// contributing source, or "" when no source is recorded.
func (p *MusicProfile) SourceLabel() string {
	if p == nil {
		return ""
	}
	switch {
	case p.Sources[SourceSpotify]:
		return "Spotify"
	case p.Sources[SourceAppleMusic]:
		return "Apple Music"
	case p.Sources[SourceManual]:
		return "your tags"
	}
	return ""
}

// Recommendation pairs an event with its score and ordered explanations.
type Recommendation struct {
	Event   Event    `json:"event"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Options control a single recommendation request.
type Options struct {
	Limit int
	Genre string
	Style string
	Scope Scope

	// MinScore is the score floor below which candidates are dropped.
	// Nil selects the configured default; an explicit 0 disables the
	// floor entirely.
	MinScore *float64
}

// CandidateQuery is the bulk event fetch the service pushes down to storage.
type CandidateQuery struct {
	From  time.Time
	Until time.Time // zero means unbounded
	Genre string
	Style string
	Limit int
}

// DataProvider supplies the stored signal the recommendation pipeline reads
// and the snapshot it writes back. Implemented by the database layer.
type DataProvider interface {
	GetUserInteractions(ctx context.Context, userID string, since time.Time) ([]Interaction, error)
	GetInterestTags(ctx context.Context, userID string) ([]InterestTag, error)
	GetFavoriteEvents(ctx context.Context, userID string) ([]Event, error)
	GetCandidateEvents(ctx context.Context, q CandidateQuery) ([]Event, error)
	GetTasteProfile(ctx context.Context, userID string) (*TasteProfile, error)
	SaveTasteProfile(ctx context.Context, profile *TasteProfile) error
	GetActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

// Cache is the recommendation result cache the service depends on.
// Implemented by the cache package.
type Cache interface {
	Get(key string) ([]Recommendation, bool)
	Set(key string, recs []Recommendation)
	Delete(key string)
	Clear()
	Cleanup() int
}

// ClampWeight bounds a preference weight to [0, 1].
func ClampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
