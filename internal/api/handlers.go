// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/cache"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/config"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/database"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// Recommender is the recommendation engine surface the handlers consume.
type Recommender interface {
	GetPersonalizedRecommendations(ctx context.Context, userID string, opts recommend.Options) ([]recommend.Recommendation, error)
	BuildTasteProfile(ctx context.Context, userID string) (*recommend.TasteProfile, error)
	RefreshTasteProfile(ctx context.Context, userID string) (*recommend.TasteProfile, error)
	ScopeWindow(scope recommend.Scope) (time.Time, time.Time)
}

// Store is the persistence surface the handlers consume. Implemented by the
// database package.
type Store interface {
	GetInterestTags(ctx context.Context, userID string) ([]recommend.InterestTag, error)
	UpsertInterestTags(ctx context.Context, userID string, tags []recommend.InterestTag) error
	DeleteInterestTags(ctx context.Context, userID string, source recommend.TagSource) error
	InsertInteraction(ctx context.Context, interaction recommend.Interaction) error
	AddFavorite(ctx context.Context, userID, eventID string) error
	RemoveFavorite(ctx context.Context, userID, eventID string) error
	GetCandidateEvents(ctx context.Context, q recommend.CandidateQuery) ([]recommend.Event, error)
	GetTasteProfile(ctx context.Context, userID string) (*recommend.TasteProfile, error)
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	recommender Recommender
	store       Store
	cache       *cache.Cache
	cfg         *config.Config
	logger      zerolog.Logger
}

// NewHandler creates the handler set.
func NewHandler(recommender Recommender, store Store, c *cache.Cache, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		recommender: recommender,
		store:       store,
		cache:       c,
		cfg:         cfg,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// Recommendations serves GET /api/v1/recommendations/user/{userID}.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")

	q, err := parseRecommendationQuery(r)
	if err != nil {
		rw.ValidationFailed("invalid query parameters", validationDetails(err))
		return
	}

	start := time.Now()
	recs, err := h.recommender.GetPersonalizedRecommendations(r.Context(), userID, q.Options())
	if err != nil {
		h.writeRecommendError(rw, r, err)
		return
	}
	scope := q.Scope
	if scope == "" {
		scope = string(recommend.ScopeAll)
	}
	metrics.RecordRecommendation(scope, time.Since(start))

	rw.SuccessWithMeta(recs, &APIMeta{Count: len(recs)})
}

// RecommendationsByGenre serves GET /api/v1/recommendations/genre/{genre}.
func (h *Handler) RecommendationsByGenre(w http.ResponseWriter, r *http.Request) {
	h.fixedFilterRecommendations(w, r, chi.URLParam(r, "genre"), "")
}

// RecommendationsByStyle serves GET /api/v1/recommendations/style/{style}.
func (h *Handler) RecommendationsByStyle(w http.ResponseWriter, r *http.Request) {
	h.fixedFilterRecommendations(w, r, "", chi.URLParam(r, "style"))
}

func (h *Handler) fixedFilterRecommendations(w http.ResponseWriter, r *http.Request, genre, style string) {
	rw := NewResponseWriter(w, r)
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		rw.BadRequest("user_id query parameter is required")
		return
	}
	q, err := parseRecommendationQuery(r)
	if err != nil {
		rw.ValidationFailed("invalid query parameters", validationDetails(err))
		return
	}
	opts := q.Options()
	opts.Genre = genre
	opts.Style = style

	start := time.Now()
	recs, err := h.recommender.GetPersonalizedRecommendations(r.Context(), userID, opts)
	if err != nil {
		h.writeRecommendError(rw, r, err)
		return
	}
	metrics.RecordRecommendation(string(opts.Scope), time.Since(start))
	rw.SuccessWithMeta(recs, &APIMeta{Count: len(recs)})
}

// GetTags serves GET /api/v1/users/{userID}/tags.
func (h *Handler) GetTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tags, err := h.store.GetInterestTags(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error().Err(err).Msg("get interest tags failed")
		rw.InternalError("could not load interest tags")
		return
	}
	if tags == nil {
		tags = []recommend.InterestTag{}
	}
	rw.SuccessWithMeta(tags, &APIMeta{Count: len(tags)})
}

// PutTags serves PUT /api/v1/users/{userID}/tags.
func (h *Handler) PutTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")

	var req InterestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		rw.ValidationFailed("invalid tags payload", validationDetails(err))
		return
	}

	tags := make([]recommend.InterestTag, 0, len(req.Tags))
	for _, p := range req.Tags {
		tags = append(tags, recommend.InterestTag{
			UserID:   userID,
			Category: recommend.TagCategory(p.Category),
			Value:    p.Value,
			Score:    p.Score,
			Source:   recommend.TagSource(p.Source),
		})
	}
	if err := h.store.UpsertInterestTags(r.Context(), userID, tags); err != nil {
		h.logger.Error().Err(err).Msg("upsert interest tags failed")
		rw.InternalError("could not store interest tags")
		return
	}
	rw.SuccessWithMeta(map[string]int{"stored": len(tags)}, nil)
}

// DeleteTags serves DELETE /api/v1/users/{userID}/tags[?source=].
func (h *Handler) DeleteTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	source := recommend.TagSource(r.URL.Query().Get("source"))
	if source != "" && !source.Valid() {
		rw.BadRequest("unknown tag source")
		return
	}
	if err := h.store.DeleteInterestTags(r.Context(), chi.URLParam(r, "userID"), source); err != nil {
		h.logger.Error().Err(err).Msg("delete interest tags failed")
		rw.InternalError("could not delete interest tags")
		return
	}
	rw.NoContent()
}

// PostInteraction serves POST /api/v1/interactions.
func (h *Handler) PostInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		rw.ValidationFailed("invalid interaction payload", validationDetails(err))
		return
	}

	err := h.store.InsertInteraction(r.Context(), recommend.Interaction{
		UserID:  req.UserID,
		EventID: req.EventID,
		Type:    recommend.InteractionType(req.Type),
	})
	if database.IsNotFound(err) {
		rw.NotFound("event not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("insert interaction failed")
		rw.InternalError("could not record interaction")
		return
	}
	rw.Created(map[string]string{"status": "recorded"})
}

// AddFavorite serves POST /api/v1/users/{userID}/favorites/{eventID}.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	err := h.store.AddFavorite(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "eventID"))
	if database.IsNotFound(err) {
		rw.NotFound("event not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("add favorite failed")
		rw.InternalError("could not add favorite")
		return
	}
	rw.Created(map[string]string{"status": "favorited"})
}

// RemoveFavorite serves DELETE /api/v1/users/{userID}/favorites/{eventID}.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.store.RemoveFavorite(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "eventID")); err != nil {
		h.logger.Error().Err(err).Msg("remove favorite failed")
		rw.InternalError("could not remove favorite")
		return
	}
	rw.NoContent()
}

// TasteProfile serves GET /api/v1/users/{userID}/profile/taste.
func (h *Handler) TasteProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile, err := h.store.GetTasteProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error().Err(err).Msg("get taste profile failed")
		rw.InternalError("could not load taste profile")
		return
	}
	if profile == nil {
		rw.NotFound("no taste profile computed yet")
		return
	}
	rw.Success(profile)
}

// RebuildTasteProfile serves POST /api/v1/users/{userID}/profile/taste/rebuild.
func (h *Handler) RebuildTasteProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile, err := h.recommender.RefreshTasteProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeRecommendError(rw, r, err)
		return
	}
	rw.Success(profile)
}

// Events serves GET /api/v1/events[?scope=&genre=&style=&limit=].
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q, err := parseRecommendationQuery(r)
	if err != nil {
		rw.ValidationFailed("invalid query parameters", validationDetails(err))
		return
	}
	scope := recommend.Scope(q.Scope)
	if scope == "" {
		scope = recommend.ScopeAll
	}
	limit := q.Limit
	if limit <= 0 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	from, until := h.recommender.ScopeWindow(scope)
	events, err := h.store.GetCandidateEvents(r.Context(), recommend.CandidateQuery{
		From:  from,
		Until: until,
		Genre: q.Genre,
		Style: q.Style,
		Limit: limit,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("list events failed")
		rw.InternalError("could not list events")
		return
	}
	if events == nil {
		events = []recommend.Event{}
	}
	rw.SuccessWithMeta(events, &APIMeta{Count: len(events)})
}

// TagVocabulary serves GET /api/v1/tags/vocabulary.
func (h *Handler) TagVocabulary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]any{
		"genres": h.cfg.Recommend.GenreVocabulary,
	})
}

// Health serves GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := map[string]any{
		"status": "ok",
	}
	if h.cache != nil {
		status["cache"] = h.cache.Stats()
	}
	if err := h.store.Ping(r.Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status})
		return
	}
	rw.Success(status)
}

// HealthLive serves GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady serves GET /api/v1/health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.store.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("database not ready")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// writeRecommendError maps engine errors onto response codes.
func (h *Handler) writeRecommendError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidOptions):
		rw.BadRequest(err.Error())
	case errors.Is(err, recommend.ErrUpstream):
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream fetch failed")
		rw.UpstreamFailed("could not load recommendation data")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("recommendation request failed")
		rw.InternalError("recommendation request failed")
	}
}
