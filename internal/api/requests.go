// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

var validate = validator.New()

// RecommendationQuery carries the query parameters of a recommendation
// request.
type RecommendationQuery struct {
	Limit    int     `validate:"omitempty,min=1,max=100"`
	Genre    string  `validate:"omitempty,max=100"`
	Style    string  `validate:"omitempty,max=100"`
	Scope    string  `validate:"omitempty,oneof=today weekend all"`
	MinScore *float64 `validate:"omitempty,min=0,max=1"`
}

// parseRecommendationQuery extracts and validates query parameters.
func parseRecommendationQuery(r *http.Request) (RecommendationQuery, error) {
	q := RecommendationQuery{
		Genre: r.URL.Query().Get("genre"),
		Style: r.URL.Query().Get("style"),
		Scope: r.URL.Query().Get("scope"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("limit must be an integer")
		}
		q.Limit = limit
	}
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("min_score must be a number")
		}
		q.MinScore = &minScore
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// Options converts the query into engine options.
func (q RecommendationQuery) Options() recommend.Options {
	return recommend.Options{
		Limit:    q.Limit,
		Genre:    q.Genre,
		Style:    q.Style,
		Scope:    recommend.Scope(q.Scope),
		MinScore: q.MinScore,
	}
}

// InteractionRequest is the POST /interactions payload.
type InteractionRequest struct {
	UserID  string `json:"userId" validate:"required,max=100"`
	EventID string `json:"eventId" validate:"required,max=100"`
	Type    string `json:"type" validate:"required,oneof=VIEW CLICK SHARE FAVORITE DISMISS"`
}

// InterestTagPayload is one tag in a PUT /users/{userID}/tags payload.
type InterestTagPayload struct {
	Category string  `json:"category" validate:"required,oneof=genre style type ambiance category"`
	Value    string  `json:"value" validate:"required,max=100"`
	Score    float64 `json:"score" validate:"min=0,max=1"`
	Source   string  `json:"source" validate:"required,oneof=manual spotify apple_music"`
}

// InterestTagsRequest is the PUT /users/{userID}/tags payload.
type InterestTagsRequest struct {
	Tags []InterestTagPayload `json:"tags" validate:"required,min=1,max=100,dive"`
}

// validationDetails flattens validator errors into field/rule pairs clients
// can act on.
func validationDetails(err error) any {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	details := make([]map[string]string, 0, len(errs))
	for _, fe := range errs {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
