// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the chi routing tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates the router from handlers and middleware.
func NewRouter(handler *Handler, middleware *Middleware) *Router {
	return &Router{handler: handler, middleware: middleware}
}

// Setup builds the full routing tree with the global middleware stack.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(Metrics)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/user/{userID}", router.handler.Recommendations)
			r.Get("/genre/{genre}", router.handler.RecommendationsByGenre)
			r.Get("/style/{style}", router.handler.RecommendationsByStyle)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/tags", router.handler.GetTags)
			r.Put("/tags", router.handler.PutTags)
			r.Delete("/tags", router.handler.DeleteTags)
			r.Post("/favorites/{eventID}", router.handler.AddFavorite)
			r.Delete("/favorites/{eventID}", router.handler.RemoveFavorite)
			r.Get("/profile/taste", router.handler.TasteProfile)
			r.Post("/profile/taste/rebuild", router.handler.RebuildTasteProfile)
		})

		r.Post("/interactions", router.handler.PostInteraction)
		r.Get("/events", router.handler.Events)
		r.Get("/tags/vocabulary", router.handler.TagVocabulary)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
