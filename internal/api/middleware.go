// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/config"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/logging"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
)

// RequestIDHeader is echoed back to clients for tracing.
const RequestIDHeader = "X-Request-ID"

// Middleware bundles the configurable middleware factories.
type Middleware struct {
	cfg config.APIConfig
}

// NewMiddleware creates the middleware set from API configuration.
func NewMiddleware(cfg config.APIConfig) *Middleware {
	return &Middleware{cfg: cfg}
}

// RequestID assigns each request an ID, honoring one supplied by the client.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		ctx := logging.ContextWithRequestID(r.Context(), id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Metrics records request counts and latency per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		metrics.RecordAPIRequest(r.Method, pattern, http.StatusText(recorder.status), time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// CORS builds the CORS handler from configured origins.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   m.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimit is the standard per-IP limiter for data endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return passthrough
	}
	return httprate.LimitByIP(m.cfg.RateLimitReqs, m.cfg.RateLimitWindow)
}

// RateLimitHealth is a permissive limiter for monitoring endpoints.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return passthrough
	}
	return httprate.LimitByIP(1000, time.Minute)
}

func passthrough(next http.Handler) http.Handler {
	return next
}
