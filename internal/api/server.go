// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/craftlyhq/craftly/internal/account"
	"github.com/craftlyhq/craftly/internal/auth"
	"github.com/craftlyhq/craftly/internal/community"
	"github.com/craftlyhq/craftly/internal/component"
	"github.com/craftlyhq/craftly/internal/credits"
	"github.com/craftlyhq/craftly/internal/platform/config"
	"github.com/craftlyhq/craftly/internal/platform/constants"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
	"github.com/craftlyhq/craftly/internal/platform/middleware"
	"github.com/craftlyhq/craftly/internal/platform/respond"
	"github.com/craftlyhq/craftly/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login, sessions, and password resets.
	Auth *auth.Handler

	// Credits exposes the caller's daily credit balance.
	Credits *credits.Handler

	// Component handles the owner-facing studio: create, edit, publish, deploy.
	Component *component.Handler

	// Community handles the public feed, likes, and comments.
	Community *community.Handler

	// Account handles public profiles and owner settings.
	Account *account.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, gate middleware.Authorizer, collector *metrics.Collector, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(gate))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration, plus the
	// Prometheus scrape endpoint.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(prometheus.DefaultGatherer))

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/plans", plans)
		api.With(collector.Instrument("auth")).Mount("/auth", h.Auth.Routes())
		api.With(collector.Instrument("credits")).Mount("/credits", h.Credits.Routes())
		api.With(collector.Instrument("components")).Mount("/components", h.Component.Routes())
		api.With(collector.Instrument("community")).Mount("/community", h.Community.Routes())
		api.With(collector.Instrument("profiles")).Mount("/profiles", h.Account.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// plans handles GET /api/v1/plans: the public pricing sheet, derived from
// the same tables the meter charges against.
func plans(writer http.ResponseWriter, request *http.Request) {
	type planInfo struct {
		ID           string `json:"id"`
		DailyCredits int    `json:"daily_credits"`
	}
	type actionInfo struct {
		ID   string `json:"id"`
		Cost int    `json:"cost"`
	}

	respond.OK(writer, map[string]any{
		"plans": []planInfo{
			{ID: string(sec.PlanBetaFree), DailyCredits: sec.PlanBetaFree.DailyCreditLimit()},
			{ID: string(sec.PlanPro), DailyCredits: sec.PlanPro.DailyCreditLimit()},
		},
		"actions": []actionInfo{
			{ID: string(credits.ActionGenerate), Cost: credits.ActionGenerate.Cost()},
			{ID: string(credits.ActionDeploy), Cost: credits.ActionDeploy.Cost()},
			{ID: string(credits.ActionResearch), Cost: credits.ActionResearch.Cost()},
		},
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
