// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Command api is the entry point for the Craftly HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start the maintenance sweeper.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/craftlyhq/craftly/internal/account"
	"github.com/craftlyhq/craftly/internal/api"
	"github.com/craftlyhq/craftly/internal/auth"
	"github.com/craftlyhq/craftly/internal/community"
	"github.com/craftlyhq/craftly/internal/component"
	"github.com/craftlyhq/craftly/internal/credits"
	"github.com/craftlyhq/craftly/internal/platform/config"
	"github.com/craftlyhq/craftly/internal/platform/constants"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
	"github.com/craftlyhq/craftly/internal/platform/migration"
	pgstore "github.com/craftlyhq/craftly/internal/platform/postgres"
	redisstore "github.com/craftlyhq/craftly/internal/platform/redis"
	"github.com/craftlyhq/craftly/internal/platform/sec"
	"github.com/craftlyhq/craftly/internal/sweep"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Craftly] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Codec & Metrics ──────────────────────────────────────────
	tokenCodec, err := sec.NewTokenCodec(cfg.TokenSecret, constants.AuthIssuer)
	must(log, err, "initialize token codec")

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, resetTokenRepository, tokenCodec)
	authHandler := auth.NewHandler(authService, cfg.IsProduction())
	gate := auth.NewGate(tokenCodec, sessionRepository)

	meter := credits.NewMeter(credits.NewCounterRepository(pool), credits.NewPlanResolver(pool), collector)
	creditsHandler := credits.NewHandler(meter)

	componentRepository := component.NewRepository(pool)
	componentService := component.NewService(componentRepository, meter, collector)
	componentHandler := component.NewHandler(componentService)

	communityService := community.NewService(
		community.NewFeedRepository(pool),
		community.NewLikeRepository(pool),
		community.NewCommentRepository(pool),
		componentRepository,
		collector,
	)
	communityHandler := community.NewHandler(communityService)

	accountService := account.NewService(account.NewProfileRepository(pool))
	accountHandler := account.NewHandler(accountService)

	// ── 9. Maintenance Sweeper ────────────────────────────────────────────
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	sweeper := sweep.New(sessionRepository, componentRepository, constants.SweepInterval, log)
	go sweeper.Run(sweepCtx)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Credits:   creditsHandler,
		Component: componentHandler,
		Community: communityHandler,
		Account:   accountHandler,
	}

	server := api.NewServer(sweepCtx, cfg, log, gate, collector, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop the sweeper before the server drains so no new deletes race the
	// final in-flight requests.
	sweepCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
