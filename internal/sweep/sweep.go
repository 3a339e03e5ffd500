// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Package sweep runs the background maintenance loop: it removes expired
// sessions and purges private components whose retention window lapsed.
//
// # Lifecycle
//
// One sweeper goroutine runs for the life of the process. It wakes on a
// fixed interval, runs both reapers, logs what it removed, and goes back to
// sleep. Cancelling the context stops the loop; the in-flight pass finishes
// first.
package sweep

import (
	"context"
	"log/slog"
	"time"
)

// SessionReaper deletes sessions whose expiry has passed.
type SessionReaper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// ComponentReaper deletes private components whose retention lapsed,
// together with their social rows.
type ComponentReaper interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper owns the maintenance loop.
type Sweeper struct {
	sessions   SessionReaper
	components ComponentReaper
	interval   time.Duration
	logger     *slog.Logger
}

// New builds a sweeper. It does not start the loop; call [Sweeper.Run].
func New(sessions SessionReaper, components ComponentReaper, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		sessions:   sessions,
		components: components,
		interval:   interval,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. The first
// pass runs immediately so a restart never leaves lapsed rows waiting a
// full interval.
func (sweeper *Sweeper) Run(ctx context.Context) {
	sweeper.sweep(ctx)

	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sweeper.logger.Info("sweeper_stopped")
			return
		case <-ticker.C:
			sweeper.sweep(ctx)
		}
	}
}

// sweep runs both reapers. Each failure is logged and skipped; a broken
// reaper must not stall the other one.
func (sweeper *Sweeper) sweep(ctx context.Context) {
	startedAt := time.Now()

	expiredSessions, err := sweeper.sessions.DeleteExpired(ctx)
	if err != nil {
		sweeper.logger.Error("sweep_sessions_failed", slog.Any("error", err))
	}

	purgedComponents, err := sweeper.components.PurgeExpired(ctx)
	if err != nil {
		sweeper.logger.Error("sweep_components_failed", slog.Any("error", err))
	}

	if expiredSessions > 0 || purgedComponents > 0 {
		sweeper.logger.Info("sweep_completed",
			slog.Int64("expired_sessions", expiredSessions),
			slog.Int64("purged_components", purgedComponents),
			slog.Duration("took", time.Since(startedAt)),
		)
	}
}
