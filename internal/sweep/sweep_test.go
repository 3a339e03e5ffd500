// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package sweep_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/craftlyhq/craftly/internal/sweep"
)

type countingReaper struct {
	calls atomic.Int64
	fail  bool
}

func (r *countingReaper) DeleteExpired(context.Context) (int64, error) {
	return r.reap()
}

func (r *countingReaper) PurgeExpired(context.Context) (int64, error) {
	return r.reap()
}

func (r *countingReaper) reap() (int64, error) {
	r.calls.Add(1)
	if r.fail {
		return 0, errors.New("storage down")
	}
	return 2, nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	sessions := &countingReaper{}
	components := &countingReaper{}
	sweeper := sweep.New(sessions, components, time.Hour, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	// The first pass runs before the first tick.
	assert.Eventually(t, func() bool {
		return sessions.calls.Load() == 1 && components.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeper_OneFailingReaperDoesNotBlockTheOther(t *testing.T) {
	sessions := &countingReaper{fail: true}
	components := &countingReaper{}
	sweeper := sweep.New(sessions, components, time.Hour, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	assert.Eventually(t, func() bool {
		return components.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}
