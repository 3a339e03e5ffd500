// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package credits

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
)

// Meter implements the daily quota use cases.
//
// # Failure Semantics
//
// An exhausted quota is a recoverable client condition (402), never an
// internal error: the allotment reappears at the next UTC midnight.
type Meter struct {
	counterRepository CounterRepository
	planResolver      PlanResolver
	recorder          metrics.Recorder
}

// NewMeter constructs a new [Meter] with necessary dependencies.
func NewMeter(counterRepo CounterRepository, planResolver PlanResolver, recorder metrics.Recorder) *Meter {
	return &Meter{
		counterRepository: counterRepo,
		planResolver:      planResolver,
		recorder:          recorder,
	}
}

/*
Spend deducts the cost of an action from the caller's daily balance.

Description: Materializes today's counter at the plan allotment if absent,
then performs one atomic conditional deduction. On an insufficient balance the
counter is left untouched and the current remainder is reported to the client.

Parameters:
  - context: context.Context
  - userID: string
  - action: Action

Returns:
  - err: apperr.QuotaExceeded (402) or storage failures
*/
func (meter *Meter) Spend(context context.Context, userID string, action Action) error {

	// Resolve the plan that sizes today's allotment
	plan, err := meter.planResolver.PlanOf(context, userID)
	if err != nil {
		return fmt.Errorf("credits_meter_plan_lookup_failed: %w", err)
	}

	day := DayKey(time.Now())

	// First spend of the day creates the counter at the full allotment.
	// ON CONFLICT DO NOTHING semantics make this safe under concurrency.
	if err := meter.counterRepository.EnsureDay(context, userID, day, plan.DailyCreditLimit()); err != nil {
		return fmt.Errorf("credits_meter_ensure_day_failed: %w", err)
	}

	// Single atomic conditional deduction; no read-modify-write.
	applied, err := meter.counterRepository.Deduct(context, userID, day, action.Cost())
	if err != nil {
		return fmt.Errorf("credits_meter_deduct_failed: %w", err)
	}

	if !applied {
		remaining := 0
		if counter, err := meter.counterRepository.Find(context, userID, day); err == nil {
			remaining = counter.Remaining
		}
		meter.recorder.RecordQuotaRejection()
		return apperr.QuotaExceeded(remaining)
	}

	meter.recorder.RecordCreditsDeducted(string(action), action.Cost())
	return nil
}

/*
Balance reports the caller's current quota state.

Description: Read path of the meter. The counter is materialized on demand so
a user who has spent nothing today still sees the full allotment rather than
a missing row.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Balance: Remaining credits, allotment, and the next reset instant
  - err: Storage failures
*/
func (meter *Meter) Balance(context context.Context, userID string) (*Balance, error) {
	plan, err := meter.planResolver.PlanOf(context, userID)
	if err != nil {
		return nil, fmt.Errorf("credits_meter_plan_lookup_failed: %w", err)
	}

	now := time.Now()
	day := DayKey(now)

	if err := meter.counterRepository.EnsureDay(context, userID, day, plan.DailyCreditLimit()); err != nil {
		return nil, fmt.Errorf("credits_meter_ensure_day_failed: %w", err)
	}

	counter, err := meter.counterRepository.Find(context, userID, day)
	if err != nil {
		return nil, fmt.Errorf("credits_meter_find_failed: %w", err)
	}

	return &Balance{
		Remaining: counter.Remaining,
		Allotment: counter.Allotment,
		Day:       day,
		ResetsAt:  NextReset(now),
	}, nil
}
