// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package credits

import (
	"context"

	"github.com/craftlyhq/craftly/internal/platform/sec"
)

// # Counter Data Access

// CounterRepository defines the data access contract for daily usage counters.
//
// # Concurrency Contract
//
// Deduct must be atomic at the storage level: two concurrent deductions of the
// same counter may both succeed only if the balance covers both. The service
// layer performs no read-modify-write.
type CounterRepository interface {

	/*
		EnsureDay materializes the counter row for (userID, day) at the full
		allotment if it does not exist yet. Existing rows are left untouched.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - day: string (UTC date key)
		  - allotment: int

		Returns:
		  - error: Persistence failures
	*/
	EnsureDay(context context.Context, userID, day string, allotment int) error

	/*
		Deduct conditionally subtracts amount from the counter's remaining
		balance. The subtraction only happens when remaining >= amount.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - day: string (UTC date key)
		  - amount: int

		Returns:
		  - bool: Whether the deduction was applied
		  - error: Persistence failures
	*/
	Deduct(context context.Context, userID, day string, amount int) (bool, error)

	/*
		Find returns the counter for (userID, day).

		Parameters:
		  - context: context.Context
		  - userID: string
		  - day: string (UTC date key)

		Returns:
		  - *Counter: Hydrated counter
		  - error: Not found or retrieval failures
	*/
	Find(context context.Context, userID, day string) (*Counter, error)
}

// # Plan Resolution

// PlanResolver resolves the subscription plan that sizes a user's daily allotment.
type PlanResolver interface {

	/*
		PlanOf returns the subscription plan of the given account.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - sec.Plan: The account's plan
		  - error: Retrieval failures
	*/
	PlanOf(context context.Context, userID string) (sec.Plan, error)
}
