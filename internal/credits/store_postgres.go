// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// PostgreSQL implementations of the credits storage contracts.
package credits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/sec"
)

// # Counter Repository

// PostgresCounterRepository implements the CounterRepository interface using pgx.
type PostgresCounterRepository struct {
	pool *pgxpool.Pool
}

// NewCounterRepository creates a new PostgreSQL implementation of CounterRepository.
func NewCounterRepository(pool *pgxpool.Pool) *PostgresCounterRepository {
	return &PostgresCounterRepository{pool: pool}
}

/*
EnsureDay materializes today's counter row at the full allotment.

Description: Uses INSERT .. ON CONFLICT DO NOTHING on the (userid, day)
primary key so that concurrent first-spends of the day race harmlessly.

Parameters:
  - context: context.Context
  - userID: string
  - day: string
  - allotment: int

Returns:
  - error: Persistence failures
*/
func (repository *PostgresCounterRepository) EnsureDay(context context.Context, userID, day string, allotment int) error {
	const query = `
		INSERT INTO usage.counter (userid, day, remaining, allotment, updatedat)
		VALUES ($1, $2, $3, $3, NOW())
		ON CONFLICT (userid, day) DO NOTHING`

	_, err := repository.pool.Exec(context, query, userID, day, allotment)
	if err != nil {
		return fmt.Errorf("postgres_counter_repo_ensure_day_failed: %w", err)
	}

	return nil
}

/*
Deduct conditionally subtracts amount from the remaining balance.

Description: The WHERE clause carries the balance check, making the
read-check-write a single atomic statement. RowsAffected == 0 means the
balance did not cover the amount and nothing changed.

Parameters:
  - context: context.Context
  - userID: string
  - day: string
  - amount: int

Returns:
  - bool: Whether the deduction was applied
  - error: Persistence failures
*/
func (repository *PostgresCounterRepository) Deduct(context context.Context, userID, day string, amount int) (bool, error) {
	const query = `
		UPDATE usage.counter
		SET remaining = remaining - $3, updatedat = NOW()
		WHERE userid = $1 AND day = $2 AND remaining >= $3`

	tag, err := repository.pool.Exec(context, query, userID, day, amount)
	if err != nil {
		return false, fmt.Errorf("postgres_counter_repo_deduct_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
Find returns the counter for (userID, day).

Parameters:
  - context: context.Context
  - userID: string
  - day: string

Returns:
  - *Counter: Hydrated counter
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresCounterRepository) Find(context context.Context, userID, day string) (*Counter, error) {
	const query = `
		SELECT userid, day, remaining, allotment, updatedat
		FROM usage.counter
		WHERE userid = $1 AND day = $2`

	// The day column is a DATE; scan it as time.Time and render it back
	// into the same key the query was made with.
	var dayValue time.Time

	counter := &Counter{}
	err := repository.pool.QueryRow(context, query, userID, day).Scan(
		&counter.UserID,
		&dayValue,
		&counter.Remaining,
		&counter.Allotment,
		&counter.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Usage counter")
		}
		return nil, fmt.Errorf("postgres_counter_repo_find_failed: %w", err)
	}

	counter.Day = DayKey(dayValue)

	return counter, nil
}

// # Plan Resolver

// PostgresPlanResolver implements PlanResolver with a direct account lookup.
type PostgresPlanResolver struct {
	pool *pgxpool.Pool
}

// NewPlanResolver creates a new PostgreSQL implementation of PlanResolver.
func NewPlanResolver(pool *pgxpool.Pool) *PostgresPlanResolver {
	return &PostgresPlanResolver{pool: pool}
}

/*
PlanOf returns the subscription plan of the given account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - sec.Plan: The account's plan
  - error: apperr.NotFound or execution errors
*/
func (resolver *PostgresPlanResolver) PlanOf(context context.Context, userID string) (sec.Plan, error) {
	const query = "SELECT plan FROM users.account WHERE id = $1"

	var plan sec.Plan
	err := resolver.pool.QueryRow(context, query, userID).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("User")
		}
		return "", fmt.Errorf("postgres_plan_resolver_failed: %w", err)
	}

	return plan, nil
}
