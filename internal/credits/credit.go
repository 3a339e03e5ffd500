// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package credits implements the daily usage metering layer.

Every billable action (generation, deployment, research) spends credits from a
per-user, per-UTC-day counter. The counter is lazily materialized on first
spend of the day and never carries a balance across days.

# Architecture

  - Meter: Orchestrates plan resolution, counter materialization, and the
    atomic conditional deduction.
  - Repository: The deduction itself is a single conditional UPDATE so that
    concurrent requests can never overdraw a balance.
*/
package credits

import "time"

// # Action Costs

// Action identifies a billable operation.
type Action string

const (
	// ActionGenerate is a prompt-to-component generation run.
	ActionGenerate Action = "generate"
	// ActionDeploy publishes a component to a hosted URL.
	ActionDeploy Action = "deploy"
	// ActionResearch runs a web-grounded research pass before generation.
	ActionResearch Action = "research"
)

// Cost returns the credit price of an action. Unknown actions price at the
// generation rate rather than zero so a wiring mistake can never be free.
func (a Action) Cost() int {
	switch a {
	case ActionGenerate:
		return 3
	case ActionDeploy:
		return 5
	case ActionResearch:
		return 5
	default:
		return 3
	}
}

// Valid reports whether the action is a known billable operation.
func (a Action) Valid() bool {
	return a == ActionGenerate || a == ActionDeploy || a == ActionResearch
}

// # Domain Entities

// Counter is one user's credit balance for one UTC day.
type Counter struct {
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"` // UTC date key, e.g. "2026-08-30"
	Remaining int       `json:"remaining"`
	Allotment int       `json:"allotment"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Balance is the transport-ready view of a user's current quota state.
type Balance struct {
	Remaining int       `json:"remaining"`
	Allotment int       `json:"allotment"`
	Day       string    `json:"day"`
	ResetsAt  time.Time `json:"resets_at"`
}

// # Day Boundaries

// dayKeyFormat renders a time as its UTC calendar date.
const dayKeyFormat = "2006-01-02"

// DayKey returns the UTC date key the given instant falls on. All quota
// accounting uses UTC so the reset moment is identical for every user.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyFormat)
}

// NextReset returns the next UTC midnight after the given instant.
func NextReset(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
