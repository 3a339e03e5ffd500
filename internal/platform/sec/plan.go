// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package sec

// # Subscription Plans

// Plan represents the subscription tier attached to an account.
// The tier decides the daily credit allotment used by the usage meter.
type Plan string

const (
	// Default tier for accounts created during the beta
	PlanBetaFree Plan = "beta-free"

	// Paid tier with a larger daily allotment
	PlanPro Plan = "pro"
)

// DailyCreditLimit returns the full daily credit allotment for the plan.
//
// Unknown plan strings fall back to the beta-free allotment rather than zero,
// so a bad migration never locks every request out of the product.
func (p Plan) DailyCreditLimit() int {
	switch p {
	case PlanPro:
		return 1000
	case PlanBetaFree:
		return 200
	default:
		return 200
	}
}

// Valid reports whether p is a recognized subscription tier.
func (p Plan) Valid() bool {
	return p == PlanBetaFree || p == PlanPro
}
