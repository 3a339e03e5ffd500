// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/sec"
)

// # Contracts

// TokenVerifier defines the contract for checking a token's signature and expiry.
//
// Verification is stateless: a passing result says nothing about whether the
// referenced session is still honored.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.TokenClaims, error)
}

// # Authorization Gate

// Gate performs the full two-tier authorization check for a bearer token.
//
// # Why two tiers?
//
// The signature check alone cannot express revocation: a signed token stays
// cryptographically valid until it expires. Tier one (stateless) rejects
// forgeries and lapsed tokens cheaply; tier two (stateful) consults the
// session registry so that logout and password resets take effect immediately.
type Gate struct {
	verifier TokenVerifier
	sessions SessionRepository
}

// NewGate constructs a [Gate] from its verification and storage dependencies.
func NewGate(verifier TokenVerifier, sessions SessionRepository) *Gate {
	return &Gate{
		verifier: verifier,
		sessions: sessions,
	}
}

/*
Authorize resolves a raw bearer token string into an authenticated identity.

Description: Runs every check a request must pass before it is trusted,
in strict cheap-to-expensive order. Exactly one database read is performed,
and only after the token has already proven authentic.

Parameters:
  - context: context.Context
  - tokenString: string (raw bearer token)

Returns:
  - *sec.Identity: Trusted identity for the request
  - err: apperr.Unauthorized (bad credentials) or apperr.Forbidden (identity mismatch)
*/
func (gate *Gate) Authorize(context context.Context, tokenString string) (*sec.Identity, error) {

	// ── 1. Signature & Expiry (stateless) ─────────────────────────────────
	claims, err := gate.verifier.Verify(tokenString)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	// ── 2. Claim Well-Formedness ──────────────────────────────────────────
	// Both IDs must be parseable UUIDs before they touch the database.
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperr.Unauthorized("Malformed token claims")
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, apperr.Unauthorized("Malformed token claims")
	}

	// ── 3. Session Lookup (stateful) ──────────────────────────────────────
	session, err := gate.sessions.FindByID(context, claims.SessionID)
	if err != nil {
		return nil, apperr.Unauthorized("Session not found")
	}

	// ── 4. Revocation Check ───────────────────────────────────────────────
	if !session.IsActive {
		return nil, apperr.Unauthorized("Session has been revoked")
	}

	// ── 5. Session Expiry ─────────────────────────────────────────────────
	// Lazily deactivate on first sight; the background sweep removes the row
	// later. A failure here must not mask the 401.
	if !session.ExpiresAt.After(time.Now()) {
		_ = gate.sessions.Deactivate(context, session.ID)
		return nil, apperr.Unauthorized("Session has expired")
	}

	// ── 6. Identity Binding ───────────────────────────────────────────────
	// The token's user claim must match the session's owner. A mismatch means
	// a replayed or spliced credential, not a stale one: 403, never 401.
	if session.UserID != claims.UserID {
		return nil, apperr.Forbidden("Token does not match session owner")
	}

	// ── 7. Admission ──────────────────────────────────────────────────────
	return &sec.Identity{
		UserID:    claims.UserID,
		SessionID: session.ID,
		Email:     claims.Email,
	}, nil
}
