// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Package middleware provides the HTTP middleware chain for the Craftly API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/constants"
	"github.com/craftlyhq/craftly/internal/platform/ctxkey"
	"github.com/craftlyhq/craftly/internal/platform/respond"
	"github.com/craftlyhq/craftly/internal/platform/sec"
)

// Authorizer defines the interface needed to authorize bearer tokens in middleware.
//
// # Why an interface?
//
// Defining Authorizer here decouples the middleware from the `auth` service
// implementation, allowing us to easily inject mocks during unit testing.
//
// Authorize performs the full two-tier check: cryptographic token verification
// followed by a session registry lookup. A valid signature alone is never enough.
type Authorizer interface {
	Authorize(ctx context.Context, tokenString string) (*sec.Identity, error)
}

// Authenticate extracts and authorizes the bearer token from the request.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header; fall back to the
//     session cookie for browser clients.
//  2. If absent, request proceeds as anonymous.
//  3. If present, run the full authorization gate via [Authorizer].
//  4. Inject [*sec.Identity] into the request context for downstream use.
//
// # Parameters
//   - gate: The Authorizer instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(gate Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			tokenString, err := extractToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Authorization Gate ─────────────────────────────────────────
			// The gate distinguishes 401 (bad/expired credentials) from 403
			// (token/session identity mismatch); pass its error through as-is.
			identity, err := gate.Authorize(request.Context(), tokenString)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyIdentity, identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Identity] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := GetIdentity(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetIdentity retrieves the [*sec.Identity] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.Identity] if the user is authenticated.
//   - nil if the user is anonymous.
func GetIdentity(ctx context.Context) *sec.Identity {
	identity, ok := ctx.Value(ctxkey.KeyIdentity).(*sec.Identity)
	if !ok {
		return nil
	}
	return identity
}

// extractToken pulls the raw bearer token from the Authorization header or,
// failing that, from the session cookie. An empty result means anonymous.
func extractToken(request *http.Request) (string, error) {

	// Header takes precedence: API clients send 'Authorization: Bearer <token>'
	authHeader := request.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", apperr.Unauthorized("Invalid authorization format")
		}
		return parts[1], nil
	}

	// Browser clients carry the token in an httpOnly cookie
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", nil
	}
	return cookie.Value, nil
}
