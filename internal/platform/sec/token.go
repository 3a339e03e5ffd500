// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via narrow interfaces.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is the fixed lifetime of a bearer token, counted from issuance.
//
// It matches the session lifetime: a token can never outlive the session it
// references, and the session record remains the authority for early revocation.
const TokenValidity = 15 * 24 * time.Hour

// TokenClaims represents the payload embedded inside a bearer token.
//
// # Why custom claims?
//
// By embedding the user ID, session ID, and email directly inside the JWT,
// any edge tier can pre-filter obviously invalid traffic WITHOUT touching the
// session store. The authoritative allow/deny decision still happens against
// the store on every request (see the auth gate).
type TokenClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token payload small.
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	Email     string `json:"eml"`
}

// Identity is the authenticated context attached to a request after the
// authorization gate has accepted it. All downstream handlers trust these
// values; nothing else from the token survives past the gate.
type Identity struct {
	UserID    string
	SessionID string
	Email     string
}

// TokenCodec signs and verifies bearer tokens using HS256.
//
// Verification is a pure function over the token string and the process-wide
// secret: no store access, no side effects.
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a TokenCodec from the configured signing secret.
// An empty secret is rejected; config marks it required so this only trips
// when wiring is bypassed in tests.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: token secret must not be empty")
	}

	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Issue creates a signed bearer token binding a user to one session.
func (codec *TokenCodec) Issue(userID, sessionID, email string) (string, error) {
	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(TokenValidity)),
		},
		UserID:    userID,
		SessionID: sessionID,
		Email:     email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and expiry of a bearer token string.
//
// It deliberately does NOT consult the session store; a valid result here
// means only "this token was signed by us and has not lapsed."
func (codec *TokenCodec) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
