// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlyhq/craftly/internal/platform/sec"
)

const testSecret = "unit-test-secret-not-for-production"

/*
TestTokenCodec_RoundTrip verifies that an issued token verifies back to the
same identity claims.
*/
func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := sec.NewTokenCodec(testSecret, "craftly.test")
	require.NoError(t, err)

	token, err := codec.Issue("user-1", "session-1", "ana@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "craftly.test", claims.Issuer)

	// Validity window is fixed at issuance
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, sec.TokenValidity.Seconds(), remaining.Seconds(), 60)
}

/*
TestTokenCodec_EmptySecret ensures the codec refuses to start without a key.
*/
func TestTokenCodec_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenCodec("", "craftly.test")
	assert.Error(t, err)
}

/*
TestTokenCodec_Verify_Failures covers malformed, tampered, foreign-key and
expired tokens. All must fail verification without panicking.
*/
func TestTokenCodec_Verify_Failures(t *testing.T) {
	codec, err := sec.NewTokenCodec(testSecret, "craftly.test")
	require.NoError(t, err)

	valid, err := codec.Issue("user-1", "session-1", "ana@example.com")
	require.NoError(t, err)

	// Token signed with a different secret
	otherCodec, err := sec.NewTokenCodec("some-other-secret", "craftly.test")
	require.NoError(t, err)
	foreign, err := otherCodec.Issue("user-1", "session-1", "ana@example.com")
	require.NoError(t, err)

	// Token whose payload was modified after signing
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + ".eyJ1aWQiOiJhdHRhY2tlciJ9." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-token"},
		{"empty", ""},
		{"wrong_secret", foreign},
		{"tampered_payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

/*
TestTokenCodec_Verify_Expired builds a token whose expiry is in the past and
confirms the codec rejects it on expiry alone.
*/
func TestTokenCodec_Verify_Expired(t *testing.T) {
	codec, err := sec.NewTokenCodec(testSecret, "craftly.test")
	require.NoError(t, err)

	// Sign an already-expired token with the same secret the codec uses.
	expiredClaims := sec.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "craftly.test",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-16 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
		UserID:    "user-1",
		SessionID: "session-1",
		Email:     "ana@example.com",
	}

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims)
	expired, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := codec.Verify(expired)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

/*
TestPlan_DailyCreditLimit pins the allotment table, including the fallback
for unknown tiers.
*/
func TestPlan_DailyCreditLimit(t *testing.T) {
	assert.Equal(t, 200, sec.PlanBetaFree.DailyCreditLimit())
	assert.Equal(t, 1000, sec.PlanPro.DailyCreditLimit())
	assert.Equal(t, 200, sec.Plan("unknown").DailyCreditLimit())

	assert.True(t, sec.PlanBetaFree.Valid())
	assert.True(t, sec.PlanPro.Valid())
	assert.False(t, sec.Plan("enterprise").Valid())
}
