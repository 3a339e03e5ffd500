// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlyhq/craftly/internal/auth"
	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/sec"
	"github.com/craftlyhq/craftly/pkg/uuid"
)

// fakeSessionRepository is an in-memory SessionRepository for gate tests.
type fakeSessionRepository struct {
	sessions map[string]*auth.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*auth.Session)}
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) FindByID(_ context.Context, sessionID string) (*auth.Session, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepository) Deactivate(_ context.Context, sessionID string) error {
	if session, ok := f.sessions[sessionID]; ok {
		session.IsActive = false
	}
	return nil
}

func (f *fakeSessionRepository) DeactivateAll(_ context.Context, userID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	for id, session := range f.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(f.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// newTestGate wires a Gate with a real codec and an in-memory session store.
func newTestGate(t *testing.T) (*auth.Gate, *sec.TokenCodec, *fakeSessionRepository) {
	t.Helper()

	codec, err := sec.NewTokenCodec("test-secret-please-rotate", "craftly.app")
	require.NoError(t, err)

	sessions := newFakeSessionRepository()
	return auth.NewGate(codec, sessions), codec, sessions
}

// seedSession stores an active, unexpired session and returns its token.
func seedSession(t *testing.T, codec *sec.TokenCodec, sessions *fakeSessionRepository, userID string) (string, *auth.Session) {
	t.Helper()

	session := &auth.Session{
		ID:        uuid.New(),
		UserID:    userID,
		IsActive:  true,
		ExpiresAt: time.Now().Add(auth.SessionTTL),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	token, err := codec.Issue(userID, session.ID, "member@example.com")
	require.NoError(t, err)

	return token, session
}

/*
TestGate_Authorize_Success verifies the happy path through every check.
*/
func TestGate_Authorize_Success(t *testing.T) {
	gate, codec, sessions := newTestGate(t)
	userID := uuid.New()
	token, session := seedSession(t, codec, sessions, userID)

	identity, err := gate.Authorize(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, session.ID, identity.SessionID)
	assert.Equal(t, "member@example.com", identity.Email)
}

/*
TestGate_Authorize_BadSignature verifies that garbage and foreign-signed
tokens are rejected with 401 before any store access.
*/
func TestGate_Authorize_BadSignature(t *testing.T) {
	gate, _, _ := newTestGate(t)

	otherCodec, err := sec.NewTokenCodec("a-different-secret", "craftly.app")
	require.NoError(t, err)
	foreignToken, err := otherCodec.Issue(uuid.New(), uuid.New(), "x@example.com")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "foreign_signature", token: foreignToken},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := gate.Authorize(context.Background(), testCase.token)

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, 401, appError.HTTPStatus)
		})
	}
}

/*
TestGate_Authorize_MalformedClaims verifies that tokens carrying non-UUID
identifiers never reach the session store.
*/
func TestGate_Authorize_MalformedClaims(t *testing.T) {
	gate, codec, _ := newTestGate(t)

	// Signed by us, but the embedded IDs are not UUIDs.
	token, err := codec.Issue("alice", "session-1", "alice@example.com")
	require.NoError(t, err)

	_, err = gate.Authorize(context.Background(), token)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

/*
TestGate_Authorize_SessionMissing verifies that a valid token whose session
row is gone yields 401.
*/
func TestGate_Authorize_SessionMissing(t *testing.T) {
	gate, codec, _ := newTestGate(t)

	token, err := codec.Issue(uuid.New(), uuid.New(), "ghost@example.com")
	require.NoError(t, err)

	_, err = gate.Authorize(context.Background(), token)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

/*
TestGate_Authorize_RevokedSession verifies that logout takes effect even
while the token itself is still cryptographically valid.
*/
func TestGate_Authorize_RevokedSession(t *testing.T) {
	gate, codec, sessions := newTestGate(t)
	userID := uuid.New()
	token, session := seedSession(t, codec, sessions, userID)

	// Revoke (logout) and retry with the same, still-valid token.
	require.NoError(t, sessions.Deactivate(context.Background(), session.ID))

	_, err := gate.Authorize(context.Background(), token)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

/*
TestGate_Authorize_ExpiredSession verifies the lazy deactivation path: an
expired-but-active session is rejected AND flipped to inactive.
*/
func TestGate_Authorize_ExpiredSession(t *testing.T) {
	gate, codec, sessions := newTestGate(t)
	userID := uuid.New()
	token, session := seedSession(t, codec, sessions, userID)

	// Force the session past its expiry while keeping it active.
	sessions.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err := gate.Authorize(context.Background(), token)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)

	// Lazy cleanup: the row must now be inactive.
	assert.False(t, sessions.sessions[session.ID].IsActive)
}

/*
TestGate_Authorize_OwnerMismatch verifies the integrity check: a token whose
user claim does not match the session owner is 403, never 401.
*/
func TestGate_Authorize_OwnerMismatch(t *testing.T) {
	gate, codec, sessions := newTestGate(t)

	// Alice owns the session, but the token claims Mallory's user ID.
	_, session := seedSession(t, codec, sessions, uuid.New())
	spliced, err := codec.Issue(uuid.New(), session.ID, "mallory@example.com")
	require.NoError(t, err)

	_, err = gate.Authorize(context.Background(), spliced)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)
}
