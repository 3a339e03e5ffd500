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
)

// fakeUserRepository is an in-memory UserRepository for service tests.
type fakeUserRepository struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*auth.User)}
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return auth.ErrEmailTaken
		}
		if existing.Handle == user.Handle {
			return auth.ErrHandleTaken
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByHandle(_ context.Context, handle string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Handle == handle {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	if user, ok := f.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

// fakeResetTokenRepository is an in-memory ResetTokenRepository.
type fakeResetTokenRepository struct {
	tokens map[string]string
}

func newFakeResetTokenRepository() *fakeResetTokenRepository {
	return &fakeResetTokenRepository{tokens: make(map[string]string)}
}

func (f *fakeResetTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeResetTokenRepository) Get(_ context.Context, token string) (string, error) {
	if userID, ok := f.tokens[token]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Reset token")
}

func (f *fakeResetTokenRepository) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

// newTestService wires a Service against in-memory fakes and a real codec.
func newTestService(t *testing.T) (*auth.Service, *fakeUserRepository, *fakeSessionRepository, *fakeResetTokenRepository, *sec.TokenCodec) {
	t.Helper()

	codec, err := sec.NewTokenCodec("test-secret-please-rotate", "craftly.app")
	require.NoError(t, err)

	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	resets := newFakeResetTokenRepository()

	service := auth.NewService(users, sessions, resets, codec)
	return service, users, sessions, resets, codec
}

/*
TestService_Register_Success verifies a new account lands on the starter plan
and is logged in immediately.
*/
func TestService_Register_Success(t *testing.T) {
	service, _, sessions, _, codec := newTestService(t)

	authSession, err := service.Register(context.Background(), auth.RegisterInput{
		Handle:      "quinn",
		Email:       "quinn@example.com",
		Password:    "correct-horse",
		DisplayName: "Quinn",
	})

	require.NoError(t, err)
	assert.Equal(t, sec.PlanBetaFree, authSession.User.Plan)
	assert.NotEmpty(t, authSession.Token)

	// The token must reference a real, active session.
	claims, err := codec.Verify(authSession.Token)
	require.NoError(t, err)
	stored, err := sessions.FindByID(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, authSession.User.ID, stored.UserID)
}

/*
TestService_Register_Conflicts verifies duplicate identity rejection.
*/
func TestService_Register_Conflicts(t *testing.T) {
	service, _, _, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		handle string
		email  string
	}{
		{name: "duplicate_email", handle: "other", email: "quinn@example.com"},
		{name: "duplicate_handle", handle: "quinn", email: "other@example.com"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), auth.RegisterInput{
				Handle: testCase.handle, Email: testCase.email, Password: "correct-horse",
			})

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, 409, appError.HTTPStatus)
		})
	}
}

// blindUserRepository never sees existing accounts on lookup, so the insert
// itself reports the collision. This is the shape of two signups racing past
// the uniqueness pre-checks.
type blindUserRepository struct {
	*fakeUserRepository
}

func (f *blindUserRepository) FindByEmail(_ context.Context, _ string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (f *blindUserRepository) FindByHandle(_ context.Context, _ string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

/*
TestService_Register_ConcurrentDuplicate verifies that a duplicate slipping
past the pre-insert checks still surfaces as a conflict, not a server error.
*/
func TestService_Register_ConcurrentDuplicate(t *testing.T) {
	codec, err := sec.NewTokenCodec("test-secret-please-rotate", "craftly.app")
	require.NoError(t, err)

	users := &blindUserRepository{fakeUserRepository: newFakeUserRepository()}
	service := auth.NewService(users, newFakeSessionRepository(), newFakeResetTokenRepository(), codec)

	_, err = service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

/*
TestService_Login verifies credential checks and session establishment,
including login by handle.
*/
func TestService_Login(t *testing.T) {
	service, _, sessions, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	// 1. Login by email succeeds
	session, err := service.Login(context.Background(), auth.LoginInput{
		Login: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(auth.SessionTTL), session.ExpiresAt, time.Minute)

	// The session row is stamped at creation; revocation ordering during a
	// password reset depends on this.
	for _, stored := range sessions.sessions {
		assert.False(t, stored.CreatedAt.IsZero())
	}

	// 2. Login by handle succeeds
	_, err = service.Login(context.Background(), auth.LoginInput{
		Login: "quinn", Password: "correct-horse",
	})
	require.NoError(t, err)

	// 3. Wrong password is a generic 401
	_, err = service.Login(context.Background(), auth.LoginInput{
		Login: "quinn@example.com", Password: "wrong",
	})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)

	// 4. Unknown identity uses the same generic 401 (no enumeration)
	_, err = service.Login(context.Background(), auth.LoginInput{
		Login: "nobody@example.com", Password: "irrelevant",
	})
	unknownError := apperr.As(err)
	require.NotNil(t, unknownError)
	assert.Equal(t, appError.Message, unknownError.Message)
}

/*
TestService_Logout verifies deactivation and idempotency.
*/
func TestService_Logout(t *testing.T) {
	service, _, sessions, _, codec := newTestService(t)

	authSession, err := service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	claims, err := codec.Verify(authSession.Token)
	require.NoError(t, err)

	// 1. First logout deactivates the session
	require.NoError(t, service.Logout(context.Background(), claims.SessionID))
	stored, err := sessions.FindByID(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// 2. Repeating the logout is still a success
	assert.NoError(t, service.Logout(context.Background(), claims.SessionID))
}

/*
TestService_ResetPassword verifies the full recovery flow: the password
changes, every session is revoked, and the token is single-use.
*/
func TestService_ResetPassword(t *testing.T) {
	service, _, sessions, resets, _ := newTestService(t)

	authSession, err := service.Register(context.Background(), auth.RegisterInput{
		Handle: "quinn", Email: "quinn@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	token, err := service.RequestPasswordReset(context.Background(), "quinn@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resetTime := time.Now()
	require.NoError(t, service.ResetPassword(context.Background(), token, "brand-new-password"))

	// 1. Old password no longer works, new one does
	_, err = service.Login(context.Background(), auth.LoginInput{
		Login: "quinn@example.com", Password: "correct-horse",
	})
	assert.Error(t, err)
	_, err = service.Login(context.Background(), auth.LoginInput{
		Login: "quinn@example.com", Password: "brand-new-password",
	})
	assert.NoError(t, err)

	// 2. Every session created before the reset was revoked
	for _, session := range sessions.sessions {
		if session.UserID == authSession.User.ID && session.CreatedAt.Before(resetTime) {
			assert.False(t, session.IsActive)
		}
	}

	// 3. The reset token is single-use
	err = service.ResetPassword(context.Background(), token, "another-password")
	assert.Error(t, err)

	// 4. Unknown email does not leak existence
	unknownToken, err := service.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, unknownToken)
	assert.Empty(t, resets.tokens[unknownToken])
}
