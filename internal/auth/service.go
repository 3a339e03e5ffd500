// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
session lifecycle management via signed bearer tokens.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Password Recovery).
  - Gate: Two-tier request authorization (see gate.go).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and Redis
    (volatile reset tokens).
  - Security: Leverages Bcrypt and HMAC-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/sec"
	"github.com/craftlyhq/craftly/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the contract for minting signed bearer tokens.
type TokenIssuer interface {
	// Issue creates a signed token binding a user to one session.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - sessionID: The ID of the session the token references.
	//   - email: The account email, embedded as a convenience claim.
	//
	// # Returns
	//   - A signed token string, or an err if signing fails.
	Issue(userID, sessionID, email string) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository       UserRepository
	sessionRepository    SessionRepository
	resetTokenRepository ResetTokenRepository
	tokenIssuer          TokenIssuer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTokenRepository,
	issuer TokenIssuer,
) *Service {
	return &Service{
		userRepository:       userRepo,
		sessionRepository:    sessionRepo,
		resetTokenRepository: resetRepo,
		tokenIssuer:          issuer,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Handle      string
	Email       string
	Password    string
	DisplayName string
}

// AuthSession represents a successfully established login session.
type AuthSession struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new member on the starter plan, handling password
hashing, then establishes an initial session so the client is logged in
immediately after signup.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthSession: Transport-ready session for the new account
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthSession, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify handle uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByHandle(context, input.Handle)
	if err == nil {
		return nil, apperr.Conflict("Handle is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Handle:       input.Handle,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Plan:         sec.PlanBetaFree,
	}

	// Persist the user to the database. The uniqueness checks above can race
	// with a concurrent signup, so the insert's verdict is the final one.
	if err := service.userRepository.Create(context, user); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return nil, apperr.Conflict("Email is already registered")
		case errors.Is(err, ErrHandleTaken):
			return nil, apperr.Conflict("Handle is already taken")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Log the new member in right away
	return service.establishSession(context, user)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Handle or Email
	Password string
}

/*
Login validates user credentials and issues a bearer token.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new revocable session referenced from inside the token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *AuthSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*AuthSession, error) {
	var user *User
	var err error
	// Flexible login: look up by Email or Handle
	user, err = service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByHandle(context, input.Login)
	}

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.establishSession(context, user)
}

/*
establishSession creates a persistent session and mints its bearer token.

The session row and the token share one lifetime: both are created here and
the token embeds the session ID so the gate can check revocation on every
request.
*/
func (service *Service) establishSession(context context.Context, user *User) (*AuthSession, error) {

	// Create and persist the revocable session
	now := time.Now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		IsActive:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	// Mint the signed bearer token referencing the session
	token, err := service.tokenIssuer.Issue(user.ID, session.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &AuthSession{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

/*
Logout permanently deactivates the caller's session.

Description: Ensures that the bearer token referencing this session can never
be used again, regardless of its remaining cryptographic validity.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, sessionID string) error {

	// Deactivation is idempotent: a repeated logout is still a success.
	if err := service.sessionRepository.Deactivate(context, sessionID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

/*
CurrentUser resolves the full account behind an authenticated identity.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated account entity
  - err: NotFound or storage failures
*/
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Discovery token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and deactivates all active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: Deactivate EVERY active session for this user
	_ = service.sessionRepository.DeactivateAll(context, userID)

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}
