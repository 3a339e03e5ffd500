// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package account

import "context"

// ProfileRepository defines the data access contract for profiles.
//
// # Architecture
//
// The pgx implementation lives next to it in this package — the interface
// exists so the service tests can run against an in-memory double.
type ProfileRepository interface {
	// FindByHandle returns the public profile for a handle, with the
	// aggregate counters joined in.
	//
	// It returns ErrNotFound when no account owns that handle.
	FindByHandle(ctx context.Context, userHandle string) (*Profile, error)

	// FindByUserID returns the profile for an account ID.
	FindByUserID(ctx context.Context, userID string) (*Profile, error)

	// HandleTaken reports whether a handle belongs to any account other
	// than the given one.
	HandleTaken(ctx context.Context, userHandle, excludeUserID string) (bool, error)

	// Update persists the editable profile fields for an account.
	Update(ctx context.Context, userID, userHandle, displayName, avatarURL, bio string) error
}
