// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package account

import (
	"context"
	"fmt"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/pkg/handle"
)

// Service implements profile reads and owner edits.
type Service struct {
	profileRepository ProfileRepository
}

// NewService wires the profile service.
func NewService(profileRepository ProfileRepository) *Service {
	return &Service{profileRepository: profileRepository}
}

// ProfileByHandle returns the public profile behind a handle. Lookup is
// case-insensitive because handles are stored normalized.
func (service *Service) ProfileByHandle(ctx context.Context, userHandle string) (*Profile, error) {
	return service.profileRepository.FindByHandle(ctx, handle.Normalize(userHandle))
}

// OwnProfile returns the caller's profile.
func (service *Service) OwnProfile(ctx context.Context, userID string) (*Profile, error) {
	return service.profileRepository.FindByUserID(ctx, userID)
}

/*
Update applies the owner's edits. Omitted fields keep their current value;
a changed handle is normalized and checked for uniqueness first.

Returns:
  - *Profile: The profile after the edit.
  - error: 400 for invalid fields, 409 for a taken handle.
*/
func (service *Service) Update(ctx context.Context, userID string, input UpdateInput) (*Profile, error) {
	current, err := service.profileRepository.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// ── 1. Merge the edit over the current state ────────────────────────
	next := *current
	if input.Handle != nil {
		next.Handle = handle.Normalize(*input.Handle)
	}
	if input.DisplayName != nil {
		next.DisplayName = *input.DisplayName
	}
	if input.AvatarURL != nil {
		next.AvatarURL = *input.AvatarURL
	}
	if input.Bio != nil {
		next.Bio = *input.Bio
	}

	// ── 2. Validate the merged result ───────────────────────────────────
	if !handle.IsValid(next.Handle) || len(next.Handle) < 3 {
		return nil, apperr.ValidationError("Handle format is invalid.",
			apperr.FieldError{Field: FieldHandle, Message: "must be 3-30 characters (letters, digits, hyphens, underscores)"})
	}
	if len([]rune(next.DisplayName)) > MaxDisplayNameLen {
		return nil, apperr.ValidationError("Display name is too long.",
			apperr.FieldError{Field: FieldDisplayName, Message: fmt.Sprintf("must be at most %d characters", MaxDisplayNameLen)})
	}
	if len([]rune(next.Bio)) > MaxBioLen {
		return nil, apperr.ValidationError("Bio is too long.",
			apperr.FieldError{Field: FieldBio, Message: fmt.Sprintf("must be at most %d characters", MaxBioLen)})
	}
	if len(next.AvatarURL) > MaxAvatarURLLen {
		return nil, apperr.ValidationError("Avatar URL is too long.",
			apperr.FieldError{Field: FieldAvatarURL, Message: fmt.Sprintf("must be at most %d characters", MaxAvatarURLLen)})
	}

	// ── 3. Handle changes must not collide ──────────────────────────────
	if next.Handle != current.Handle {
		taken, err := service.profileRepository.HandleTaken(ctx, next.Handle, userID)
		if err != nil {
			return nil, fmt.Errorf("account_handle_check_failed: %w", err)
		}
		if taken {
			return nil, apperr.Conflict("This handle is already taken")
		}
	}

	// ── 4. Persist and return the fresh state ───────────────────────────
	err = service.profileRepository.Update(ctx, userID, next.Handle, next.DisplayName, next.AvatarURL, next.Bio)
	if err != nil {
		return nil, fmt.Errorf("account_update_failed: %w", err)
	}

	return service.profileRepository.FindByUserID(ctx, userID)
}
