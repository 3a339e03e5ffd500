// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package account_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlyhq/craftly/internal/account"
	"github.com/craftlyhq/craftly/internal/platform/apperr"
)

type fakeProfileRepository struct {
	profiles map[string]*account.Profile // keyed by user ID
}

func newFakeProfileRepository() *fakeProfileRepository {
	return &fakeProfileRepository{profiles: make(map[string]*account.Profile)}
}

func (f *fakeProfileRepository) FindByHandle(_ context.Context, userHandle string) (*account.Profile, error) {
	for _, p := range f.profiles {
		if p.Handle == userHandle {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Profile")
}

func (f *fakeProfileRepository) FindByUserID(_ context.Context, userID string) (*account.Profile, error) {
	if p, ok := f.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperr.NotFound("Profile")
}

func (f *fakeProfileRepository) HandleTaken(_ context.Context, userHandle, excludeUserID string) (bool, error) {
	for id, p := range f.profiles {
		if p.Handle == userHandle && id != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfileRepository) Update(_ context.Context, userID, userHandle, displayName, avatarURL, bio string) error {
	p := f.profiles[userID]
	p.Handle = userHandle
	p.DisplayName = displayName
	p.AvatarURL = avatarURL
	p.Bio = bio
	return nil
}

func seedProfile(repo *fakeProfileRepository, userID, userHandle string) {
	repo.profiles[userID] = &account.Profile{
		UserID:      userID,
		Handle:      userHandle,
		DisplayName: "Ana Builds",
		Bio:         "CSS person",
	}
}

func stringPointer(s string) *string { return &s }

/*
TestService_ProfileByHandle verifies lookup normalizes the requested handle.
*/
func TestService_ProfileByHandle(t *testing.T) {
	repo := newFakeProfileRepository()
	seedProfile(repo, "user-1", "ana-builds")
	service := account.NewService(repo)

	// Mixed case and accents resolve to the stored canonical handle.
	profile, err := service.ProfileByHandle(context.Background(), "Aná-Builds")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)

	_, err = service.ProfileByHandle(context.Background(), "nobody-here")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

/*
TestService_Update verifies partial edits, normalization, and the handle
uniqueness gate.
*/
func TestService_Update(t *testing.T) {
	repo := newFakeProfileRepository()
	seedProfile(repo, "user-1", "ana-builds")
	seedProfile(repo, "user-2", "taken-handle")
	service := account.NewService(repo)

	// 1. Omitted fields survive a partial edit
	updated, err := service.Update(context.Background(), "user-1", account.UpdateInput{
		Bio: stringPointer("Builds gradient buttons"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana-builds", updated.Handle)
	assert.Equal(t, "Ana Builds", updated.DisplayName)
	assert.Equal(t, "Builds gradient buttons", updated.Bio)

	// 2. A changed handle is normalized before storage
	updated, err = service.Update(context.Background(), "user-1", account.UpdateInput{
		Handle: stringPointer("  Aná Builds 2  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana-builds-2", updated.Handle)

	// 3. Another user's handle is off limits
	_, err = service.Update(context.Background(), "user-1", account.UpdateInput{
		Handle: stringPointer("taken-handle"),
	})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)

	// 4. Keeping your own handle is not a conflict
	_, err = service.Update(context.Background(), "user-1", account.UpdateInput{
		Handle: stringPointer("ana-builds-2"),
	})
	assert.NoError(t, err)
}

/*
TestService_Update_Validation covers the field limits.
*/
func TestService_Update_Validation(t *testing.T) {
	repo := newFakeProfileRepository()
	seedProfile(repo, "user-1", "ana-builds")
	service := account.NewService(repo)

	testCases := []struct {
		name  string
		input account.UpdateInput
	}{
		{"handle too short", account.UpdateInput{Handle: stringPointer("ab")}},
		{"handle collapses to empty", account.UpdateInput{Handle: stringPointer("!!!")}},
		{"display name too long", account.UpdateInput{DisplayName: stringPointer(strings.Repeat("x", account.MaxDisplayNameLen+1))}},
		{"bio too long", account.UpdateInput{Bio: stringPointer(strings.Repeat("x", account.MaxBioLen+1))}},
		{"avatar url too long", account.UpdateInput{AvatarURL: stringPointer("https://" + strings.Repeat("x", account.MaxAvatarURLLen))}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Update(context.Background(), "user-1", testCase.input)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, 400, appError.HTTPStatus)

			// Nothing was persisted.
			stored, _ := repo.FindByUserID(context.Background(), "user-1")
			assert.Equal(t, "ana-builds", stored.Handle)
		})
	}
}
