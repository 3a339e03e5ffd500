// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Package account manages the public face of a user: the profile other
// people see and the settings its owner can edit.
package account

import "time"

// # Limits

const (
	MaxDisplayNameLen = 80
	MaxBioLen         = 300
	MaxAvatarURLLen   = 500
)

// Profile is the public view of an account. It deliberately omits email,
// plan, and anything else that belongs to the owner alone.
type Profile struct {
	UserID        string    `json:"user_id"`
	Handle        string    `json:"handle"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     string    `json:"avatar_url"`
	Bio           string    `json:"bio"`
	JoinedAt      time.Time `json:"joined_at"`
	PublicCount   int       `json:"public_components"`
	LikesReceived int       `json:"likes_received"`
}

// UpdateInput carries the owner-editable fields. A nil pointer means
// "leave unchanged"; an empty string clears the field.
type UpdateInput struct {
	Handle      *string `json:"handle"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

// # JSON Field Names

const (
	FieldHandle      = "handle"
	FieldDisplayName = "display_name"
	FieldAvatarURL   = "avatar_url"
	FieldBio         = "bio"
)
