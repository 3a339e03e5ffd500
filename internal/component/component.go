// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package component implements the generated-artifact lifecycle.

A component is a generated HTML/CSS/JS artifact owned by one user. It moves
between exactly two visibility states:

  - private: reachable only by its owner, garbage-collected after a retention
    window unless republished or regenerated.
  - public: listed in the community feed, never expires while public.

# Redesign Note

Visibility is an explicit enum column, never inferred from whether the expiry
timestamp happens to be set. The two fields change together inside one UPDATE
so no interleaving can observe a public component with an expiry or a private
one without.
*/
package component

import "time"

// # Visibility States

// Visibility is the explicit publication state of a component.
type Visibility string

const (
	// VisibilityPrivate marks an owner-only component subject to expiry.
	VisibilityPrivate Visibility = "private"
	// VisibilityPublic marks a community-listed, non-expiring component.
	VisibilityPublic Visibility = "public"
)

// Valid reports whether the visibility is a known state.
func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// # Lifecycle Constraints

const (
	// PrivateRetention is how long a private component survives before the
	// background sweep removes it. Publishing clears the countdown;
	// unpublishing restarts it from that moment.
	PrivateRetention = 15 * 24 * time.Hour

	// MinPublishDescriptionLen is the minimum description length (in runes,
	// after trimming) required to publish. Public listings without a real
	// description are just noise in the feed.
	MinPublishDescriptionLen = 10

	// MaxTitleLen bounds component titles.
	MaxTitleLen = 120

	// MaxPromptLen bounds the stored generation prompt.
	MaxPromptLen = 4000
)

// # Domain Entities

// Component represents one generated artifact and its lifecycle state.
type Component struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Prompt      string     `json:"prompt"`
	HTML        string     `json:"html"`
	CSS         string     `json:"css,omitempty"`
	JS          string     `json:"js,omitempty"`
	Visibility  Visibility `json:"visibility"`
	// ExpiresAt is set while private and nil while public.
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	DeployURL  string     `json:"deploy_url,omitempty"`
	LikesCount int        `json:"likes_count"`
	// CommentsCount mirrors the social.comment rows; the community store
	// keeps it in step inside the same transaction as the row change.
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the component belongs to the given user.
func (c *Component) IsOwnedBy(userID string) bool {
	return c.UserID == userID
}

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrompt      = "prompt"
	FieldHTML        = "html"
	FieldCSS         = "css"
	FieldJS          = "js"
	FieldMessage     = "message"
	FieldDeployURL   = "deploy_url"
)
