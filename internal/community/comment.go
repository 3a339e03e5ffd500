// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// Package community implements the social layer of the platform: the public
// feed of published components, likes, and comment threads.
//
// # Access Model
//
// Everything in this package reads through the public lens. Only components
// with public visibility ever appear in the feed or accept likes and
// comments; private components are invisible here regardless of owner.
package community

import (
	"regexp"
	"strings"
	"time"
)

// # Limits

const (
	// MaxCommentLen caps a comment body in runes, after sanitization.
	MaxCommentLen = 500

	// FeedDefaultLimit and FeedMaxLimit bound the feed page size.
	FeedDefaultLimit = 12
	FeedMaxLimit     = 48
)

// FeedSort selects the ordering of the public feed.
type FeedSort string

const (
	// SortLatest orders by creation time, newest first. The default.
	SortLatest FeedSort = "latest"

	// SortLikes orders by like count, ties broken by recency.
	SortLikes FeedSort = "likes"
)

// ParseFeedSort maps a query-string value onto a [FeedSort], falling back to
// [SortLatest] for anything unrecognized.
func ParseFeedSort(raw string) FeedSort {
	if FeedSort(raw) == SortLikes {
		return SortLikes
	}
	return SortLatest
}

// Comment is a single entry in a component's discussion thread.
type Comment struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	UserID      string    `json:"user_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`

	// Denormalized author fields, joined at read time.
	AuthorHandle      string `json:"author_handle"`
	AuthorDisplayName string `json:"author_display_name"`
}

// FeedItem is a public component as the feed presents it: the component
// fields that matter for browsing plus the author's identity.
type FeedItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	HTML          string    `json:"html"`
	CSS           string    `json:"css"`
	JS            string    `json:"js"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`

	AuthorHandle      string `json:"author_handle"`
	AuthorDisplayName string `json:"author_display_name"`
}

// ── Sanitization ─────────────────────────────────────────────────────────────

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeComment strips HTML tags and collapses surrounding whitespace.
// Comment bodies are plain text; markup is removed rather than escaped so
// that the length limit applies to what readers actually see.
func SanitizeComment(body string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(body, ""))
}

// # JSON Field Names

const (
	FieldBody = "body"
	FieldSort = "sort"
)
