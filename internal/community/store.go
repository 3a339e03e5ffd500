// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package community

import (
	"context"
	"errors"
)

// Sentinel states for the like toggle. Both are expected outcomes, not
// failures; the service folds them into the toggle semantics.
var (
	ErrAlreadyLiked = errors.New("component already liked by this user")
	ErrNotLiked     = errors.New("component not liked by this user")
)

// FeedRepository defines the read contract for the public feed.
//
// # Architecture
//
// Implementations live alongside the other pgx stores — the interface lives
// here because the service layer (the consumer) defines what it needs.
type FeedRepository interface {
	// ListPublic returns a page of public components joined with their
	// author, plus the total public count.
	//
	// Returns:
	//   - []*FeedItem: The page of feed entries in the requested order.
	//   - int: Total count of public components, for pagination.
	//   - error: Database or connection errors.
	ListPublic(ctx context.Context, sort FeedSort, limit, offset int) ([]*FeedItem, int, error)

	// FindPublicByID returns a single public component with its author.
	//
	// It returns ErrNotFound when the component is absent OR private —
	// the feed never confirms the existence of private work.
	FindPublicByID(ctx context.Context, componentID string) (*FeedItem, error)
}

// LikeRepository defines the data access contract for component likes.
type LikeRepository interface {
	// Like records a like and bumps the component's counter in one
	// transaction. It returns ErrAlreadyLiked when this user already
	// likes the component, leaving the counter untouched.
	Like(ctx context.Context, userID, componentID string) error

	// Unlike removes a like and decrements the counter in one
	// transaction. Removing a like that does not exist is a no-op and
	// returns ErrNotLiked.
	Unlike(ctx context.Context, userID, componentID string) error
}

// CommentRepository defines the data access contract for comment threads.
type CommentRepository interface {
	// Create persists a new comment. The caller sets ID and ComponentID.
	Create(ctx context.Context, c *Comment) error

	// FindByID returns the comment with the given ID, author joined.
	FindByID(ctx context.Context, id string) (*Comment, error)

	// ListByComponent returns a component's comments oldest-first with
	// the total count.
	ListByComponent(ctx context.Context, componentID string, limit, offset int) ([]*Comment, int, error)

	// Delete removes a comment row. Authorization happens in the service.
	Delete(ctx context.Context, id string) error
}
