// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftlyhq/craftly/internal/component"
	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
	"github.com/craftlyhq/craftly/pkg/uuid"
)

// ComponentReader is the slice of the studio repository the social layer
// needs: enough to check visibility and ownership before allowing
// interaction.
type ComponentReader interface {
	FindByID(ctx context.Context, id string) (*component.Component, error)
}

// Service implements the social operations: feed browsing, like toggling,
// and comment threads.
type Service struct {
	feedRepository    FeedRepository
	likeRepository    LikeRepository
	commentRepository CommentRepository
	components        ComponentReader
	recorder          metrics.Recorder
}

// NewService wires the social service.
func NewService(
	feedRepository FeedRepository,
	likeRepository LikeRepository,
	commentRepository CommentRepository,
	components ComponentReader,
	recorder metrics.Recorder,
) *Service {
	return &Service{
		feedRepository:    feedRepository,
		likeRepository:    likeRepository,
		commentRepository: commentRepository,
		components:        components,
		recorder:          recorder,
	}
}

/*
Feed returns a page of the public feed.

Parameters:
  - sort: Ordering, latest or likes.
  - limit, offset: Page window, already clamped by the handler.
*/
func (service *Service) Feed(ctx context.Context, sort FeedSort, limit, offset int) ([]*FeedItem, int, error) {
	items, total, err := service.feedRepository.ListPublic(ctx, sort, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("community_feed_failed: %w", err)
	}
	return items, total, nil
}

// PublicComponent returns a single public component for detail pages.
// Private components yield 404 here no matter who asks.
func (service *Service) PublicComponent(ctx context.Context, componentID string) (*FeedItem, error) {
	return service.feedRepository.FindPublicByID(ctx, componentID)
}

/*
ToggleLike flips the caller's like on a public component.

Returns:
  - bool: The resulting state, true when the component is now liked.
  - error: 404 for absent or private components, storage errors otherwise.
*/
func (service *Service) ToggleLike(ctx context.Context, userID, componentID string) (bool, error) {
	if err := service.requirePublic(ctx, componentID); err != nil {
		return false, err
	}

	err := service.likeRepository.Like(ctx, userID, componentID)
	if err == nil {
		service.recorder.RecordLikeToggle(true)
		return true, nil
	}
	if !errors.Is(err, ErrAlreadyLiked) {
		return false, fmt.Errorf("community_like_failed: %w", err)
	}

	// Second press: remove the existing like.
	if err := service.likeRepository.Unlike(ctx, userID, componentID); err != nil {
		// A concurrent unlike already won; the end state is the same.
		if errors.Is(err, ErrNotLiked) {
			service.recorder.RecordLikeToggle(false)
			return false, nil
		}
		return false, fmt.Errorf("community_unlike_failed: %w", err)
	}
	service.recorder.RecordLikeToggle(false)
	return false, nil
}

/*
AddComment sanitizes and persists a comment on a public component.
*/
func (service *Service) AddComment(ctx context.Context, userID, componentID, body string) (*Comment, error) {
	if err := service.requirePublic(ctx, componentID); err != nil {
		return nil, err
	}

	sanitized := SanitizeComment(body)
	if sanitized == "" {
		return nil, apperr.ValidationError("Comment cannot be empty.",
			apperr.FieldError{Field: FieldBody, Message: "is required"})
	}
	if len([]rune(sanitized)) > MaxCommentLen {
		return nil, apperr.ValidationError("Comment is too long.",
			apperr.FieldError{Field: FieldBody, Message: fmt.Sprintf("must be at most %d characters", MaxCommentLen)})
	}

	comment := &Comment{
		ID:          uuid.New(),
		ComponentID: componentID,
		UserID:      userID,
		Body:        sanitized,
	}
	if err := service.commentRepository.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("community_comment_create_failed: %w", err)
	}

	// Re-read to pick up the joined author fields.
	return service.commentRepository.FindByID(ctx, comment.ID)
}

// Comments returns a page of a public component's thread, oldest first.
func (service *Service) Comments(ctx context.Context, componentID string, limit, offset int) ([]*Comment, int, error) {
	if err := service.requirePublic(ctx, componentID); err != nil {
		return nil, 0, err
	}
	return service.commentRepository.ListByComponent(ctx, componentID, limit, offset)
}

/*
DeleteComment removes a comment. Allowed for the comment's author and for
the owner of the component it sits on; everyone else gets 403.
*/
func (service *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := service.commentRepository.FindByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		owned, err := service.components.FindByID(ctx, comment.ComponentID)
		if err != nil {
			return fmt.Errorf("community_comment_owner_lookup_failed: %w", err)
		}
		if !owned.IsOwnedBy(userID) {
			return apperr.Forbidden("You cannot delete this comment")
		}
	}

	if err := service.commentRepository.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("community_comment_delete_failed: %w", err)
	}
	return nil
}

// requirePublic resolves the component and hides it (404) unless public.
func (service *Service) requirePublic(ctx context.Context, componentID string) error {
	found, err := service.components.FindByID(ctx, componentID)
	if err != nil {
		return err
	}
	if found.Visibility != component.VisibilityPublic {
		return apperr.NotFound("Component")
	}
	return nil
}
