// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package community_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlyhq/craftly/internal/community"
	"github.com/craftlyhq/craftly/internal/component"
	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
	"github.com/craftlyhq/craftly/pkg/uuid"
)

// fakeStore backs all four repository interfaces with maps, mirroring the
// transactional contract of the pgx stores: a like and its counter bump
// land (or fail) together.
type fakeStore struct {
	components map[string]*component.Component
	likes      map[string]bool // userID|componentID
	comments   map[string]*community.Comment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		components: make(map[string]*component.Component),
		likes:      make(map[string]bool),
		comments:   make(map[string]*community.Comment),
	}
}

func likeKey(userID, componentID string) string { return userID + "|" + componentID }

func (f *fakeStore) FindByID(_ context.Context, id string) (*component.Component, error) {
	if c, ok := f.components[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("Component")
}

func (f *fakeStore) ListPublic(_ context.Context, sort community.FeedSort, limit, offset int) ([]*community.FeedItem, int, error) {
	var items []*community.FeedItem
	for _, c := range f.components {
		if c.Visibility == component.VisibilityPublic {
			items = append(items, &community.FeedItem{ID: c.ID, Title: c.Title, LikesCount: c.LikesCount})
		}
	}
	return items, len(items), nil
}

func (f *fakeStore) FindPublicByID(_ context.Context, componentID string) (*community.FeedItem, error) {
	c, ok := f.components[componentID]
	if !ok || c.Visibility != component.VisibilityPublic {
		return nil, apperr.NotFound("Component")
	}
	return &community.FeedItem{ID: c.ID, Title: c.Title, LikesCount: c.LikesCount}, nil
}

func (f *fakeStore) Like(_ context.Context, userID, componentID string) error {
	key := likeKey(userID, componentID)
	if f.likes[key] {
		return community.ErrAlreadyLiked
	}
	f.likes[key] = true
	f.components[componentID].LikesCount++
	return nil
}

func (f *fakeStore) Unlike(_ context.Context, userID, componentID string) error {
	key := likeKey(userID, componentID)
	if !f.likes[key] {
		return community.ErrNotLiked
	}
	delete(f.likes, key)
	if f.components[componentID].LikesCount > 0 {
		f.components[componentID].LikesCount--
	}
	return nil
}

func (f *fakeStore) Create(_ context.Context, c *community.Comment) error {
	c.CreatedAt = time.Now()
	stored := *c
	f.comments[c.ID] = &stored
	f.components[c.ComponentID].CommentsCount++
	return nil
}

func (f *fakeStore) FindByID2(_ context.Context, id string) (*community.Comment, error) {
	if c, ok := f.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("Comment")
}

func (f *fakeStore) ListByComponent(_ context.Context, componentID string, limit, offset int) ([]*community.Comment, int, error) {
	var comments []*community.Comment
	for _, c := range f.comments {
		if c.ComponentID == componentID {
			comments = append(comments, c)
		}
	}
	return comments, len(comments), nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if c, ok := f.comments[id]; ok {
		if counted := f.components[c.ComponentID]; counted.CommentsCount > 0 {
			counted.CommentsCount--
		}
		delete(f.comments, id)
	}
	return nil
}

// commentRepo adapts fakeStore to CommentRepository without the method name
// clash between the two FindByID signatures.
type commentRepo struct{ store *fakeStore }

func (r commentRepo) Create(ctx context.Context, c *community.Comment) error {
	return r.store.Create(ctx, c)
}
func (r commentRepo) FindByID(ctx context.Context, id string) (*community.Comment, error) {
	return r.store.FindByID2(ctx, id)
}
func (r commentRepo) ListByComponent(ctx context.Context, componentID string, limit, offset int) ([]*community.Comment, int, error) {
	return r.store.ListByComponent(ctx, componentID, limit, offset)
}
func (r commentRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

func newTestService() (*community.Service, *fakeStore) {
	store := newFakeStore()
	service := community.NewService(store, store, commentRepo{store}, store, metrics.NopRecorder{})
	return service, store
}

func seedPublic(store *fakeStore, ownerID string) *component.Component {
	c := &component.Component{
		ID:         uuid.New(),
		UserID:     ownerID,
		Title:      "Pricing table",
		Visibility: component.VisibilityPublic,
	}
	store.components[c.ID] = c
	return c
}

func seedPrivate(store *fakeStore, ownerID string) *component.Component {
	c := &component.Component{
		ID:         uuid.New(),
		UserID:     ownerID,
		Title:      "Draft",
		Visibility: component.VisibilityPrivate,
	}
	store.components[c.ID] = c
	return c
}

/*
TestService_ToggleLike verifies the press-press-press sequence.
*/
func TestService_ToggleLike(t *testing.T) {
	service, store := newTestService()
	published := seedPublic(store, "owner-1")

	// 1. First press likes
	liked, err := service.ToggleLike(context.Background(), "fan-1", published.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, store.components[published.ID].LikesCount)

	// 2. Second press unlikes
	liked, err = service.ToggleLike(context.Background(), "fan-1", published.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, store.components[published.ID].LikesCount)

	// 3. Third press likes again
	liked, err = service.ToggleLike(context.Background(), "fan-1", published.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, store.components[published.ID].LikesCount)

	// 4. A second fan is independent
	liked, err = service.ToggleLike(context.Background(), "fan-2", published.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 2, store.components[published.ID].LikesCount)
}

/*
TestService_ToggleLike_PrivateHidden verifies likes never reach private work.
*/
func TestService_ToggleLike_PrivateHidden(t *testing.T) {
	service, store := newTestService()
	draft := seedPrivate(store, "owner-1")

	// Even the owner cannot like their own private draft.
	_, err := service.ToggleLike(context.Background(), "owner-1", draft.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	_, err = service.ToggleLike(context.Background(), "fan-1", "no-such-component")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

/*
TestService_AddComment verifies sanitization and the length gate.
*/
func TestService_AddComment(t *testing.T) {
	service, store := newTestService()
	published := seedPublic(store, "owner-1")

	// 1. Markup is stripped before storage
	comment, err := service.AddComment(context.Background(), "fan-1", published.ID,
		`  <script>alert("x")</script>love the <b>hover</b> state  `)
	require.NoError(t, err)
	assert.Equal(t, `alert("x")love the hover state`, comment.Body)
	assert.Equal(t, 1, store.components[published.ID].CommentsCount)

	// 2. A comment that is nothing but markup is empty after sanitizing
	_, err = service.AddComment(context.Background(), "fan-1", published.ID, "<br/><hr/>")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	// 3. Length is measured after sanitization
	_, err = service.AddComment(context.Background(), "fan-1", published.ID,
		strings.Repeat("a", community.MaxCommentLen+1))
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)

	padded := "<i>" + strings.Repeat("a", community.MaxCommentLen) + "</i>"
	_, err = service.AddComment(context.Background(), "fan-1", published.ID, padded)
	assert.NoError(t, err)

	// 4. Private components take no comments
	draft := seedPrivate(store, "owner-1")
	_, err = service.AddComment(context.Background(), "fan-1", draft.ID, "nice")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

/*
TestService_DeleteComment verifies author-or-component-owner authorization.
*/
func TestService_DeleteComment(t *testing.T) {
	service, store := newTestService()
	published := seedPublic(store, "owner-1")

	comment, err := service.AddComment(context.Background(), "fan-1", published.ID, "first!")
	require.NoError(t, err)

	// 1. A bystander cannot delete
	err = service.DeleteComment(context.Background(), "bystander", comment.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	// 2. The author can
	require.NoError(t, service.DeleteComment(context.Background(), "fan-1", comment.ID))
	assert.Empty(t, store.comments)
	assert.Equal(t, 0, store.components[published.ID].CommentsCount)

	// 3. The component owner can moderate someone else's comment
	comment, err = service.AddComment(context.Background(), "fan-1", published.ID, "second!")
	require.NoError(t, err)
	require.NoError(t, service.DeleteComment(context.Background(), "owner-1", comment.ID))
	assert.Empty(t, store.comments)

	// 4. Deleting a missing comment is a 404
	err = service.DeleteComment(context.Background(), "fan-1", "no-such-comment")
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

/*
TestService_Feed verifies only public components surface.
*/
func TestService_Feed(t *testing.T) {
	service, store := newTestService()
	published := seedPublic(store, "owner-1")
	seedPrivate(store, "owner-1")

	items, total, err := service.Feed(context.Background(), community.SortLatest, 12, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, published.ID, items[0].ID)
}

func TestParseFeedSort(t *testing.T) {
	assert.Equal(t, community.SortLikes, community.ParseFeedSort("likes"))
	assert.Equal(t, community.SortLatest, community.ParseFeedSort("latest"))
	assert.Equal(t, community.SortLatest, community.ParseFeedSort(""))
	assert.Equal(t, community.SortLatest, community.ParseFeedSort("bogus"))
}
