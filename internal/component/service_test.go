// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package component_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlyhq/craftly/internal/component"
	"github.com/craftlyhq/craftly/internal/credits"
	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
)

// fakeRepository is an in-memory component Repository.
type fakeRepository struct {
	components map[string]*component.Component
	// social rows, tracked to verify the cascade
	likes    map[string][]string // componentID -> userIDs
	comments map[string][]string // componentID -> commentIDs
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		components: make(map[string]*component.Component),
		likes:      make(map[string][]string),
		comments:   make(map[string][]string),
	}
}

func (f *fakeRepository) Create(_ context.Context, c *component.Component) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.components[c.ID] = c
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*component.Component, error) {
	if c, ok := f.components[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("Component")
}

func (f *fakeRepository) ListByOwner(_ context.Context, userID string, limit, offset int) ([]*component.Component, int, error) {
	var owned []*component.Component
	for _, c := range f.components {
		if c.UserID == userID {
			owned = append(owned, c)
		}
	}
	return owned, len(owned), nil
}

func (f *fakeRepository) Update(_ context.Context, c *component.Component) error {
	stored, ok := f.components[c.ID]
	if !ok {
		return apperr.NotFound("Component")
	}
	stored.Title = c.Title
	stored.Prompt = c.Prompt
	stored.HTML = c.HTML
	stored.CSS = c.CSS
	stored.JS = c.JS
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepository) SetVisibility(_ context.Context, id string, visibility component.Visibility, description string, expiresAt *time.Time) error {
	stored, ok := f.components[id]
	if !ok {
		return apperr.NotFound("Component")
	}
	stored.Visibility = visibility
	stored.Description = description
	stored.ExpiresAt = expiresAt
	return nil
}

func (f *fakeRepository) SetDeployURL(_ context.Context, id, deployURL string) error {
	if stored, ok := f.components[id]; ok {
		stored.DeployURL = deployURL
	}
	return nil
}

func (f *fakeRepository) DeleteCascade(_ context.Context, id string) error {
	delete(f.components, id)
	delete(f.likes, id)
	delete(f.comments, id)
	return nil
}

func (f *fakeRepository) PurgeExpired(_ context.Context) (int64, error) {
	var removed int64
	for id, c := range f.components {
		if c.Visibility == component.VisibilityPrivate && c.ExpiresAt != nil && !c.ExpiresAt.After(time.Now()) {
			_ = f.DeleteCascade(context.Background(), id)
			removed++
		}
	}
	return removed, nil
}

// fakeMeter records spends and optionally rejects everything with a 402.
type fakeMeter struct {
	spends    []credits.Action
	exhausted bool
}

func (f *fakeMeter) Spend(_ context.Context, _ string, action credits.Action) error {
	if f.exhausted {
		return apperr.QuotaExceeded(0)
	}
	f.spends = append(f.spends, action)
	return nil
}

func newTestService() (*component.Service, *fakeRepository, *fakeMeter) {
	repo := newFakeRepository()
	meter := &fakeMeter{}
	return component.NewService(repo, meter, metrics.NopRecorder{}), repo, meter
}

func seedComponent(t *testing.T, service *component.Service, userID string) *component.Component {
	t.Helper()
	created, err := service.Create(context.Background(), userID, component.CreateInput{
		Title:  "Pricing table",
		Prompt: "a pricing table with three tiers",
		HTML:   "<section>...</section>",
	})
	require.NoError(t, err)
	return created
}

/*
TestService_Create verifies quota charging and the private-by-default state.
*/
func TestService_Create(t *testing.T) {
	service, _, meter := newTestService()

	created := seedComponent(t, service, "owner-1")

	// 1. Generation was billed
	assert.Equal(t, []credits.Action{credits.ActionGenerate}, meter.spends)

	// 2. New components start private with a running countdown
	assert.Equal(t, component.VisibilityPrivate, created.Visibility)
	require.NotNil(t, created.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(component.PrivateRetention), *created.ExpiresAt, time.Minute)
}

/*
TestService_Create_WithResearch verifies the research pass is billed separately.
*/
func TestService_Create_WithResearch(t *testing.T) {
	service, _, meter := newTestService()

	_, err := service.Create(context.Background(), "owner-1", component.CreateInput{
		Title: "Landing page", Prompt: "hero with CTA", HTML: "<main/>", WithResearch: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []credits.Action{credits.ActionResearch, credits.ActionGenerate}, meter.spends)
}

/*
TestService_Create_QuotaExhausted verifies nothing is stored on a 402.
*/
func TestService_Create_QuotaExhausted(t *testing.T) {
	service, repo, meter := newTestService()
	meter.exhausted = true

	_, err := service.Create(context.Background(), "owner-1", component.CreateInput{
		Title: "x", Prompt: "y", HTML: "<div/>",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 402, appError.HTTPStatus)
	assert.Empty(t, repo.components)
}

/*
TestService_Publish verifies the publication gates and the atomic state flip.
*/
func TestService_Publish(t *testing.T) {
	service, repo, _ := newTestService()
	created := seedComponent(t, service, "owner-1")

	// 1. Too-short description is rejected without mutating state
	_, err := service.Publish(context.Background(), "owner-1", created.ID, "short")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
	assert.Equal(t, component.VisibilityPrivate, repo.components[created.ID].Visibility)
	assert.NotNil(t, repo.components[created.ID].ExpiresAt)

	// 2. Whitespace does not count toward the minimum
	_, err = service.Publish(context.Background(), "owner-1", created.ID, "   short    ")
	assert.Error(t, err)

	// 3. Exactly the minimum length passes, clears expiry, goes public
	published, err := service.Publish(context.Background(), "owner-1", created.ID, "ten chars!")
	require.NoError(t, err)
	assert.Equal(t, component.VisibilityPublic, published.Visibility)
	assert.Nil(t, published.ExpiresAt)
	assert.Nil(t, repo.components[created.ID].ExpiresAt)
	assert.Equal(t, "ten chars!", repo.components[created.ID].Description)
}

/*
TestService_Publish_EmptyOutput verifies that a component with no generated
HTML can never be published.
*/
func TestService_Publish_EmptyOutput(t *testing.T) {
	service, repo, _ := newTestService()
	created := seedComponent(t, service, "owner-1")
	repo.components[created.ID].HTML = "   "

	_, err := service.Publish(context.Background(), "owner-1", created.ID, strings.Repeat("long enough description", 1))

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

/*
TestService_Unpublish verifies the return to private restarts the countdown.
*/
func TestService_Unpublish(t *testing.T) {
	service, repo, _ := newTestService()
	created := seedComponent(t, service, "owner-1")

	_, err := service.Publish(context.Background(), "owner-1", created.ID, "a perfectly fine description")
	require.NoError(t, err)

	unpublished, err := service.Unpublish(context.Background(), "owner-1", created.ID)
	require.NoError(t, err)

	assert.Equal(t, component.VisibilityPrivate, unpublished.Visibility)
	require.NotNil(t, unpublished.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(component.PrivateRetention), *unpublished.ExpiresAt, time.Minute)

	// The description survives the round trip for the next publish.
	assert.Equal(t, "a perfectly fine description", repo.components[created.ID].Description)
}

/*
TestService_OwnershipChecks verifies 403 for foreign mutation and 404 for
foreign private reads.
*/
func TestService_OwnershipChecks(t *testing.T) {
	service, _, _ := newTestService()
	created := seedComponent(t, service, "owner-1")

	// 1. Foreign mutation is forbidden
	_, err := service.Publish(context.Background(), "intruder", created.ID, "a perfectly fine description")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	// 2. Foreign private read hides existence
	_, err = service.Get(context.Background(), "intruder", created.ID)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	// 3. Once public, foreign reads succeed
	_, err = service.Publish(context.Background(), "owner-1", created.ID, "a perfectly fine description")
	require.NoError(t, err)
	fetched, err := service.Get(context.Background(), "intruder", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

/*
TestService_Delete verifies the cascade and the ownership gate.
*/
func TestService_Delete(t *testing.T) {
	service, repo, _ := newTestService()
	created := seedComponent(t, service, "owner-1")
	repo.likes[created.ID] = []string{"fan-1", "fan-2"}
	repo.comments[created.ID] = []string{"comment-1"}

	// 1. Foreign delete is forbidden
	err := service.Delete(context.Background(), "intruder", created.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	// 2. Owner delete removes component and social rows together
	require.NoError(t, service.Delete(context.Background(), "owner-1", created.ID))
	assert.Empty(t, repo.components)
	assert.Empty(t, repo.likes)
	assert.Empty(t, repo.comments)
}

/*
TestService_Deploy verifies the deployment charge and URL recording.
*/
func TestService_Deploy(t *testing.T) {
	service, repo, meter := newTestService()
	created := seedComponent(t, service, "owner-1")
	meter.spends = nil

	deployURL, err := service.Deploy(context.Background(), "owner-1", created.ID)

	require.NoError(t, err)
	assert.Equal(t, []credits.Action{credits.ActionDeploy}, meter.spends)
	assert.Contains(t, deployURL, created.ID)
	assert.Equal(t, deployURL, repo.components[created.ID].DeployURL)
}

/*
TestRepository_PurgeExpired verifies the sweep only touches lapsed private rows.
*/
func TestRepository_PurgeExpired(t *testing.T) {
	service, repo, _ := newTestService()

	lapsed := seedComponent(t, service, "owner-1")
	fresh := seedComponent(t, service, "owner-1")
	published := seedComponent(t, service, "owner-1")
	_, err := service.Publish(context.Background(), "owner-1", published.ID, "a perfectly fine description")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	repo.components[lapsed.ID].ExpiresAt = &past

	removed, err := repo.PurgeExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.NotContains(t, repo.components, lapsed.ID)
	assert.Contains(t, repo.components, fresh.ID)
	assert.Contains(t, repo.components, published.ID)
}
