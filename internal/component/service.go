// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package component

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/craftlyhq/craftly/internal/credits"
	"github.com/craftlyhq/craftly/internal/platform/apperr"
	"github.com/craftlyhq/craftly/internal/platform/metrics"
	"github.com/craftlyhq/craftly/pkg/uuid"
)

// # Contracts & Types

// SpendingMeter defines the quota contract the component lifecycle depends on.
//
// Billable actions are charged BEFORE the work happens: a user whose balance
// cannot cover the action gets a 402 and no component is created.
type SpendingMeter interface {
	Spend(context context.Context, userID string, action credits.Action) error
}

// Service implements the component lifecycle use cases.
type Service struct {
	repository Repository
	meter      SpendingMeter
	recorder   metrics.Recorder
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repository Repository, meter SpendingMeter, recorder metrics.Recorder) *Service {
	return &Service{
		repository: repository,
		meter:      meter,
		recorder:   recorder,
	}
}

// # Creation Flow

// CreateInput holds the data required to persist a generated component.
type CreateInput struct {
	Title        string
	Prompt       string
	HTML         string
	CSS          string
	JS           string
	WithResearch bool
}

/*
Create charges the generation cost and persists a new private component.

Description: The quota check is the first side effect: an exhausted balance
aborts before anything is stored. New components always start private with a
running retention countdown.

Parameters:
  - context: context.Context
  - userID: string
  - input: CreateInput

Returns:
  - *Component: Created entity
  - err: apperr.QuotaExceeded (402), validation, or storage errors
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Component, error) {

	// Charge the research pass first when requested; it runs before generation.
	if input.WithResearch {
		if err := service.meter.Spend(context, userID, credits.ActionResearch); err != nil {
			return nil, err
		}
	}

	// Charge the generation itself. Quota errors pass through untouched so the
	// client sees the 402 with its remaining balance.
	if err := service.meter.Spend(context, userID, credits.ActionGenerate); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(PrivateRetention)
	component := &Component{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      input.Title,
		Prompt:     input.Prompt,
		HTML:       input.HTML,
		CSS:        input.CSS,
		JS:         input.JS,
		Visibility: VisibilityPrivate,
		ExpiresAt:  &expiresAt,
	}

	if err := service.repository.Create(context, component); err != nil {
		return nil, fmt.Errorf("component_service_create_failed: %w", err)
	}

	return component, nil
}

// # Retrieval

/*
Get returns a component the caller is allowed to see.

Description: Owners see their own components in any state. Everyone else can
only see public ones; a foreign private component answers 404, not 403, so
its existence is not leaked.

Parameters:
  - context: context.Context
  - userID: string (caller)
  - id: string

Returns:
  - *Component: Hydrated entity
  - err: NotFound or storage failures
*/
func (service *Service) Get(context context.Context, userID, id string) (*Component, error) {
	component, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if !component.IsOwnedBy(userID) && component.Visibility != VisibilityPublic {
		return nil, apperr.NotFound("Component")
	}

	return component, nil
}

/*
ListOwned returns a page of the caller's own components, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int
  - offset: int

Returns:
  - []*Component: Page of components
  - int: Total count
  - err: Storage failures
*/
func (service *Service) ListOwned(context context.Context, userID string, limit, offset int) ([]*Component, int, error) {
	return service.repository.ListByOwner(context, userID, limit, offset)
}

// # Mutation

// UpdateInput holds the mutable content fields of a component.
type UpdateInput struct {
	Title  string
	Prompt string
	HTML   string
	CSS    string
	JS     string
}

/*
Update replaces the component's content fields.

Description: Only the owner may mutate. Visibility and expiry are lifecycle
state and are deliberately not updatable here.

Parameters:
  - context: context.Context
  - userID: string (caller)
  - id: string
  - input: UpdateInput

Returns:
  - *Component: Updated entity
  - err: NotFound, Forbidden, or storage failures
*/
func (service *Service) Update(context context.Context, userID, id string, input UpdateInput) (*Component, error) {
	component, err := service.loadOwned(context, userID, id)
	if err != nil {
		return nil, err
	}

	component.Title = input.Title
	component.Prompt = input.Prompt
	component.HTML = input.HTML
	component.CSS = input.CSS
	component.JS = input.JS

	if err := service.repository.Update(context, component); err != nil {
		return nil, fmt.Errorf("component_service_update_failed: %w", err)
	}

	return component, nil
}

/*
Delete removes a component and all of its social artifacts.

Description: The cascade (likes, comments, component) runs inside one storage
transaction so a crash can never strand orphaned engagement rows.

Parameters:
  - context: context.Context
  - userID: string (caller)
  - id: string

Returns:
  - err: NotFound, Forbidden, or storage failures
*/
func (service *Service) Delete(context context.Context, userID, id string) error {
	if _, err := service.loadOwned(context, userID, id); err != nil {
		return err
	}

	if err := service.repository.DeleteCascade(context, id); err != nil {
		return fmt.Errorf("component_service_delete_failed: %w", err)
	}

	return nil
}

// # Publication Lifecycle

/*
Publish transitions a component to public.

Description: Publication has two gates: a trimmed description of at least ten
characters and non-empty generated HTML. On success the visibility flips to
public and the expiry clears in the same statement, making the component
permanent until explicitly unpublished. Republishing an already public
component just refreshes its description.

Parameters:
  - context: context.Context
  - userID: string (caller)
  - id: string
  - description: string

Returns:
  - *Component: Updated entity
  - err: Validation, NotFound, Forbidden, or storage failures
*/
func (service *Service) Publish(context context.Context, userID, id, description string) (*Component, error) {
	component, err := service.loadOwned(context, userID, id)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(description)
	if len([]rune(trimmed)) < MinPublishDescriptionLen {
		return nil, apperr.ValidationError(
			"Description is too short to publish",
			apperr.FieldError{
				Field:   FieldDescription,
				Message: fmt.Sprintf("must be at least %d characters", MinPublishDescriptionLen),
			},
		)
	}

	if strings.TrimSpace(component.HTML) == "" {
		return nil, apperr.ValidationError(
			"Component has no generated output to publish",
			apperr.FieldError{Field: FieldHTML, Message: "must not be empty"},
		)
	}

	wasPrivate := component.Visibility == VisibilityPrivate

	// Visibility and expiry flip together: public never carries an expiry.
	if err := service.repository.SetVisibility(context, id, VisibilityPublic, trimmed, nil); err != nil {
		return nil, fmt.Errorf("component_service_publish_failed: %w", err)
	}

	if wasPrivate {
		service.recorder.RecordPublishTransition(true)
	}

	component.Visibility = VisibilityPublic
	component.Description = trimmed
	component.ExpiresAt = nil
	return component, nil
}

/*
Unpublish transitions a component back to private.

Description: The retention countdown restarts from now; the component will be
swept once it lapses unless it is republished first. Unpublishing an already
private component only refreshes its countdown.

Parameters:
  - context: context.Context
  - userID: string (caller)
  - id: string

Returns:
  - *Component: Updated entity
  - err: NotFound, Forbidden, or storage failures
*/
func (service *Service) Unpublish(context context.Context, userID, id string) (*Component, error) {
	component, err := service.loadOwned(context, userID, id)
	if err != nil {
		return nil, err
	}

	wasPublic := component.Visibility == VisibilityPublic

	expiresAt := time.Now().Add(PrivateRetention)
	if err := service.repository.SetVisibility(context, id, VisibilityPrivate, component.Description, &expiresAt); err != nil {
		return nil, fmt.Errorf("component_service_unpublish_failed: %w", err)
	}

	if wasPublic {
		service.recorder.RecordPublishTransition(false)
	}

	component.Visibility = VisibilityPrivate
	component.ExpiresAt = &expiresAt
	return component, nil
}

// # Deployment

/*
Deploy charges the deployment cost and records the hosted URL.

Parameters:
  - context: context.Context
  - userID: string (caller)
  - id: string

Returns:
  - string: The hosted URL
  - err: apperr.QuotaExceeded (402), NotFound, Forbidden, or storage failures
*/
func (service *Service) Deploy(context context.Context, userID, id string) (string, error) {
	component, err := service.loadOwned(context, userID, id)
	if err != nil {
		return "", err
	}

	if err := service.meter.Spend(context, userID, credits.ActionDeploy); err != nil {
		return "", err
	}

	deployURL := fmt.Sprintf("https://craftly.app/c/%s", component.ID)
	if err := service.repository.SetDeployURL(context, id, deployURL); err != nil {
		return "", fmt.Errorf("component_service_deploy_failed: %w", err)
	}

	return deployURL, nil
}

// loadOwned fetches a component and enforces that the caller owns it.
// A missing component is 404; someone else's is 403.
func (service *Service) loadOwned(context context.Context, userID, id string) (*Component, error) {
	component, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if !component.IsOwnedBy(userID) {
		return nil, apperr.Forbidden("You do not own this component")
	}

	return component, nil
}
