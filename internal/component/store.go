// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package component

import (
	"context"
	"time"
)

// # Component Data Access

// Repository defines the data access contract for components.
type Repository interface {

	/*
		Create persists a brand-new component.

		Parameters:
		  - context: context.Context
		  - component: *Component

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, component *Component) error

	/*
		FindByID returns the component with the given ID regardless of
		visibility. Access policy belongs to the service layer.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Component: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Component, error)

	/*
		ListByOwner returns a page of the user's own components, newest first,
		together with the total count.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Component: Page of components
		  - int: Total count for the owner
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, userID string, limit, offset int) ([]*Component, int, error)

	/*
		Update persists changes to the component's mutable content fields
		(title, prompt, sources). Lifecycle fields are not touched here.

		Parameters:
		  - context: context.Context
		  - component: *Component

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, component *Component) error

	/*
		SetVisibility atomically writes the visibility state, its description,
		and the expiry in a single statement.

		Parameters:
		  - context: context.Context
		  - id: string
		  - visibility: Visibility
		  - description: string
		  - expiresAt: *time.Time (nil clears the expiry)

		Returns:
		  - error: Persistence failures
	*/
	SetVisibility(context context.Context, id string, visibility Visibility, description string, expiresAt *time.Time) error

	/*
		SetDeployURL records the hosted URL of a deployed component.

		Parameters:
		  - context: context.Context
		  - id: string
		  - deployURL: string

		Returns:
		  - error: Persistence failures
	*/
	SetDeployURL(context context.Context, id, deployURL string) error

	/*
		DeleteCascade removes the component together with its likes and
		comments inside one transaction. Either everything goes or nothing does.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteCascade(context context.Context, id string) error

	/*
		PurgeExpired removes every private component whose expiry has passed,
		cascading likes and comments. Invoked by the background sweep.

		Parameters:
		  - context: context.Context

		Returns:
		  - int64: Number of components removed
		  - error: Persistence failures
	*/
	PurgeExpired(context context.Context) (int64, error)
}
