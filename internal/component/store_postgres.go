// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

// PostgreSQL implementation of the component storage contract.
package component

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlyhq/craftly/internal/platform/apperr"
)

// componentColumns is the canonical column list shared by every read query.
const componentColumns = `
	id, userid, title, description, prompt, html, css, js,
	visibility, expiresat, deployurl, likescount, commentscount, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the component Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new component record into the studio.component table.

Parameters:
  - context: context.Context
  - component: *Component

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, component *Component) error {
	const query = `
		INSERT INTO studio.component (
			id, userid, title, description, prompt, html, css, js,
			visibility, expiresat, deployurl, likescount, commentscount, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	now := time.Now()
	if component.CreatedAt.IsZero() {
		component.CreatedAt = now
	}
	component.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		component.ID,
		component.UserID,
		component.Title,
		component.Description,
		component.Prompt,
		component.HTML,
		component.CSS,
		component.JS,
		component.Visibility,
		component.ExpiresAt,
		component.DeployURL,
		component.LikesCount,
		component.CommentsCount,
		component.CreatedAt,
		component.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_component_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a component by its primary key, regardless of visibility.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Component: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Component, error) {
	query := "SELECT " + componentColumns + " FROM studio.component WHERE id = $1"

	component := &Component{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&component.ID,
		&component.UserID,
		&component.Title,
		&component.Description,
		&component.Prompt,
		&component.HTML,
		&component.CSS,
		&component.JS,
		&component.Visibility,
		&component.ExpiresAt,
		&component.DeployURL,
		&component.LikesCount,
		&component.CommentsCount,
		&component.CreatedAt,
		&component.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Component")
		}
		return nil, fmt.Errorf("postgres_component_repo_find_failed: %w", err)
	}

	return component, nil
}

/*
ListByOwner returns a page of the user's components, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int
  - offset: int

Returns:
  - []*Component: Page of components
  - int: Total count for the owner
  - error: Execution errors
*/
func (repository *PostgresRepository) ListByOwner(context context.Context, userID string, limit, offset int) ([]*Component, int, error) {
	query := "SELECT " + componentColumns + `
		FROM studio.component
		WHERE userid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_component_repo_list_failed: %w", err)
	}
	defer rows.Close()

	components := make([]*Component, 0, limit)
	for rows.Next() {
		component := &Component{}
		err := rows.Scan(
			&component.ID,
			&component.UserID,
			&component.Title,
			&component.Description,
			&component.Prompt,
			&component.HTML,
			&component.CSS,
			&component.JS,
			&component.Visibility,
			&component.ExpiresAt,
			&component.DeployURL,
			&component.LikesCount,
			&component.CommentsCount,
			&component.CreatedAt,
			&component.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_component_repo_scan_failed: %w", err)
		}
		components = append(components, component)
	}

	const countQuery = "SELECT COUNT(*) FROM studio.component WHERE userid = $1"
	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_component_repo_count_failed: %w", err)
	}

	return components, total, nil
}

/*
Update persists the component's mutable content fields.

Parameters:
  - context: context.Context
  - component: *Component

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) Update(context context.Context, component *Component) error {
	const query = `
		UPDATE studio.component
		SET title = $2, prompt = $3, html = $4, css = $5, js = $6, updatedat = $7
		WHERE id = $1`

	component.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		component.ID,
		component.Title,
		component.Prompt,
		component.HTML,
		component.CSS,
		component.JS,
		component.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_component_repo_update_failed: %w", err)
	}

	return nil
}

/*
SetVisibility atomically writes visibility, description, and expiry together.

Description: One UPDATE carries all three fields so no reader can observe a
public component with an expiry or a private one without.

Parameters:
  - context: context.Context
  - id: string
  - visibility: Visibility
  - description: string
  - expiresAt: *time.Time (nil writes SQL NULL)

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) SetVisibility(context context.Context, id string, visibility Visibility, description string, expiresAt *time.Time) error {
	const query = `
		UPDATE studio.component
		SET visibility = $2, description = $3, expiresat = $4, updatedat = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, id, visibility, description, expiresAt)
	if err != nil {
		return fmt.Errorf("postgres_component_repo_set_visibility_failed: %w", err)
	}

	return nil
}

/*
SetDeployURL records the hosted URL of a deployed component.

Parameters:
  - context: context.Context
  - id: string
  - deployURL: string

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) SetDeployURL(context context.Context, id, deployURL string) error {
	const query = "UPDATE studio.component SET deployurl = $2, updatedat = NOW() WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id, deployURL)
	if err != nil {
		return fmt.Errorf("postgres_component_repo_set_deploy_url_failed: %w", err)
	}
	return nil
}

/*
DeleteCascade removes the component with its likes and comments in one transaction.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Transaction failures
*/
func (repository *PostgresRepository) DeleteCascade(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_component_repo_delete_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	// Children first, then the component row itself.
	if _, err := transaction.Exec(context, "DELETE FROM social.comment WHERE componentid = $1", id); err != nil {
		return fmt.Errorf("postgres_component_repo_delete_comments_failed: %w", err)
	}
	if _, err := transaction.Exec(context, "DELETE FROM social.componentlike WHERE componentid = $1", id); err != nil {
		return fmt.Errorf("postgres_component_repo_delete_likes_failed: %w", err)
	}
	if _, err := transaction.Exec(context, "DELETE FROM studio.component WHERE id = $1", id); err != nil {
		return fmt.Errorf("postgres_component_repo_delete_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_component_repo_delete_commit_failed: %w", err)
	}

	return nil
}

/*
PurgeExpired removes every lapsed private component, cascading social rows.

Description: Runs as one statement batch inside a transaction. Public
components are untouchable here regardless of any leftover expiresat value.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of components removed
  - error: Cleanup failures
*/
func (repository *PostgresRepository) PurgeExpired(context context.Context) (int64, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return 0, fmt.Errorf("postgres_component_repo_purge_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	const victims = `
		SELECT id FROM studio.component
		WHERE visibility = 'private' AND expiresat IS NOT NULL AND expiresat <= NOW()`

	if _, err := transaction.Exec(context,
		"DELETE FROM social.comment WHERE componentid IN ("+victims+")"); err != nil {
		return 0, fmt.Errorf("postgres_component_repo_purge_comments_failed: %w", err)
	}
	if _, err := transaction.Exec(context,
		"DELETE FROM social.componentlike WHERE componentid IN ("+victims+")"); err != nil {
		return 0, fmt.Errorf("postgres_component_repo_purge_likes_failed: %w", err)
	}

	tag, err := transaction.Exec(context, `
		DELETE FROM studio.component
		WHERE visibility = 'private' AND expiresat IS NOT NULL AND expiresat <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("postgres_component_repo_purge_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return 0, fmt.Errorf("postgres_component_repo_purge_commit_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}
