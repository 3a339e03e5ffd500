// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlyhq/craftly/internal/platform/dberr"
)

// ── Feed ─────────────────────────────────────────────────────────────────────

// PostgresFeedRepository reads the public feed with pgx.
type PostgresFeedRepository struct {
	pool *pgxpool.Pool
}

// NewFeedRepository builds the feed reader on a shared pool.
func NewFeedRepository(pool *pgxpool.Pool) *PostgresFeedRepository {
	return &PostgresFeedRepository{pool: pool}
}

const feedColumns = `c.id, c.title, c.description, c.html, c.css, c.js,
		c.likescount, c.commentscount, c.createdat, a.handle, a.displayname`

const feedFrom = `FROM studio.component c
		JOIN users.account a ON a.id = c.userid
		WHERE c.visibility = 'public'`

// ListPublic returns a page of public components with their authors.
func (repository *PostgresFeedRepository) ListPublic(ctx context.Context, sort FeedSort, limit, offset int) ([]*FeedItem, int, error) {
	orderBy := "c.createdat DESC"
	if sort == SortLikes {
		orderBy = "c.likescount DESC, c.createdat DESC"
	}

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $1 OFFSET $2`, feedColumns, feedFrom, orderBy)

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "feed_list")
	}
	defer rows.Close()

	var items []*FeedItem
	for rows.Next() {
		item := &FeedItem{}
		err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.HTML, &item.CSS, &item.JS,
			&item.LikesCount, &item.CommentsCount, &item.CreatedAt, &item.AuthorHandle, &item.AuthorDisplayName)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "feed_scan")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "feed_rows")
	}

	var total int
	countQuery := `SELECT COUNT(*) ` + feedFrom
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "feed_count")
	}

	return items, total, nil
}

// FindPublicByID returns one public component with its author, or NotFound.
func (repository *PostgresFeedRepository) FindPublicByID(ctx context.Context, componentID string) (*FeedItem, error) {
	query := fmt.Sprintf(`SELECT %s %s AND c.id = $1`, feedColumns, feedFrom)

	item := &FeedItem{}
	err := repository.pool.QueryRow(ctx, query, componentID).Scan(
		&item.ID, &item.Title, &item.Description, &item.HTML, &item.CSS, &item.JS,
		&item.LikesCount, &item.CommentsCount, &item.CreatedAt, &item.AuthorHandle, &item.AuthorDisplayName)
	if err != nil {
		return nil, dberr.Wrap(err, "feed_find")
	}
	return item, nil
}

// ── Likes ────────────────────────────────────────────────────────────────────

// PostgresLikeRepository persists likes with pgx.
//
// # Concurrency
//
// The UNIQUE (userid, componentid) constraint on social.componentlike is the
// arbiter: a duplicate press surfaces as a unique violation rather than a
// read-then-write race, so two clients hammering the button converge on a
// consistent counter.
type PostgresLikeRepository struct {
	pool *pgxpool.Pool
}

// NewLikeRepository builds the like store on a shared pool.
func NewLikeRepository(pool *pgxpool.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Like inserts the like row and bumps the counter in one transaction.
func (repository *PostgresLikeRepository) Like(ctx context.Context, userID, componentID string) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "like_begin")
	}
	defer tx.Rollback(ctx)

	insert := `INSERT INTO social.componentlike (userid, componentid, createdat)
		VALUES ($1, $2, NOW())`
	if _, err := tx.Exec(ctx, insert, userID, componentID); err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrAlreadyLiked
		}
		return dberr.Wrap(err, "like_insert")
	}

	bump := `UPDATE studio.component SET likescount = likescount + 1 WHERE id = $1`
	if _, err := tx.Exec(ctx, bump, componentID); err != nil {
		return dberr.Wrap(err, "like_count_bump")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "like_commit")
	}
	return nil
}

// Unlike deletes the like row and decrements the counter in one transaction.
func (repository *PostgresLikeRepository) Unlike(ctx context.Context, userID, componentID string) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "unlike_begin")
	}
	defer tx.Rollback(ctx)

	remove := `DELETE FROM social.componentlike WHERE userid = $1 AND componentid = $2`
	tag, err := tx.Exec(ctx, remove, userID, componentID)
	if err != nil {
		return dberr.Wrap(err, "unlike_delete")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotLiked
	}

	// GREATEST guards the counter against drift below zero.
	drop := `UPDATE studio.component SET likescount = GREATEST(likescount - 1, 0) WHERE id = $1`
	if _, err := tx.Exec(ctx, drop, componentID); err != nil {
		return dberr.Wrap(err, "unlike_count_drop")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "unlike_commit")
	}
	return nil
}

// ── Comments ─────────────────────────────────────────────────────────────────

// PostgresCommentRepository persists comment threads with pgx.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds the comment store on a shared pool.
func NewCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `m.id, m.componentid, m.userid, m.body, m.createdat,
		a.handle, a.displayname`

// Create persists a new comment row and bumps the component's comment
// counter in the same transaction.
func (repository *PostgresCommentRepository) Create(ctx context.Context, c *Comment) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "comment_begin")
	}
	defer tx.Rollback(ctx)

	insert := `INSERT INTO social.comment (id, componentid, userid, body, createdat)
		VALUES ($1, $2, $3, $4, NOW())`
	if _, err := tx.Exec(ctx, insert, c.ID, c.ComponentID, c.UserID, c.Body); err != nil {
		return dberr.Wrap(err, "comment_create")
	}

	bump := `UPDATE studio.component SET commentscount = commentscount + 1 WHERE id = $1`
	if _, err := tx.Exec(ctx, bump, c.ComponentID); err != nil {
		return dberr.Wrap(err, "comment_count_bump")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "comment_commit")
	}
	return nil
}

// FindByID returns a single comment with its author joined.
func (repository *PostgresCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM social.comment m
		JOIN users.account a ON a.id = m.userid
		WHERE m.id = $1`, commentColumns)

	comment := &Comment{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&comment.ID, &comment.ComponentID, &comment.UserID, &comment.Body, &comment.CreatedAt,
		&comment.AuthorHandle, &comment.AuthorDisplayName)
	if err != nil {
		return nil, dberr.Wrap(err, "comment_find")
	}
	return comment, nil
}

// ListByComponent returns a component's comments oldest-first.
func (repository *PostgresCommentRepository) ListByComponent(ctx context.Context, componentID string, limit, offset int) ([]*Comment, int, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM social.comment m
		JOIN users.account a ON a.id = m.userid
		WHERE m.componentid = $1
		ORDER BY m.createdat ASC
		LIMIT $2 OFFSET $3`, commentColumns)

	rows, err := repository.pool.Query(ctx, query, componentID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "comment_list")
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		comment := &Comment{}
		err := rows.Scan(&comment.ID, &comment.ComponentID, &comment.UserID, &comment.Body, &comment.CreatedAt,
			&comment.AuthorHandle, &comment.AuthorDisplayName)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "comment_scan")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "comment_rows")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM social.comment WHERE componentid = $1`
	if err := repository.pool.QueryRow(ctx, countQuery, componentID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "comment_count")
	}

	return comments, total, nil
}

// Delete removes a comment row and decrements the component's counter in
// the same transaction. Deleting an already-gone comment is a no-op and
// leaves the counter alone.
func (repository *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "comment_delete_begin")
	}
	defer tx.Rollback(ctx)

	remove := `DELETE FROM social.comment WHERE id = $1 RETURNING componentid`
	var componentID string
	err = tx.QueryRow(ctx, remove, id).Scan(&componentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return dberr.Wrap(err, "comment_delete")
	}

	// GREATEST guards the counter against drift below zero.
	drop := `UPDATE studio.component SET commentscount = GREATEST(commentscount - 1, 0) WHERE id = $1`
	if _, err := tx.Exec(ctx, drop, componentID); err != nil {
		return dberr.Wrap(err, "comment_count_drop")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "comment_delete_commit")
	}
	return nil
}
