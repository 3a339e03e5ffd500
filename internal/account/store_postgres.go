// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

package account

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlyhq/craftly/internal/platform/dberr"
)

// PostgresProfileRepository reads and writes profiles with pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository builds the profile store on a shared pool.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Profile aggregates come from correlated subqueries instead of a GROUP BY
// so that an account with zero public components still yields a row.
const profileQuery = `SELECT a.id, a.handle, a.displayname, a.avatarurl, a.bio, a.createdat,
		(SELECT COUNT(*) FROM studio.component c
			WHERE c.userid = a.id AND c.visibility = 'public'),
		(SELECT COALESCE(SUM(c.likescount), 0) FROM studio.component c
			WHERE c.userid = a.id AND c.visibility = 'public')
	FROM users.account a`

// FindByHandle returns the profile owning a handle.
func (repository *PostgresProfileRepository) FindByHandle(ctx context.Context, userHandle string) (*Profile, error) {
	return repository.scanOne(ctx, profileQuery+` WHERE a.handle = $1`, userHandle)
}

// FindByUserID returns the profile for an account ID.
func (repository *PostgresProfileRepository) FindByUserID(ctx context.Context, userID string) (*Profile, error) {
	return repository.scanOne(ctx, profileQuery+` WHERE a.id = $1`, userID)
}

// HandleTaken reports whether another account already owns the handle.
func (repository *PostgresProfileRepository) HandleTaken(ctx context.Context, userHandle, excludeUserID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users.account WHERE handle = $1 AND id <> $2)`

	var taken bool
	if err := repository.pool.QueryRow(ctx, query, userHandle, excludeUserID).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "profile_handle_check")
	}
	return taken, nil
}

// Update persists the editable profile fields.
func (repository *PostgresProfileRepository) Update(ctx context.Context, userID, userHandle, displayName, avatarURL, bio string) error {
	query := `UPDATE users.account
		SET handle = $2, displayname = $3, avatarurl = $4, bio = $5, updatedat = NOW()
		WHERE id = $1`

	if _, err := repository.pool.Exec(ctx, query, userID, userHandle, displayName, avatarURL, bio); err != nil {
		return dberr.Wrap(err, "profile_update")
	}
	return nil
}

func (repository *PostgresProfileRepository) scanOne(ctx context.Context, query string, argument any) (*Profile, error) {
	profile := &Profile{}
	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&profile.UserID, &profile.Handle, &profile.DisplayName, &profile.AvatarURL, &profile.Bio,
		&profile.JoinedAt, &profile.PublicCount, &profile.LikesReceived)
	if err != nil {
		return nil, dberr.Wrap(err, "profile_find")
	}
	return profile, nil
}
