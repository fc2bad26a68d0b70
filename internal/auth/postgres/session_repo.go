// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/store"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// The sessions table holds at most one row per user.
type SessionRepository struct {
	db store.Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db store.Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ auth.SessionRepository = (*SessionRepository)(nil)

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	q := store.FromContext(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO sessions (id, user_id, access_token, refresh_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.AccessToken,
		session.RefreshHash,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("SESSION_EXISTS").
			With("user_id", session.UserID.String()).
			Wrap(auth.ErrConflict)
	}
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByUser retrieves the session for a user.
func (r *SessionRepository) GetByUser(ctx context.Context, userID ulid.ULID) (*auth.Session, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, `
		SELECT id, user_id, access_token, refresh_hash, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
	`, userID.String())

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("user_id", userID.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return session, nil
}

// Replace overwrites the stored token pair for the user's session.
func (r *SessionRepository) Replace(ctx context.Context, session *auth.Session) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `
		UPDATE sessions SET access_token = $2, refresh_hash = $3, updated_at = $4
		WHERE user_id = $1
	`,
		session.UserID.String(),
		session.AccessToken,
		session.RefreshHash,
		session.UpdatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_REPLACE_FAILED").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("user_id", session.UserID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes the session for a user. Deleting an absent session is
// not an error; the bool reports whether a row went away.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) (bool, error) {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID.String())
	if err != nil {
		return false, oops.Code("SESSION_DELETE_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected() > 0, nil
}

// scanSession scans a single row into a Session.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr     string
		userIDStr string
		createdAt time.Time
		updatedAt time.Time
	)
	session := &auth.Session{}

	err := row.Scan(&idStr, &userIDStr, &session.AccessToken, &session.RefreshHash, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	session.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse session id").With("id", idStr).Wrap(err)
	}
	session.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse session user id").With("user_id", userIDStr).Wrap(err)
	}
	session.CreatedAt = createdAt
	session.UpdatedAt = updatedAt
	return session, nil
}
