// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package postgres implements the auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/store"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
// Queries join an ambient transaction when the context carries one.
type UserRepository struct {
	db store.Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.Querier) *UserRepository {
	return &UserRepository{db: db}
}

var _ auth.UserRepository = (*UserRepository)(nil)

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	q := store.FromContext(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, role, first_name, last_name, img, age,
			failed_attempts, locked_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.Img,
		user.Profile.Age,
		user.FailedAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_EMAIL_TAKEN").
			With("email", user.Email).
			Wrap(auth.ErrConflict)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, selectUser+` WHERE id = $1`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, selectUser+` WHERE LOWER(email) = LOWER($1)`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// List returns users ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*auth.User, error) {
	q := store.FromContext(ctx, r.db)
	rows, err := q.Query(ctx, selectUser+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan user row").Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return users, nil
}

// Update persists changed user fields.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			role = $4,
			first_name = $5,
			last_name = $6,
			img = $7,
			age = $8,
			failed_attempts = $9,
			locked_until = $10,
			updated_at = $11
		WHERE id = $1
	`,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.Img,
		user.Profile.Age,
		user.FailedAttempts,
		user.LockedUntil,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_EMAIL_TAKEN").
			With("email", user.Email).
			Wrap(auth.ErrConflict)
	}
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("id", user.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", user.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a user row. It does not cascade; callers delete dependent
// rows explicitly inside the same transaction.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UserExists reports whether a user row exists.
func (r *UserRepository) UserExists(ctx context.Context, id ulid.ULID) (bool, error) {
	q := store.FromContext(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return exists, nil
}

const selectUser = `
	SELECT id, email, password_hash, role, first_name, last_name, img, age,
	       failed_attempts, locked_until, created_at, updated_at
	FROM users`

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr       string
		roleStr     string
		lockedUntil *time.Time
	)
	user := &auth.User{}

	err := row.Scan(
		&idStr,
		&user.Email,
		&user.PasswordHash,
		&roleStr,
		&user.Profile.FirstName,
		&user.Profile.LastName,
		&user.Profile.Img,
		&user.Profile.Age,
		&user.FailedAttempts,
		&lockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse user id").With("id", idStr).Wrap(err)
	}
	user.Role = auth.Role(roleStr)
	user.LockedUntil = lockedUntil
	return user, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
