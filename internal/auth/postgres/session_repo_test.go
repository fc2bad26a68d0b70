// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/internal/auth"
)

func testSession(t *testing.T) *auth.Session {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &auth.Session{
		ID:          ulid.Make(),
		UserID:      ulid.Make(),
		AccessToken: "access.jwt",
		RefreshHash: "$argon2id$refresh",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSessionRepository_Create(t *testing.T) {
	t.Run("inserts session", func(t *testing.T) {
		mock := newMockPool(t)
		session := testSession(t)

		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(
				session.ID.String(), session.UserID.String(),
				session.AccessToken, session.RefreshHash,
				session.CreatedAt, session.UpdatedAt,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.Create(context.Background(), session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second session for user maps to conflict", func(t *testing.T) {
		mock := newMockPool(t)
		session := testSession(t)

		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(
				session.ID.String(), session.UserID.String(),
				session.AccessToken, session.RefreshHash,
				session.CreatedAt, session.UpdatedAt,
			).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := NewSessionRepository(mock)
		err := repo.Create(context.Background(), session)
		assert.ErrorIs(t, err, auth.ErrConflict)
	})
}

func TestSessionRepository_GetByUser(t *testing.T) {
	t.Run("returns session", func(t *testing.T) {
		mock := newMockPool(t)
		session := testSession(t)

		rows := pgxmock.NewRows([]string{"id", "user_id", "access_token", "refresh_hash", "created_at", "updated_at"}).
			AddRow(session.ID.String(), session.UserID.String(), session.AccessToken, session.RefreshHash, session.CreatedAt, session.UpdatedAt)
		mock.ExpectQuery(`SELECT (.+) FROM sessions`).
			WithArgs(session.UserID.String()).
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		got, err := repo.GetByUser(context.Background(), session.UserID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, session.RefreshHash, got.RefreshHash)
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		mock := newMockPool(t)
		userID := ulid.Make()

		mock.ExpectQuery(`SELECT (.+) FROM sessions`).
			WithArgs(userID.String()).
			WillReturnError(pgx.ErrNoRows)

		repo := NewSessionRepository(mock)
		_, err := repo.GetByUser(context.Background(), userID)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_Replace(t *testing.T) {
	t.Run("updates token pair in place", func(t *testing.T) {
		mock := newMockPool(t)
		session := testSession(t)

		mock.ExpectExec(`UPDATE sessions SET`).
			WithArgs(session.UserID.String(), session.AccessToken, session.RefreshHash, session.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSessionRepository(mock)
		assert.NoError(t, repo.Replace(context.Background(), session))
	})

	t.Run("missing session maps to not found", func(t *testing.T) {
		mock := newMockPool(t)
		session := testSession(t)

		mock.ExpectExec(`UPDATE sessions SET`).
			WithArgs(session.UserID.String(), session.AccessToken, session.RefreshHash, session.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewSessionRepository(mock)
		err := repo.Replace(context.Background(), session)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_DeleteByUser(t *testing.T) {
	t.Run("reports deleted row", func(t *testing.T) {
		mock := newMockPool(t)
		userID := ulid.Make()

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(userID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewSessionRepository(mock)
		deleted, err := repo.DeleteByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("absent session is not an error", func(t *testing.T) {
		mock := newMockPool(t)
		userID := ulid.Make()

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(userID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewSessionRepository(mock)
		deleted, err := repo.DeleteByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
