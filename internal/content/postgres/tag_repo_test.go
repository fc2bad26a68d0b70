// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/internal/content"
)

func TestTagRepository_Create(t *testing.T) {
	t.Run("inserts tag", func(t *testing.T) {
		mock := newMockPool(t)
		tag := &content.Tag{ID: ulid.Make(), Label: "go"}

		mock.ExpectExec(`INSERT INTO tags`).
			WithArgs(tag.ID.String(), tag.Label).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewTagRepository(mock)
		require.NoError(t, repo.Create(context.Background(), tag))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate label maps to conflict", func(t *testing.T) {
		mock := newMockPool(t)
		tag := &content.Tag{ID: ulid.Make(), Label: "go"}

		mock.ExpectExec(`INSERT INTO tags`).
			WithArgs(tag.ID.String(), tag.Label).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := NewTagRepository(mock)
		err := repo.Create(context.Background(), tag)
		assert.ErrorIs(t, err, content.ErrConflict)
	})
}

func TestTagRepository_GetByLabel(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()

		mock.ExpectQuery(`SELECT id, label FROM tags`).
			WithArgs("go").
			WillReturnRows(pgxmock.NewRows([]string{"id", "label"}).AddRow(id.String(), "go"))

		repo := NewTagRepository(mock)
		tag, err := repo.GetByLabel(context.Background(), "go")
		require.NoError(t, err)
		assert.Equal(t, id, tag.ID)
	})

	t.Run("missing label maps to not found", func(t *testing.T) {
		mock := newMockPool(t)

		mock.ExpectQuery(`SELECT id, label FROM tags`).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		repo := NewTagRepository(mock)
		_, err := repo.GetByLabel(context.Background(), "missing")
		assert.ErrorIs(t, err, content.ErrNotFound)
	})
}

func TestCategoryRepository_Create(t *testing.T) {
	t.Run("duplicate value maps to conflict", func(t *testing.T) {
		mock := newMockPool(t)
		category := &content.Category{ID: ulid.Make(), Label: "Travel", Value: "travel"}

		mock.ExpectExec(`INSERT INTO categories`).
			WithArgs(category.ID.String(), category.Label, category.Value).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := NewCategoryRepository(mock)
		err := repo.Create(context.Background(), category)
		assert.ErrorIs(t, err, content.ErrConflict)
	})
}

func TestCategoryRepository_List(t *testing.T) {
	mock := newMockPool(t)
	first := ulid.Make()
	second := ulid.Make()

	mock.ExpectQuery(`SELECT id, label, value FROM categories`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "label", "value"}).
			AddRow(first.String(), "Food", "food").
			AddRow(second.String(), "Travel", "travel"))

	repo := NewCategoryRepository(mock)
	categories, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "food", categories[0].Value)
	assert.Equal(t, "travel", categories[1].Value)
}
