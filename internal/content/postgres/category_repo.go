// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/content"
	"github.com/postline/postline/internal/store"
)

// CategoryRepository implements content.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db store.Querier
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db store.Querier) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var _ content.CategoryRepository = (*CategoryRepository)(nil)

// Create stores a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *content.Category) error {
	q := store.FromContext(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO categories (id, label, value) VALUES ($1, $2, $3)`,
		category.ID.String(), category.Label, category.Value)
	if isUniqueViolation(err) {
		return oops.Code("CATEGORY_VALUE_TAKEN").
			With("value", category.Value).
			Wrap(content.ErrConflict)
	}
	if err != nil {
		return oops.Code("CATEGORY_CREATE_FAILED").
			With("value", category.Value).
			Wrap(err)
	}
	return nil
}

// Get retrieves a category by ID.
func (r *CategoryRepository) Get(ctx context.Context, id ulid.ULID) (*content.Category, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT id, label, value FROM categories WHERE id = $1`, id.String())
	return r.scanOne(row, "id", id.String())
}

// GetByValue retrieves a category by its unique value.
func (r *CategoryRepository) GetByValue(ctx context.Context, value string) (*content.Category, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT id, label, value FROM categories WHERE value = $1`, value)
	return r.scanOne(row, "value", value)
}

// List returns all categories ordered by label.
func (r *CategoryRepository) List(ctx context.Context) ([]*content.Category, error) {
	q := store.FromContext(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, label, value FROM categories ORDER BY label`)
	if err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var out []*content.Category
	for rows.Next() {
		var idStr string
		c := &content.Category{}
		if err := rows.Scan(&idStr, &c.Label, &c.Value); err != nil {
			return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "scan category row").Wrap(err)
		}
		c.ID, err = ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "parse category id").Wrap(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "iterate categories").Wrap(err)
	}
	return out, nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, category *content.Category) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx,
		`UPDATE categories SET label = $2, value = $3 WHERE id = $1`,
		category.ID.String(), category.Label, category.Value)
	if isUniqueViolation(err) {
		return oops.Code("CATEGORY_VALUE_TAKEN").
			With("value", category.Value).
			Wrap(content.ErrConflict)
	}
	if err != nil {
		return oops.Code("CATEGORY_UPDATE_FAILED").
			With("category_id", category.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CATEGORY_NOT_FOUND").
			With("category_id", category.ID.String()).
			Wrap(content.ErrNotFound)
	}
	return nil
}

// Delete removes a category. Post memberships go away through ON DELETE
// CASCADE.
func (r *CategoryRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("CATEGORY_DELETE_FAILED").
			With("category_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CATEGORY_NOT_FOUND").
			With("category_id", id.String()).
			Wrap(content.ErrNotFound)
	}
	return nil
}

func (r *CategoryRepository) scanOne(row pgx.Row, key, value string) (*content.Category, error) {
	var idStr string
	c := &content.Category{}
	err := row.Scan(&idStr, &c.Label, &c.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CATEGORY_NOT_FOUND").
			With(key, value).
			Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CATEGORY_GET_FAILED").
			With(key, value).
			Wrap(err)
	}
	c.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse category id").With("id", idStr).Wrap(err)
	}
	return c, nil
}
