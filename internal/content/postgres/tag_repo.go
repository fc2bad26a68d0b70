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

// TagRepository implements content.TagRepository using PostgreSQL.
type TagRepository struct {
	db store.Querier
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db store.Querier) *TagRepository {
	return &TagRepository{db: db}
}

var _ content.TagRepository = (*TagRepository)(nil)

// Create stores a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *content.Tag) error {
	q := store.FromContext(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO tags (id, label) VALUES ($1, $2)`,
		tag.ID.String(), tag.Label)
	if isUniqueViolation(err) {
		return oops.Code("TAG_LABEL_TAKEN").
			With("label", tag.Label).
			Wrap(content.ErrConflict)
	}
	if err != nil {
		return oops.Code("TAG_CREATE_FAILED").
			With("label", tag.Label).
			Wrap(err)
	}
	return nil
}

// Get retrieves a tag by ID.
func (r *TagRepository) Get(ctx context.Context, id ulid.ULID) (*content.Tag, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT id, label FROM tags WHERE id = $1`, id.String())
	return r.scanOne(row, "id", id.String())
}

// GetByLabel retrieves a tag by exact label match.
func (r *TagRepository) GetByLabel(ctx context.Context, label string) (*content.Tag, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT id, label FROM tags WHERE label = $1`, label)
	return r.scanOne(row, "label", label)
}

// List returns all tags ordered by label.
func (r *TagRepository) List(ctx context.Context) ([]*content.Tag, error) {
	q := store.FromContext(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, label FROM tags ORDER BY label`)
	if err != nil {
		return nil, oops.Code("TAG_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var out []*content.Tag
	for rows.Next() {
		var idStr string
		tag := &content.Tag{}
		if err := rows.Scan(&idStr, &tag.Label); err != nil {
			return nil, oops.Code("TAG_LIST_FAILED").With("operation", "scan tag row").Wrap(err)
		}
		tag.ID, err = ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("TAG_LIST_FAILED").With("operation", "parse tag id").Wrap(err)
		}
		out = append(out, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TAG_LIST_FAILED").With("operation", "iterate tags").Wrap(err)
	}
	return out, nil
}

// Update modifies an existing tag.
func (r *TagRepository) Update(ctx context.Context, tag *content.Tag) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx,
		`UPDATE tags SET label = $2 WHERE id = $1`,
		tag.ID.String(), tag.Label)
	if isUniqueViolation(err) {
		return oops.Code("TAG_LABEL_TAKEN").
			With("label", tag.Label).
			Wrap(content.ErrConflict)
	}
	if err != nil {
		return oops.Code("TAG_UPDATE_FAILED").
			With("tag_id", tag.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TAG_NOT_FOUND").
			With("tag_id", tag.ID.String()).
			Wrap(content.ErrNotFound)
	}
	return nil
}

// Delete removes a tag. Post memberships go away through ON DELETE CASCADE.
func (r *TagRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("TAG_DELETE_FAILED").
			With("tag_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TAG_NOT_FOUND").
			With("tag_id", id.String()).
			Wrap(content.ErrNotFound)
	}
	return nil
}

func (r *TagRepository) scanOne(row pgx.Row, key, value string) (*content.Tag, error) {
	var idStr string
	tag := &content.Tag{}
	err := row.Scan(&idStr, &tag.Label)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TAG_NOT_FOUND").
			With(key, value).
			Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TAG_GET_FAILED").
			With(key, value).
			Wrap(err)
	}
	tag.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse tag id").With("id", idStr).Wrap(err)
	}
	return tag, nil
}
