// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package postgres implements the content repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/content"
	"github.com/postline/postline/internal/store"
)

// PostRepository implements content.PostRepository using PostgreSQL.
// Posts and their relation rows are written together, so callers wanting
// atomicity run methods inside a transaction carried by the context.
type PostRepository struct {
	db store.Querier
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db store.Querier) *PostRepository {
	return &PostRepository{db: db}
}

var _ content.PostRepository = (*PostRepository)(nil)

// Create stores a post with its category and tag relation rows.
func (r *PostRepository) Create(ctx context.Context, post *content.Post) error {
	q := store.FromContext(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO posts (id, user_id, title, description, link, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		post.ID.String(),
		post.UserID.String(),
		post.Title,
		post.Description,
		post.Link,
		post.City,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("POST_DUPLICATE_LINK").
			With("user_id", post.UserID.String()).
			With("link", post.Link).
			Wrap(content.ErrConflict)
	}
	if err != nil {
		return oops.Code("POST_CREATE_FAILED").
			With("post_id", post.ID.String()).
			Wrap(err)
	}

	return r.insertRelations(ctx, q, post)
}

// Get retrieves a post with resolved relations.
func (r *PostRepository) Get(ctx context.Context, id ulid.ULID) (*content.Post, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, selectPost+` WHERE id = $1`, id.String())

	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("post_id", id.String()).
			Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").
			With("post_id", id.String()).
			Wrap(err)
	}

	if err := r.loadRelations(ctx, q, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetByUserLink retrieves the post a user owns under the given link.
// Relations are not resolved; callers use this for uniqueness checks.
func (r *PostRepository) GetByUserLink(ctx context.Context, userID ulid.ULID, link string) (*content.Post, error) {
	q := store.FromContext(ctx, r.db)
	row := q.QueryRow(ctx, selectPost+` WHERE user_id = $1 AND link = $2`, userID.String(), link)

	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("user_id", userID.String()).
			With("link", link).
			Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return post, nil
}

// List returns a page of posts, newest first, plus the total count matching
// the filter.
func (r *PostRepository) List(ctx context.Context, filter content.ListFilter) ([]*content.Post, int, error) {
	q := store.FromContext(ctx, r.db)

	where := ` WHERE 1=1`
	args := []any{}
	if filter.CategoryValue != "" {
		args = append(args, filter.CategoryValue)
		where += ` AND EXISTS (
			SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = posts.id AND c.value = $1)`
	}
	if filter.TagLabel != "" {
		args = append(args, filter.TagLabel)
		where += ` AND EXISTS (
			SELECT 1 FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = posts.id AND t.label = $` + strconv.Itoa(len(args)) + `)`
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, oops.Code("POST_LIST_FAILED").With("operation", "count posts").Wrap(err)
	}

	pageArgs := append(args, filter.Limit, filter.Offset())
	rows, err := q.Query(ctx,
		selectPost+where+` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)+1)+` OFFSET $`+strconv.Itoa(len(args)+2),
		pageArgs...)
	if err != nil {
		return nil, 0, oops.Code("POST_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var posts []*content.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, oops.Code("POST_LIST_FAILED").With("operation", "scan post row").Wrap(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, oops.Code("POST_LIST_FAILED").With("operation", "iterate posts").Wrap(err)
	}

	for _, post := range posts {
		if err := r.loadRelations(ctx, q, post); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

// Update replaces the post's scalar fields and relation sets.
func (r *PostRepository) Update(ctx context.Context, post *content.Post) error {
	q := store.FromContext(ctx, r.db)
	post.UpdatedAt = time.Now()

	result, err := q.Exec(ctx, `
		UPDATE posts SET title = $2, description = $3, link = $4, city = $5, updated_at = $6
		WHERE id = $1
	`,
		post.ID.String(),
		post.Title,
		post.Description,
		post.Link,
		post.City,
		post.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("POST_DUPLICATE_LINK").
			With("user_id", post.UserID.String()).
			With("link", post.Link).
			Wrap(content.ErrConflict)
	}
	if err != nil {
		return oops.Code("POST_UPDATE_FAILED").
			With("post_id", post.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("post_id", post.ID.String()).
			Wrap(content.ErrNotFound)
	}

	if err := r.deleteRelations(ctx, q, post.ID); err != nil {
		return err
	}
	return r.insertRelations(ctx, q, post)
}

// Delete removes a post. Relation rows go away through ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("POST_DELETE_FAILED").
			With("post_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("post_id", id.String()).
			Wrap(content.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes all posts owned by a user and returns how many went
// away.
func (r *PostRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	q := store.FromContext(ctx, r.db)
	result, err := q.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID.String())
	if err != nil {
		return 0, oops.Code("POST_DELETE_BY_USER_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func (r *PostRepository) insertRelations(ctx context.Context, q store.Querier, post *content.Post) error {
	for _, c := range post.Categories {
		_, err := q.Exec(ctx,
			`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`,
			post.ID.String(), c.ID.String())
		if err != nil {
			return oops.Code("POST_RELATE_CATEGORY_FAILED").
				With("post_id", post.ID.String()).
				With("category_id", c.ID.String()).
				Wrap(err)
		}
	}
	for _, tag := range post.Tags {
		_, err := q.Exec(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`,
			post.ID.String(), tag.ID.String())
		if err != nil {
			return oops.Code("POST_RELATE_TAG_FAILED").
				With("post_id", post.ID.String()).
				With("tag_id", tag.ID.String()).
				Wrap(err)
		}
	}
	return nil
}

func (r *PostRepository) deleteRelations(ctx context.Context, q store.Querier, postID ulid.ULID) error {
	if _, err := q.Exec(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID.String()); err != nil {
		return oops.Code("POST_RELATE_CATEGORY_FAILED").With("post_id", postID.String()).Wrap(err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID.String()); err != nil {
		return oops.Code("POST_RELATE_TAG_FAILED").With("post_id", postID.String()).Wrap(err)
	}
	return nil
}

func (r *PostRepository) loadRelations(ctx context.Context, q store.Querier, post *content.Post) error {
	rows, err := q.Query(ctx, `
		SELECT c.id, c.label, c.value
		FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = $1
		ORDER BY c.label
	`, post.ID.String())
	if err != nil {
		return oops.Code("POST_LOAD_CATEGORIES_FAILED").With("post_id", post.ID.String()).Wrap(err)
	}
	post.Categories, err = collectCategories(rows)
	if err != nil {
		return oops.Code("POST_LOAD_CATEGORIES_FAILED").With("post_id", post.ID.String()).Wrap(err)
	}

	rows, err = q.Query(ctx, `
		SELECT t.id, t.label
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.label
	`, post.ID.String())
	if err != nil {
		return oops.Code("POST_LOAD_TAGS_FAILED").With("post_id", post.ID.String()).Wrap(err)
	}
	post.Tags, err = collectTags(rows)
	if err != nil {
		return oops.Code("POST_LOAD_TAGS_FAILED").With("post_id", post.ID.String()).Wrap(err)
	}
	return nil
}

func collectCategories(rows pgx.Rows) ([]content.Category, error) {
	defer rows.Close()
	var out []content.Category
	for rows.Next() {
		var idStr string
		var c content.Category
		if err := rows.Scan(&idStr, &c.Label, &c.Value); err != nil {
			return nil, err
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		c.ID = id
		out = append(out, c)
	}
	return out, rows.Err()
}

func collectTags(rows pgx.Rows) ([]content.Tag, error) {
	defer rows.Close()
	var out []content.Tag
	for rows.Next() {
		var idStr string
		var tag content.Tag
		if err := rows.Scan(&idStr, &tag.Label); err != nil {
			return nil, err
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		tag.ID = id
		out = append(out, tag)
	}
	return out, rows.Err()
}

const selectPost = `
	SELECT id, user_id, title, description, link, city, created_at, updated_at
	FROM posts`

// scanPost scans a single row into a Post without relations.
// Callers are responsible for handling pgx.ErrNoRows.
func scanPost(row pgx.Row) (*content.Post, error) {
	var idStr, userIDStr string
	post := &content.Post{}

	err := row.Scan(&idStr, &userIDStr, &post.Title, &post.Description,
		&post.Link, &post.City, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse post id").With("id", idStr).Wrap(err)
	}
	post.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse post user id").With("user_id", userIDStr).Wrap(err)
	}
	return post, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
