// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Scalar field limits, matching the column definitions.
const (
	MaxTitleLength = 255
	MaxDescLength  = 255
	MaxLinkLength  = 255
	MaxCityLength  = 255
)

// Post is a user-owned entry in the feed. A user never owns two posts with
// the same link; the pair (user_id, link) is unique in the store.
type Post struct {
	ID          ulid.ULID
	UserID      ulid.ULID
	Title       string
	Description string
	Link        string
	City        string
	Categories  []Category
	Tags        []Tag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPost creates a validated Post without relations; the service resolves
// categories and tags before persisting.
func NewPost(userID ulid.ULID, title, description, link, city string) (*Post, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("POST_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if err := validateField("title", title, MaxTitleLength); err != nil {
		return nil, err
	}
	if err := validateField("description", description, MaxDescLength); err != nil {
		return nil, err
	}
	if err := validateField("link", link, MaxLinkLength); err != nil {
		return nil, err
	}
	if err := validateField("city", city, MaxCityLength); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Post{
		ID:          ulid.Make(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Link:        link,
		City:        city,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateField(name, value string, max int) error {
	if value == "" {
		return oops.Code("POST_INVALID_FIELD").With("field", name).Errorf("%s cannot be empty", name)
	}
	if len([]rune(value)) > max {
		return oops.Code("POST_INVALID_FIELD").With("field", name).Errorf("%s exceeds %d characters", name, max)
	}
	return nil
}

// ListFilter narrows and pages the post feed.
type ListFilter struct {
	// Page is 1-based; values below 1 mean the first page.
	Page int
	// Limit is the page size. Defaults to 10, capped at 100.
	Limit int
	// CategoryValue filters to posts referencing the category, if set.
	CategoryValue string
	// TagLabel filters to posts referencing the tag, if set.
	TagLabel string
}

// Normalize clamps paging values into range.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

// Offset returns the row offset for the filter's page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// PostRepository manages post persistence, including relation rows.
type PostRepository interface {
	// Create persists a new post with its category and tag relations.
	// Returns ErrConflict if the user already owns a post with the link.
	Create(ctx context.Context, post *Post) error

	// Get retrieves a post with resolved relations.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*Post, error)

	// GetByUserLink retrieves the post a user owns under the given link.
	// Returns ErrNotFound if absent.
	GetByUserLink(ctx context.Context, userID ulid.ULID, link string) (*Post, error)

	// List returns a page of posts, newest first, plus the total count
	// matching the filter.
	List(ctx context.Context, filter ListFilter) ([]*Post, int, error)

	// Update replaces the post's scalar fields and relation sets.
	Update(ctx context.Context, post *Post) error

	// Delete removes a post and its relation rows.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByUser removes all posts owned by a user, including relation
	// rows, and returns the number of posts removed.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error)
}

// Transactor runs a function inside a single database transaction.
// This mirrors the store transactor to avoid coupling content to postgres.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserDirectory answers user existence checks. This mirrors the auth user
// repository to avoid coupling content to auth.
type UserDirectory interface {
	UserExists(ctx context.Context, id ulid.ULID) (bool, error)
}
