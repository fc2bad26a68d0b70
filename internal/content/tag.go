// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Tag is flat reference data resolved by its label. Labels are unique and
// matched case-sensitively; post creation resolves tags get-or-create style.
type Tag struct {
	ID    ulid.ULID
	Label string
}

// NewTag creates a validated Tag.
func NewTag(label string) (*Tag, error) {
	if label == "" {
		return nil, oops.Code("TAG_INVALID_LABEL").Errorf("tag label cannot be empty")
	}
	return &Tag{ID: ulid.Make(), Label: label}, nil
}

// TagRepository manages tag persistence.
type TagRepository interface {
	// Create persists a new tag.
	// Returns ErrConflict if the label is already taken.
	Create(ctx context.Context, tag *Tag) error

	// Get retrieves a tag by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*Tag, error)

	// GetByLabel retrieves a tag by exact label match.
	GetByLabel(ctx context.Context, label string) (*Tag, error)

	// List returns all tags ordered by label.
	List(ctx context.Context) ([]*Tag, error)

	// Update modifies an existing tag.
	Update(ctx context.Context, tag *Tag) error

	// Delete removes a tag and its post relation rows.
	Delete(ctx context.Context, id ulid.ULID) error
}
