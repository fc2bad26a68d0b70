// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Category is flat reference data: a display label and a unique value.
// Categories have an independent lifecycle; posts hold non-owning references.
type Category struct {
	ID    ulid.ULID
	Label string
	Value string
}

// NewCategory creates a validated Category.
func NewCategory(label, value string) (*Category, error) {
	if label == "" {
		return nil, oops.Code("CATEGORY_INVALID_LABEL").Errorf("category label cannot be empty")
	}
	if value == "" {
		return nil, oops.Code("CATEGORY_INVALID_VALUE").Errorf("category value cannot be empty")
	}
	return &Category{ID: ulid.Make(), Label: label, Value: value}, nil
}

// CategoryRepository manages category persistence.
type CategoryRepository interface {
	// Create persists a new category.
	// Returns ErrConflict if the value is already taken.
	Create(ctx context.Context, category *Category) error

	// Get retrieves a category by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*Category, error)

	// GetByValue retrieves a category by its unique value.
	GetByValue(ctx context.Context, value string) (*Category, error)

	// List returns all categories ordered by label.
	List(ctx context.Context) ([]*Category, error)

	// Update modifies an existing category.
	Update(ctx context.Context, category *Category) error

	// Delete removes a category and its post relation rows.
	Delete(ctx context.Context, id ulid.ULID) error
}
