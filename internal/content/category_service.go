// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CategoryService manages the curated category list.
type CategoryService struct {
	categories CategoryRepository
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(categories CategoryRepository, logger *slog.Logger) (*CategoryService, error) {
	if categories == nil {
		return nil, oops.Errorf("categories repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{categories: categories, logger: logger}, nil
}

// Create adds a category. The value must be unique.
func (s *CategoryService) Create(ctx context.Context, label, value string) (*Category, error) {
	category, err := NewCategory(label, value)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, oops.Code("CATEGORY_CREATE_FAILED").
			With("value", value).
			Wrap(err)
	}
	s.logger.Info("category created", "category_id", category.ID.String(), "value", value)
	return category, nil
}

// Get retrieves a category by ID.
func (s *CategoryService) Get(ctx context.Context, id ulid.ULID) (*Category, error) {
	return s.categories.Get(ctx, id)
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

// Update changes a category's label and value.
func (s *CategoryService) Update(ctx context.Context, id ulid.ULID, label, value string) (*Category, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if label != "" {
		category.Label = label
	}
	if value != "" {
		category.Value = value
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category. Posts referencing it only lose the membership
// row.
func (s *CategoryService) Delete(ctx context.Context, id ulid.ULID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", "category_id", id.String())
	return nil
}
