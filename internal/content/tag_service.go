// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TagService manages free-form tags. Tags are normally created implicitly
// through post creation; the direct operations exist for curation.
type TagService struct {
	tags   TagRepository
	logger *slog.Logger
}

// NewTagService creates a TagService.
func NewTagService(tags TagRepository, logger *slog.Logger) (*TagService, error) {
	if tags == nil {
		return nil, oops.Errorf("tags repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{tags: tags, logger: logger}, nil
}

// GetOrCreate returns the tag with the given label, creating it first when
// missing.
func (s *TagService) GetOrCreate(ctx context.Context, label string) (*Tag, error) {
	tag, err := s.tags.GetByLabel(ctx, label)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh, err := NewTag(label)
	if err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, fresh); err != nil {
		if errors.Is(err, ErrConflict) {
			return s.tags.GetByLabel(ctx, label)
		}
		return nil, oops.Code("TAG_CREATE_FAILED").With("label", label).Wrap(err)
	}
	s.logger.Info("tag created", "tag_id", fresh.ID.String(), "label", label)
	return fresh, nil
}

// Get retrieves a tag by ID.
func (s *TagService) Get(ctx context.Context, id ulid.ULID) (*Tag, error) {
	return s.tags.Get(ctx, id)
}

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]*Tag, error) {
	return s.tags.List(ctx)
}

// Rename changes a tag's label. The new label must be unused.
func (s *TagService) Rename(ctx context.Context, id ulid.ULID, label string) (*Tag, error) {
	tag, err := s.tags.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fresh, err := NewTag(label)
	if err != nil {
		return nil, err
	}
	tag.Label = fresh.Label
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, oops.Code("TAG_UPDATE_FAILED").With("tag_id", id.String()).Wrap(err)
	}
	return tag, nil
}

// Delete removes a tag and its post memberships.
func (s *TagService) Delete(ctx context.Context, id ulid.ULID) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tag deleted", "tag_id", id.String())
	return nil
}
