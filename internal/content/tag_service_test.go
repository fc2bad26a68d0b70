// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/pkg/errutil"
)

func TestTagService_GetOrCreate(t *testing.T) {
	t.Run("returns the existing tag", func(t *testing.T) {
		tags := &mockTagRepo{}
		existing := &Tag{ID: ulid.Make(), Label: "europe"}
		tags.On("GetByLabel", mock.Anything, "europe").Return(existing, nil)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		tag, err := svc.GetOrCreate(context.Background(), "europe")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, tag.ID)
		tags.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates a missing tag", func(t *testing.T) {
		tags := &mockTagRepo{}
		tags.On("GetByLabel", mock.Anything, "europe").Return(nil, ErrNotFound)
		tags.On("Create", mock.Anything, mock.AnythingOfType("*content.Tag")).Return(nil)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		tag, err := svc.GetOrCreate(context.Background(), "europe")
		require.NoError(t, err)
		assert.Equal(t, "europe", tag.Label)
		tags.AssertExpectations(t)
	})

	t.Run("losing the create race returns the winner", func(t *testing.T) {
		tags := &mockTagRepo{}
		winner := &Tag{ID: ulid.Make(), Label: "europe"}
		tags.On("GetByLabel", mock.Anything, "europe").Return(nil, ErrNotFound).Once()
		tags.On("Create", mock.Anything, mock.Anything).Return(ErrConflict)
		tags.On("GetByLabel", mock.Anything, "europe").Return(winner, nil)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		tag, err := svc.GetOrCreate(context.Background(), "europe")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, tag.ID)
	})

	t.Run("empty label rejected", func(t *testing.T) {
		tags := &mockTagRepo{}
		tags.On("GetByLabel", mock.Anything, "").Return(nil, ErrNotFound)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		_, err = svc.GetOrCreate(context.Background(), "")
		errutil.AssertErrorCode(t, err, "TAG_INVALID_LABEL")
	})
}

func TestTagService_Rename(t *testing.T) {
	t.Run("renames an existing tag", func(t *testing.T) {
		tags := &mockTagRepo{}
		existing := &Tag{ID: ulid.Make(), Label: "old"}
		tags.On("Get", mock.Anything, existing.ID).Return(existing, nil)
		tags.On("Update", mock.Anything, existing).Return(nil)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		tag, err := svc.Rename(context.Background(), existing.ID, "new")
		require.NoError(t, err)
		assert.Equal(t, "new", tag.Label)
	})

	t.Run("taken label conflicts", func(t *testing.T) {
		tags := &mockTagRepo{}
		existing := &Tag{ID: ulid.Make(), Label: "old"}
		tags.On("Get", mock.Anything, existing.ID).Return(existing, nil)
		tags.On("Update", mock.Anything, mock.Anything).Return(ErrConflict)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		_, err = svc.Rename(context.Background(), existing.ID, "taken")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown tag", func(t *testing.T) {
		tags := &mockTagRepo{}
		id := ulid.Make()
		tags.On("Get", mock.Anything, id).Return(nil, ErrNotFound)

		svc, err := NewTagService(tags, nil)
		require.NoError(t, err)

		_, err = svc.Rename(context.Background(), id, "anything")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCategoryService(t *testing.T) {
	t.Run("create validates and persists", func(t *testing.T) {
		categories := &mockCategoryRepo{}
		categories.On("Create", mock.Anything, mock.AnythingOfType("*content.Category")).Return(nil)

		svc, err := NewCategoryService(categories, nil)
		require.NoError(t, err)

		category, err := svc.Create(context.Background(), "Travel", "travel")
		require.NoError(t, err)
		assert.Equal(t, "travel", category.Value)
		categories.AssertExpectations(t)
	})

	t.Run("duplicate value conflicts", func(t *testing.T) {
		categories := &mockCategoryRepo{}
		categories.On("Create", mock.Anything, mock.Anything).Return(ErrConflict)

		svc, err := NewCategoryService(categories, nil)
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), "Travel", "travel")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("update keeps empty fields unchanged", func(t *testing.T) {
		categories := &mockCategoryRepo{}
		existing := &Category{ID: ulid.Make(), Label: "Travel", Value: "travel"}
		categories.On("Get", mock.Anything, existing.ID).Return(existing, nil)
		categories.On("Update", mock.Anything, existing).Return(nil)

		svc, err := NewCategoryService(categories, nil)
		require.NoError(t, err)

		category, err := svc.Update(context.Background(), existing.ID, "Trips", "")
		require.NoError(t, err)
		assert.Equal(t, "Trips", category.Label)
		assert.Equal(t, "travel", category.Value)
	})
}
