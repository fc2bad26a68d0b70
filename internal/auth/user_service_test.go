// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOwnedContentRepo struct {
	mock.Mock
}

func (m *mockOwnedContentRepo) DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type userFixture struct {
	users    *mockUserRepo
	sessions *mockSessionRepo
	posts    *mockOwnedContentRepo
	service  *UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	users := &mockUserRepo{}
	sessions := &mockSessionRepo{}
	posts := &mockOwnedContentRepo{}
	service, err := NewUserService(users, sessions, posts, passthroughTx{}, nil)
	require.NoError(t, err)

	return &userFixture{users: users, sessions: sessions, posts: posts, service: service}
}

func testUser(t *testing.T) *User {
	t.Helper()
	user, err := NewUser(Profile{FirstName: "Ada", Age: "36"}, "ada@example.com", "some-hash")
	require.NoError(t, err)
	return user
}

func TestUserService_List_ClampsPaging(t *testing.T) {
	tests := []struct {
		name               string
		limit, offset      int
		wantLimit, wantOff int
	}{
		{"defaults", 0, 0, 50, 0},
		{"cap", 500, 0, 200, 0},
		{"negative offset", 10, -3, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t)
			f.users.On("List", mock.Anything, tt.wantLimit, tt.wantOff).Return([]*User{}, nil)

			_, err := f.service.List(context.Background(), tt.limit, tt.offset)
			require.NoError(t, err)
			f.users.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("nil fields stay unchanged", func(t *testing.T) {
		f := newUserFixture(t)
		user := testUser(t)
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)

		last := "Lovelace"
		updated, err := f.service.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
			LastName: &last,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", updated.Profile.FirstName)
		assert.Equal(t, "Lovelace", updated.Profile.LastName)
		assert.Equal(t, "36", updated.Profile.Age)
	})

	t.Run("empty string clears a field", func(t *testing.T) {
		f := newUserFixture(t)
		user := testUser(t)
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)

		empty := ""
		updated, err := f.service.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
			FirstName: &empty,
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Profile.FirstName)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		id := ulid.Make()
		f.users.On("GetByID", mock.Anything, id).Return(nil, ErrNotFound)

		_, err := f.service.UpdateProfile(context.Background(), id, UpdateProfileInput{})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("cascades posts and session before the user row", func(t *testing.T) {
		f := newUserFixture(t)
		user := testUser(t)
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.posts.On("DeleteByUser", mock.Anything, user.ID).Return(int64(3), nil)
		f.sessions.On("DeleteByUser", mock.Anything, user.ID).Return(true, nil)
		f.users.On("Delete", mock.Anything, user.ID).Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), user.ID))
		f.posts.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
		f.users.AssertExpectations(t)
	})

	t.Run("a sessionless user still deletes", func(t *testing.T) {
		f := newUserFixture(t)
		user := testUser(t)
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.posts.On("DeleteByUser", mock.Anything, user.ID).Return(int64(0), nil)
		f.sessions.On("DeleteByUser", mock.Anything, user.ID).Return(false, nil)
		f.users.On("Delete", mock.Anything, user.ID).Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), user.ID))
	})

	t.Run("failed cascade aborts the whole delete", func(t *testing.T) {
		f := newUserFixture(t)
		user := testUser(t)
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.posts.On("DeleteByUser", mock.Anything, user.ID).Return(int64(0), assert.AnError)

		require.Error(t, f.service.Delete(context.Background(), user.ID))
		f.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		id := ulid.Make()
		f.users.On("GetByID", mock.Anything, id).Return(nil, ErrNotFound)

		require.ErrorIs(t, f.service.Delete(context.Background(), id), ErrNotFound)
	})
}
