// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// OwnedContentRepository removes content owned by a user. This mirrors the
// content post repository to avoid coupling auth to the content package.
type OwnedContentRepository interface {
	// DeleteByUser removes all posts owned by the user, including their
	// relation rows, and returns the number of posts removed.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error)
}

// UserService provides user profile operations and account removal.
type UserService struct {
	users    UserRepository
	sessions SessionRepository
	posts    OwnedContentRepository
	tx       Transactor
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users UserRepository, sessions SessionRepository, posts OwnedContentRepository, tx Transactor, logger *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if posts == nil {
		return nil, oops.Errorf("posts repository is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, sessions: sessions, posts: posts, tx: tx, logger: logger}, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns users newest first. Limit defaults to 50, capped at 200.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of input to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id ulid.ULID, input UpdateProfileInput) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.Profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.Profile.LastName = *input.LastName
	}
	if input.Img != nil {
		user.Profile.Img = *input.Img
	}
	if input.Age != nil {
		user.Profile.Age = *input.Age
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// Delete removes a user and everything it owns. The cascade is explicit:
// posts (with their relation rows), the session, and finally the user row,
// all inside one transaction.
func (s *UserService) Delete(ctx context.Context, id ulid.ULID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		posts, err := s.posts.DeleteByUser(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.sessions.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := s.users.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("user deleted", "user_id", id.String(), "posts_removed", posts)
		return nil
	})
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}
	return nil
}
