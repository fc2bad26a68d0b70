// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Transactor runs a function inside a single database transaction.
// This mirrors the store transactor to avoid coupling auth to postgres.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates the signup/signin/logout/refresh lifecycle.
type Service struct {
	users    UserRepository
	sessions *SessionService
	hasher   PasswordHasher
	tx       Transactor
	logger   *slog.Logger
}

// NewService creates a new auth Service.
func NewService(users UserRepository, sessions *SessionService, hasher PasswordHasher, tx Transactor) (*Service, error) {
	return NewServiceWithLogger(users, sessions, hasher, tx, slog.Default())
}

// NewServiceWithLogger creates a new auth Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, sessions *SessionService, hasher PasswordHasher, tx Transactor, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session service is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{users: users, sessions: sessions, hasher: hasher, tx: tx, logger: logger}, nil
}

// Signup registers a new user and opens their first session.
//
// User creation and session creation run in one transaction: if issuing or
// storing the session fails, the user row rolls back too, so a user never
// persists half-registered. Fails with ErrConflict if the email is taken.
func (s *Service) Signup(ctx context.Context, profile Profile, email, password string) (*User, TokenPair, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, TokenPair{}, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	if existing != nil {
		return nil, TokenPair{}, oops.Code("AUTH_EMAIL_TAKEN").
			With("email", email).
			Wrap(ErrConflict)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(profile, email, hash)
	if err != nil {
		return nil, TokenPair{}, err
	}

	var pair TokenPair
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			// A concurrent signup may win the race; the unique constraint
			// on email reports it as a conflict.
			return err
		}
		_, created, err := s.sessions.Create(ctx, user)
		if err != nil {
			return err
		}
		pair = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, TokenPair{}, oops.Code("AUTH_EMAIL_TAKEN").
				With("email", email).
				Wrap(ErrConflict)
		}
		return nil, TokenPair{}, oops.Code("AUTH_SIGNUP_FAILED").Wrap(err)
	}

	s.logger.Info("user signed up", "user_id", user.ID.String())
	return user, pair, nil
}

// Signin authenticates by email and password and rotates the session.
//
// Fails with ErrNotFound if the email is unknown and ErrForbidden on a bad
// password, an active lockout, or inside the backoff window that follows
// recent failures. A user without a session (after logout)
// gets a fresh one - rotation degrades to creation for sessionless users.
func (s *Service) Signin(ctx context.Context, email, password string) (*User, TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, TokenPair{}, oops.Code("AUTH_UNKNOWN_EMAIL").Wrap(ErrNotFound)
		}
		return nil, TokenPair{}, oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	state := CheckFailures(user.FailedAttempts, user.LockedUntil)
	if state.IsLockedOut {
		return nil, TokenPair{}, oops.Code("AUTH_LOCKED_OUT").
			With("retry_after", state.LockoutRemaining.String()).
			Wrap(ErrForbidden)
	}
	// RecordFailure stamps UpdatedAt, so it marks the last failed attempt.
	if wait := state.Delay - time.Since(user.UpdatedAt); wait > 0 {
		return nil, TokenPair{}, oops.Code("AUTH_RETRY_LATER").
			With("retry_after", wait.Round(time.Second).String()).
			Wrap(ErrForbidden)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !ok {
		user.RecordFailure()
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			s.logger.Warn("failed to record signin failure",
				"user_id", user.ID.String(), "error", updateErr)
		}
		return nil, TokenPair{}, oops.Code("AUTH_BAD_CREDENTIALS").Wrap(ErrForbidden)
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.RecordSuccess()
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			s.logger.Warn("failed to reset signin failures",
				"user_id", user.ID.String(), "error", updateErr)
		}
	}

	_, pair, err := s.sessions.Rotate(ctx, user)
	if errors.Is(err, ErrNotFound) {
		_, pair, err = s.sessions.Create(ctx, user)
	}
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "rotate session").
			Wrap(err)
	}

	s.logger.Info("user signed in", "user_id", user.ID.String())
	return user, pair, nil
}

// Logout clears the user's session. Returns true only if a session existed
// and was removed. Fails with ErrNotFound for an unknown user; a missing
// session is not an error, so a second logout simply returns false.
func (s *Service) Logout(ctx context.Context, userID ulid.ULID) (bool, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, oops.Code("AUTH_UNKNOWN_USER").
				With("user_id", userID.String()).
				Wrap(ErrNotFound)
		}
		return false, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	removed, err := s.sessions.Clear(ctx, userID)
	if err != nil {
		return false, oops.Code("AUTH_LOGOUT_FAILED").Wrap(err)
	}
	if removed {
		s.logger.Info("user logged out", "user_id", userID.String())
	}
	return removed, nil
}

// Refresh validates a presented refresh token against the stored digest and
// rotates the session on success.
//
// All denial paths return ErrForbidden: unknown user, no session, or a token
// that does not match the stored digest (including any token issued before
// the last rotation).
func (s *Service) Refresh(ctx context.Context, userID ulid.ULID, refreshToken string) (*User, TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, TokenPair{}, oops.Code("AUTH_REFRESH_DENIED").Wrap(ErrForbidden)
		}
		return nil, TokenPair{}, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	session, err := s.sessions.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, TokenPair{}, oops.Code("AUTH_REFRESH_DENIED").Wrap(ErrForbidden)
		}
		return nil, TokenPair{}, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "get session by user").
			Wrap(err)
	}

	ok, err := s.hasher.Verify(refreshToken, session.RefreshHash)
	if err != nil || !ok {
		return nil, TokenPair{}, oops.Code("AUTH_REFRESH_DENIED").Wrap(ErrForbidden)
	}

	_, pair, err := s.sessions.Rotate(ctx, user)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "rotate session").
			Wrap(err)
	}

	s.logger.Info("session refreshed", "user_id", userID.String())
	return user, pair, nil
}
