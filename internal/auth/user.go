// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// emailRegex is a pragmatic format check; real validation happens at the
// DTO layer. The domain only rejects values that could never be an address.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Profile holds the mutable, non-credential fields of a user.
type Profile struct {
	FirstName string
	LastName  string
	Img       string
	Age       string
}

// User represents a registered account.
//
// PasswordHash is the argon2id digest of the password; the plaintext never
// persists past signup. A user has at most one Session at any time, enforced
// by a unique constraint on sessions.user_id.
type User struct {
	ID           ulid.ULID
	Profile      Profile
	Email        string
	PasswordHash string
	Role         Role
	// Failed signin tracking for progressive lockout.
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a validated User. New signups always start as RoleUser.
func NewUser(profile Profile, email, passwordHash string) (*User, error) {
	if !emailRegex.MatchString(email) {
		return nil, oops.Code("AUTH_INVALID_EMAIL").With("email", email).Errorf("malformed email address")
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_EMPTY_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Profile:      profile,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsLocked returns true if the user is currently locked out of signin.
func (u *User) IsLocked() bool {
	return IsLockedOut(u.LockedUntil)
}

// RecordFailure increments the failure counter and sets lockout if the
// threshold is reached.
func (u *User) RecordFailure() {
	u.FailedAttempts++
	u.LockedUntil = ComputeLockoutTime(u.FailedAttempts)
	u.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (u *User) RecordSuccess() {
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
}

// UpdateProfileInput contains the updatable profile fields. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Img       *string
	Age       *string
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create persists a new user.
	// Returns ErrConflict if the email is already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*User, error)

	// Update persists changed user fields (profile, lockout counters).
	Update(ctx context.Context, user *User) error

	// Delete removes a user row by ID. It does not cascade; callers delete
	// dependent rows explicitly inside the same transaction.
	Delete(ctx context.Context, id ulid.ULID) error
}
