// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session is the single active token pair for a user. Exactly zero or one
// rows exist per user, enforced by a unique constraint on user_id.
//
// The access token is stored as issued; the refresh token is stored only as
// an argon2 digest and verified with PasswordHasher on refresh. Overwriting
// the pair on rotation is authoritative - no blacklist is kept because the
// old refresh value can no longer match the stored digest.
type Session struct {
	ID          ulid.ULID
	UserID      ulid.ULID
	AccessToken string
	RefreshHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession creates a validated Session instance.
func NewSession(userID ulid.ULID, accessToken, refreshHash string) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if accessToken == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("access token cannot be empty")
	}
	if refreshHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("refresh hash cannot be empty")
	}

	now := time.Now()
	return &Session{
		ID:          ulid.Make(),
		UserID:      userID,
		AccessToken: accessToken,
		RefreshHash: refreshHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	// Returns ErrConflict if the user already has one.
	Create(ctx context.Context, session *Session) error

	// GetByUser retrieves the session for a user.
	// Returns ErrNotFound if absent.
	GetByUser(ctx context.Context, userID ulid.ULID) (*Session, error)

	// Replace overwrites the stored token pair for an existing session in a
	// single statement. Returns ErrNotFound if the session no longer exists.
	Replace(ctx context.Context, session *Session) error

	// DeleteByUser removes the session for a user. Returns true if a row
	// was deleted; deleting an absent session is not an error.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (bool, error)
}

// SessionService issues and stores token pairs, one session per user.
type SessionService struct {
	sessions SessionRepository
	issuer   TokenIssuer
	hasher   PasswordHasher
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions SessionRepository, issuer TokenIssuer, hasher PasswordHasher) (*SessionService, error) {
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &SessionService{sessions: sessions, issuer: issuer, hasher: hasher}, nil
}

// Create issues a fresh token pair and stores the session for the user.
// Fails with ErrConflict if the user already has a session.
func (s *SessionService) Create(ctx context.Context, user *User) (*Session, TokenPair, error) {
	pair, session, err := s.freshPair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, TokenPair{}, oops.Code("SESSION_CREATE_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return session, pair, nil
}

// Rotate issues a fresh token pair and overwrites the stored session.
// Fails with ErrNotFound if the user has no session. The previous refresh
// value becomes permanently unverifiable.
func (s *SessionService) Rotate(ctx context.Context, user *User) (*Session, TokenPair, error) {
	existing, err := s.sessions.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, oops.Code("SESSION_ROTATE_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	pair, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, TokenPair{}, oops.Code("SESSION_ROTATE_FAILED").
			With("operation", "issue token pair").
			Wrap(err)
	}
	refreshHash, err := s.hasher.Hash(pair.Refresh)
	if err != nil {
		return nil, TokenPair{}, oops.Code("SESSION_ROTATE_FAILED").
			With("operation", "hash refresh token").
			Wrap(err)
	}

	existing.AccessToken = pair.Access
	existing.RefreshHash = refreshHash
	existing.UpdatedAt = time.Now()

	if err := s.sessions.Replace(ctx, existing); err != nil {
		return nil, TokenPair{}, oops.Code("SESSION_ROTATE_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return existing, pair, nil
}

// Clear removes the user's session. Returns true only if a session existed
// and was removed; clearing an absent session is not an error here.
func (s *SessionService) Clear(ctx context.Context, userID ulid.ULID) (bool, error) {
	deleted, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return false, oops.Code("SESSION_CLEAR_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return deleted, nil
}

// FindByUser retrieves the session for a user, or ErrNotFound.
func (s *SessionService) FindByUser(ctx context.Context, userID ulid.ULID) (*Session, error) {
	session, err := s.sessions.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// freshPair issues a token pair for the user and builds the session row.
func (s *SessionService) freshPair(user *User) (TokenPair, *Session, error) {
	pair, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, nil, oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "issue token pair").
			Wrap(err)
	}
	refreshHash, err := s.hasher.Hash(pair.Refresh)
	if err != nil {
		return TokenPair{}, nil, oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "hash refresh token").
			Wrap(err)
	}
	session, err := NewSession(user.ID, pair.Access, refreshHash)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, session, nil
}
