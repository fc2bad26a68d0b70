// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Token verification failures.
var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for bad signatures, malformed tokens, and
	// tokens signed for the other class.
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenClass selects which signing secret a token is bound to. Access and
// refresh tokens use distinct secrets so possession of one class never lets
// a caller mint the other.
type TokenClass string

// Token classes.
const (
	AccessToken  TokenClass = "access"
	RefreshToken TokenClass = "refresh"
)

// Claims are the signed facts embedded in every issued token.
// Subject carries the user ID.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as a ULID.
func (c *Claims) UserID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("TOKEN_INVALID_SUBJECT").With("subject", c.Subject).Wrap(err)
	}
	return id, nil
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenIssuer mints and verifies signed token pairs.
type TokenIssuer interface {
	// Issue produces a signed access/refresh pair carrying the identity claims.
	Issue(userID ulid.ULID, email string, role Role) (TokenPair, error)

	// Verify checks signature and expiry against the secret for the given
	// class. Returns ErrTokenExpired or ErrTokenInvalid on failure.
	Verify(token string, class TokenClass) (*Claims, error)
}

// JWTIssuer implements TokenIssuer with HMAC-SHA256 signed JWTs.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTIssuer creates a JWTIssuer with the default lifetimes.
// The two secrets must be non-empty and distinct.
func NewJWTIssuer(accessSecret, refreshSecret string) (*JWTIssuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secrets cannot be empty")
	}
	if accessSecret == refreshSecret {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("access and refresh secrets must differ")
	}
	return &JWTIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
	}, nil
}

// WithTTLs overrides the token lifetimes. Zero values keep the defaults.
func (i *JWTIssuer) WithTTLs(accessTTL, refreshTTL time.Duration) *JWTIssuer {
	if accessTTL > 0 {
		i.accessTTL = accessTTL
	}
	if refreshTTL > 0 {
		i.refreshTTL = refreshTTL
	}
	return i
}

// Issue produces a signed access/refresh pair for the user identity.
func (i *JWTIssuer) Issue(userID ulid.ULID, email string, role Role) (TokenPair, error) {
	access, err := i.sign(userID, email, role, i.accessSecret, i.accessTTL)
	if err != nil {
		return TokenPair{}, oops.Code("TOKEN_SIGN_FAILED").With("class", AccessToken).Wrap(err)
	}
	refresh, err := i.sign(userID, email, role, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return TokenPair{}, oops.Code("TOKEN_SIGN_FAILED").With("class", RefreshToken).Wrap(err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *JWTIssuer) sign(userID ulid.ULID, email string, role Role, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature and expiry against the matching secret.
func (i *JWTIssuer) Verify(token string, class TokenClass) (*Claims, error) {
	secret := i.accessSecret
	if class == RefreshToken {
		secret = i.refreshSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").With("class", class).Wrap(ErrTokenExpired)
		}
		return nil, oops.Code("TOKEN_INVALID").With("class", class).Wrap(ErrTokenInvalid)
	}
	if !parsed.Valid {
		return nil, oops.Code("TOKEN_INVALID").With("class", class).Wrap(ErrTokenInvalid)
	}
	return claims, nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
