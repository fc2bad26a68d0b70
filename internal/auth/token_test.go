// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/pkg/errutil"
)

func newTestIssuer(t *testing.T) *JWTIssuer {
	t.Helper()
	issuer, err := NewJWTIssuer("access-secret-for-tests", "refresh-secret-for-tests")
	require.NoError(t, err)
	return issuer
}

func TestNewJWTIssuer_Validation(t *testing.T) {
	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := NewJWTIssuer("", "refresh")
		errutil.AssertErrorCode(t, err, "TOKEN_CONFIG_INVALID")
	})

	t.Run("identical secrets rejected", func(t *testing.T) {
		_, err := NewJWTIssuer("same", "same")
		errutil.AssertErrorCode(t, err, "TOKEN_CONFIG_INVALID")
	})
}

func TestJWTIssuer_IssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)
	userID := ulid.Make()

	pair, err := issuer.Issue(userID, "ada@example.com", RoleCreator)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := issuer.Verify(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, RoleCreator, claims.Role)

	parsed, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	_, err = issuer.Verify(pair.Refresh, RefreshToken)
	require.NoError(t, err)
}

func TestJWTIssuer_ClassesAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue(ulid.Make(), "ada@example.com", RoleUser)
	require.NoError(t, err)

	_, err = issuer.Verify(pair.Access, RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.Verify(pair.Refresh, AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTIssuer_ExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t).WithTTLs(time.Nanosecond, time.Nanosecond)

	pair, err := issuer.Issue(ulid.Make(), "ada@example.com", RoleUser)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Verify(pair.Access, AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTIssuer_TamperedToken(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue(ulid.Make(), "ada@example.com", RoleUser)
	require.NoError(t, err)

	tampered := pair.Access[:len(pair.Access)-4] + "zzzz"
	_, err = issuer.Verify(tampered, AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.Verify("not.a.jwt", AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaims_UserID_Invalid(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "definitely-not-a-ulid"

	_, err := claims.UserID()
	errutil.AssertErrorCode(t, err, "TOKEN_INVALID_SUBJECT")
}
