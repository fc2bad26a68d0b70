// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/pkg/errutil"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser(Profile{FirstName: "Ada"}, "ada@example.com", "some-hash")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
	assert.Zero(t, user.FailedAttempts)
	assert.Nil(t, user.LockedUntil)

	tests := []struct {
		name  string
		email string
		hash  string
		code  string
	}{
		{"missing at sign", "ada.example.com", "h", "AUTH_INVALID_EMAIL"},
		{"missing domain dot", "ada@example", "h", "AUTH_INVALID_EMAIL"},
		{"whitespace", "ada @example.com", "h", "AUTH_INVALID_EMAIL"},
		{"empty hash", "ada@example.com", "", "AUTH_EMPTY_HASH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(Profile{}, tt.email, tt.hash)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}
