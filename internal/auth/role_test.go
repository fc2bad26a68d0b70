// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/pkg/errutil"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleGuest, RoleUser, RoleCreator, RoleAdmin} {
		assert.True(t, r.Valid(), "role %s", r)
	}
	assert.False(t, Role("SUPERUSER").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		role  Role
		other Role
		want  bool
	}{
		{RoleAdmin, RoleGuest, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleCreator, RoleUser, true},
		{RoleUser, RoleCreator, false},
		{RoleGuest, RoleUser, false},
		{Role("UNKNOWN"), RoleGuest, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.AtLeast(tt.other), "%s at least %s", tt.role, tt.other)
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("CREATOR")
	require.NoError(t, err)
	assert.Equal(t, RoleCreator, role)

	_, err = ParseRole("creator")
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_ROLE")
}
