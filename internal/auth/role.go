// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import "github.com/samber/oops"

// Role is a user's privilege level. Roles form an ordered escalation chain:
// each role inherits everything the previous one may do.
type Role string

// Known roles, lowest privilege first.
const (
	RoleGuest   Role = "GUEST"
	RoleUser    Role = "USER"
	RoleCreator Role = "CREATOR"
	RoleAdmin   Role = "ADMIN"
)

// roleRank orders roles by privilege. Unknown roles rank below GUEST.
var roleRank = map[Role]int{
	RoleGuest:   1,
	RoleUser:    2,
	RoleCreator: 3,
	RoleAdmin:   4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// ParseRole validates a stored role value.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", oops.Code("AUTH_INVALID_ROLE").With("role", s).Errorf("unknown role %q", s)
	}
	return r, nil
}
