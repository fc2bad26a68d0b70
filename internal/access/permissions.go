// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package access

import "github.com/postline/postline/internal/auth"

// Permission groups define reusable sets of permissions.
// Roles compose these groups rather than inheriting.

var guestPowers = []string{
	// Public feed
	"read:post:*",
	"read:category:*",
	"read:tag:*",
}

var userPowers = []string{
	// Own account and session
	"read:user:$self",
	"write:user:$self",
	"delete:user:$self",
	"write:session:$self",
}

var creatorPowers = []string{
	// Content authoring. Creators may edit any post but delete
	// only their own; deleting foreign posts is an admin power.
	"create:post:*",
	"write:post:**",
	"delete:post:$self:*",
	"create:tag:*",
}

var adminPowers = []string{
	// Full access
	"read:**",
	"create:**",
	"write:**",
	"delete:**",
}

// DefaultRoles returns the default role definitions. Each role carries the
// powers of the roles below it in the chain guest < user < creator < admin.
func DefaultRoles() map[auth.Role][]string {
	return map[auth.Role][]string{
		auth.RoleGuest:   guestPowers,
		auth.RoleUser:    compose(guestPowers, userPowers),
		auth.RoleCreator: compose(guestPowers, userPowers, creatorPowers),
		auth.RoleAdmin:   compose(guestPowers, userPowers, creatorPowers, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
