// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package access provides role-based authorization for Postline.
//
// Permissions are "action:resource" patterns compiled as globs with ':' as
// the separator, e.g. "read:post:*" or "write:user:$self". The "$self"
// placeholder matches the resource segment carrying the caller's own ID.
package access

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/auth"
)

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// Policy decides whether a role may perform an action on a resource.
//
// Thread-safety: the compiled role map is immutable after construction and
// requires no synchronization.
type Policy struct {
	roles map[auth.Role][]compiledPermission
}

// NewPolicy creates a Policy with the default role definitions.
//
// Panics if the default patterns contain invalid glob syntax (code bug).
func NewPolicy() *Policy {
	p, err := NewPolicyWithRoles(DefaultRoles())
	if err != nil {
		// DefaultRoles() patterns are hardcoded and should always be valid.
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return p
}

// NewPolicyWithRoles creates a Policy with custom role definitions.
// Returns an error if any pattern fails to compile.
func NewPolicyWithRoles(roles map[auth.Role][]string) (*Policy, error) {
	compiled := make(map[auth.Role][]compiledPermission, len(roles))
	for role, perms := range roles {
		cp := make([]compiledPermission, 0, len(perms))
		for _, pattern := range perms {
			g, err := glob.Compile(pattern, ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", string(role)).
					With("pattern", pattern).
					Wrap(err)
			}
			cp = append(cp, compiledPermission{pattern: pattern, glob: g})
		}
		compiled[role] = cp
	}
	return &Policy{roles: compiled}, nil
}

// Allows reports whether the role may perform action on resource.
// Unknown roles and empty actions are denied.
func (p *Policy) Allows(identity Identity, action, resource string) bool {
	if action == "" || resource == "" {
		return false
	}
	perms, ok := p.roles[identity.Role]
	if !ok {
		return false
	}

	target := action + ":" + resource
	for _, perm := range perms {
		pattern := perm
		if strings.Contains(pattern.pattern, "$self") {
			if identity.Subject == "" {
				continue
			}
			expanded, err := glob.Compile(strings.ReplaceAll(pattern.pattern, "$self", identity.Subject), ':')
			if err != nil {
				continue
			}
			pattern = compiledPermission{pattern: pattern.pattern, glob: expanded}
		}
		if pattern.glob.Match(target) {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller as seen by the policy.
type Identity struct {
	// Subject is the caller's user ID, empty for anonymous callers.
	Subject string
	Role    auth.Role
}

// Anonymous is the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{Role: auth.RoleGuest}
}
