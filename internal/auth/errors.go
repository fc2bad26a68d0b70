// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness invariant would be violated
	// (duplicate email, duplicate session for a user).
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned for bad credentials, invalid or expired
	// tokens, and refresh token mismatches.
	ErrForbidden = errors.New("forbidden")
)
