// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness invariant would be violated
	// (duplicate link per user, duplicate category value, duplicate tag label).
	ErrConflict = errors.New("conflict")

	// ErrNoCategories is returned when a post is created before any
	// category exists in the system.
	ErrNoCategories = errors.New("no categories exist")
)
