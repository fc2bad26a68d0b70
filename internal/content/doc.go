// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package content provides the post, category, and tag domain for Postline.
//
// Posts belong to one user and reference categories (pre-existing only) and
// tags (created on demand by label). Post creation and update run inside a
// single transaction so relation resolution never leaks partial rows.
//
// Repository interfaces live here; PostgreSQL implementations are in the
// postgres subpackage.
package content
