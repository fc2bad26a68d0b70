// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package auth provides identity and session management for Postline.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their constructors:
//   - NewUser - creates a User with a validated profile and password hash
//   - NewSession - creates a Session bound to a user with an issued token pair
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - signup, signin, logout, token refresh
//   - SessionService - session create/rotate/clear against the store
//   - UserService - profile CRUD with explicit cascade delete
//
// Services are created with New*Service constructors that validate their
// dependencies.
package auth
