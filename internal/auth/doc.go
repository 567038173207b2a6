// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package auth provides authentication and session lifecycle primitives for WellNest.
//
// # Domain Types
//
//   - User - a stored account; a user without a password hash is a guest
//     whose identity is delegated to an external provider
//   - Session - per-connection authentication state, never persisted
//   - Role, Roles - the closed role vocabulary {user, editor, admin}
//
// # Services
//
//   - Service - login (password, token, guest), logout, registration,
//     password reset, detail updates, account administration
//   - Gate - role based authorization decisions over a Session
//   - Validator - input rules for usernames, names, e-mails and passwords
//   - JWTIssuer - signed re-authentication tokens carried in a cookie
//
// Every categorised failure wraps one of the kind sentinels (ErrValidation,
// ErrCredentials, ErrLogin, ErrRegister, ErrReset, ErrUpdate, ErrForbidden)
// so callers can branch with errors.Is, and carries an oops code for logs.
//
// The concurrent-user cap and the single-session check read the store and
// then act without locking. Two near-simultaneous logins can both pass the
// check before either sets the logged-in flag; this race is accepted.
package auth
