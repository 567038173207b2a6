// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by a UserRepository when a unique column collides.
var ErrDuplicate = errors.New("duplicate")

// ErrMalformedDigest is wrapped by PasswordHasher.Verify when the stored digest
// was not produced by a supported hasher.
var ErrMalformedDigest = errors.New("malformed password digest")

// Error kinds. Every expected, caller-recoverable failure wraps exactly one.
var (
	ErrValidation  = errors.New("validation error")
	ErrCredentials = errors.New("credentials error")
	ErrLogin       = errors.New("login error")
	ErrRegister    = errors.New("register error")
	ErrReset       = errors.New("reset error")
	ErrUpdate      = errors.New("update error")
	ErrForbidden   = errors.New("forbidden")
)
