// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"context"

	"github.com/wellnest/wellnest/internal/auth"
)

// AuthService is the part of auth.Service the HTTP surface drives.
type AuthService interface {
	Login(ctx context.Context, sess *auth.Session, username, password string) (auth.AuthStatus, error)
	LoginWithToken(ctx context.Context, sess *auth.Session, token string) (bool, error)
	Logout(ctx context.Context, sess *auth.Session)
	GuestLogin(ctx context.Context, sess *auth.Session, provider auth.IdentityProvider, code string) error
	RegisterUser(ctx context.Context, in auth.RegistrationInput) (*auth.User, error)
	ResetPassword(ctx context.Context, username, currentPassword, newPassword string) error
	UpdateUserDetails(ctx context.Context, sess *auth.Session, username string, field auth.UserField, value string) error
	Profile(ctx context.Context, username string) (*auth.Profile, error)
	SearchUsers(ctx context.Context, fragment string) ([]*auth.Profile, error)
	UpdateRoles(ctx context.Context, actor *auth.Session, email string, roles auth.Roles) error
	DeleteAccount(ctx context.Context, sess *auth.Session) error
}

// StateStore issues and consumes single-use OAuth state nonces.
type StateStore interface {
	Issue(ctx context.Context, provider string) (string, error)
	Consume(ctx context.Context, state, provider string) error
}

// RequestMetrics counts served requests.
type RequestMetrics interface {
	ObserveRequest(route string, status int)
}

type noopRequestMetrics struct{}

func (noopRequestMetrics) ObserveRequest(string, int) {}

var _ AuthService = (*auth.Service)(nil)
