// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
)

// GuestIdentity is a verified identity returned by an external provider.
type GuestIdentity struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

// IdentityProvider delegates authentication to an external service.
type IdentityProvider interface {
	// Name is the provider's route name, e.g. "google".
	Name() string

	// AuthCodeURL returns the URL the user is redirected to. state is echoed
	// back to the callback.
	AuthCodeURL(state string) string

	// Identify exchanges an authorization code for a verified identity.
	Identify(ctx context.Context, code string) (*GuestIdentity, error)
}

// GuestLogin authenticates sess with an identity vouched for by provider.
//
// A first login creates a passwordless account keyed by the e-mail address.
// An e-mail address that already belongs to a password-protected account is
// rejected and that account is left untouched. The capacity and
// single-session limits of password login apply.
func (s *Service) GuestLogin(ctx context.Context, sess *Session, provider IdentityProvider, code string) error {
	identity, err := provider.Identify(ctx, code)
	if err != nil {
		s.metrics.ObserveLogin(MethodGuest, ResultRejected)
		return oops.Code("AUTH_GUEST_IDENTIFY").
			With("provider", provider.Name()).
			Public("Could not verify your identity").
			Wrapf(ErrLogin, "identify with %s: %v", provider.Name(), err)
	}
	email := strings.TrimSpace(identity.Email)
	if email == "" {
		s.metrics.ObserveLogin(MethodGuest, ResultRejected)
		return oops.Code("AUTH_GUEST_IDENTIFY").
			With("provider", provider.Name()).
			Public("Could not verify your identity").
			Wrapf(ErrLogin, "identity without e-mail from %s", provider.Name())
	}
	identity.Email = email

	if err := s.checkCapacity(ctx); err != nil {
		s.metrics.ObserveLogin(MethodGuest, ResultDenied)
		return err
	}

	user, err := s.findGuest(ctx, email)
	if err != nil {
		s.metrics.ObserveLogin(MethodGuest, ResultError)
		return err
	}
	if user != nil && !user.IsGuest() {
		s.metrics.ObserveLogin(MethodGuest, ResultDenied)
		s.logger.WarnContext(ctx, "guest login for password-protected account",
			"email", email, "provider", provider.Name())
		return guestConflict(email)
	}

	if user == nil {
		user = NewGuestUser(*identity, s.guestRoles)
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, ErrDuplicate) {
				s.metrics.ObserveLogin(MethodGuest, ResultDenied)
				return guestConflict(email)
			}
			s.metrics.ObserveLogin(MethodGuest, ResultError)
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "create guest").
				With("email", email).
				Wrap(err)
		}
		s.logger.InfoContext(ctx, "guest account created", "email", email, "provider", provider.Name())
	} else if err := s.checkSingleSession(user); err != nil {
		s.metrics.ObserveLogin(MethodGuest, ResultDenied)
		return err
	}

	if err := s.users.SetLoggedIn(ctx, user.Username, true); err != nil {
		s.metrics.ObserveLogin(MethodGuest, ResultError)
		return oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "set logged in").
			With("username", user.Username).
			Wrap(err)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.metrics.ObserveLogin(MethodGuest, ResultError)
		return oops.Code("AUTH_LOGIN_FAILED").With("operation", "issue token").Wrap(err)
	}

	sess.populate(user)
	sess.ReauthToken = token
	s.metrics.ObserveLogin(MethodGuest, ResultSuccess)
	s.logger.InfoContext(ctx, "user logged in", "username", user.Username, "method", MethodGuest,
		"provider", provider.Name())
	return nil
}

// findGuest returns the account owning email, either as its e-mail address or
// as its username, or nil.
func (s *Service) findGuest(ctx context.Context, email string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return s.lookup(ctx, email)
}

func guestConflict(email string) error {
	return oops.Code("AUTH_GUEST_CONFLICT").
		With("email", email).
		Public("An account with this email already exists. Please log in with your password").
		Wrapf(ErrLogin, "email belongs to a password-protected account")
}
