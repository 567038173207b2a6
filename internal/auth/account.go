// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// SearchLimit caps the result of SearchUsers.
const SearchLimit = 20

// Profile is the private view of an account shown to its owner.
type Profile struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Picture   string   `json:"picture,omitempty"`
	Roles     []string `json:"roles"`
	Guest     bool     `json:"guest"`
}

func newProfile(u *User) *Profile {
	return &Profile{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Picture:   u.Picture,
		Roles:     u.Roles.Strings(),
		Guest:     u.IsGuest(),
	}
}

// Profile returns the private view of username.
func (s *Service) Profile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Public("User not found").
			Wrapf(ErrNotFound, "user %q", username)
	}
	return newProfile(user), nil
}

// SearchUsers lists accounts whose e-mail contains fragment, ordered by
// e-mail. An empty fragment matches every account.
func (s *Service) SearchUsers(ctx context.Context, fragment string) ([]*Profile, error) {
	users, err := s.users.SearchByEmail(ctx, fragment, SearchLimit)
	if err != nil {
		return nil, oops.Code("USER_SEARCH_FAILED").With("fragment", fragment).Wrap(err)
	}
	out := make([]*Profile, 0, len(users))
	for _, u := range users {
		out = append(out, newProfile(u))
	}
	return out, nil
}

// UpdateRoles replaces the role set of the account owning email. Only an
// administrator may change roles.
func (s *Service) UpdateRoles(ctx context.Context, actor *Session, email string, roles Roles) error {
	if actor == nil || !actor.IsAuthenticated() || !actor.Roles.Has(RoleAdmin) {
		return forbidden(adminOnlyMessage)
	}

	set, err := NewRoles(roles...)
	if err != nil {
		return oops.Code("VALIDATION_ROLES").
			Public("Invalid role").
			Wrapf(ErrValidation, "%v", err)
	}
	if len(set) == 0 {
		return validationError("roles", "At least one role is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return updateError("UPDATE_USER_NOT_FOUND", "User not found", email)
	}
	if err != nil {
		return oops.Code("UPDATE_FAILED").With("operation", "get user by email").Wrap(err)
	}
	if user.Roles.Equal(set) {
		return updateError("UPDATE_UNCHANGED", "New and current values are the same", user.Username)
	}

	if err := s.users.UpdateFields(ctx, user.Username, UserUpdate{Roles: set}); err != nil {
		return oops.Code("UPDATE_FAILED").
			With("operation", "update roles").
			With("username", user.Username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "roles updated",
		"actor", actor.Username,
		"target", user.Username,
		"old_roles", user.Roles.Strings(),
		"new_roles", set.Strings())
	return nil
}

// DeleteAccount removes the account behind sess and logs it out.
// Administrators cannot delete themselves.
func (s *Service) DeleteAccount(ctx context.Context, sess *Session) error {
	if !sess.IsAuthenticated() {
		return forbidden(loginRequiredMessage)
	}
	if sess.Roles.Has(RoleAdmin) {
		return oops.Code("ACCOUNT_ADMIN_DELETE").
			With("username", sess.Username).
			Public("Admin accounts cannot be deleted").
			Wrapf(ErrForbidden, "admin accounts cannot be deleted")
	}

	if err := s.users.Delete(ctx, sess.UserID); err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("ACCOUNT_DELETE_FAILED").
			With("username", sess.Username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account deleted", "username", sess.Username)
	sess.Reset()
	return nil
}
