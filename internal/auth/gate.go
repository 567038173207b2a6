// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"slices"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Denial messages shown to the user.
const (
	loginRequiredMessage = "Sorry, please login to continue"
	adminOnlyMessage     = "Sorry, only the admin can access this page"
)

// Permissions checked by the HTTP surface. Patterns use ':' as separator.
const (
	PermReadProfile   = "read:profile:self"
	PermWriteProfile  = "write:profile:self"
	PermDeleteAccount = "delete:account:self"
	PermReadUsers     = "read:users"
	PermWriteRoles    = "write:roles"
)

var userPowers = []string{
	"read:profile:self",
	"write:profile:self",
	"delete:account:self",
	"read:content:*",
}

var editorPowers = []string{
	"write:content:*",
	"publish:content:*",
}

var adminPowers = []string{
	"read:**",
	"write:**",
	"grant:**",
}

// DefaultPermissions returns the permission table for the role vocabulary.
// Roles compose permission groups; there is no inheritance.
func DefaultPermissions() map[Role][]string {
	return map[Role][]string{
		RoleUser:   userPowers,
		RoleEditor: slices.Concat(userPowers, editorPowers),
		RoleAdmin:  slices.Concat(userPowers, adminPowers),
	}
}

// Gate maps a session's roles to access decisions. It is a pure function of
// the session and safe for concurrent use.
type Gate struct {
	perms map[Role][]glob.Glob
}

// NewGate compiles a permission table. An invalid role or pattern is an error.
func NewGate(table map[Role][]string) (*Gate, error) {
	perms := make(map[Role][]glob.Glob, len(table))
	for role, patterns := range table {
		if !role.Valid() {
			return nil, oops.In("gate").Code("ROLE_INVALID").With("role", uint8(role)).Errorf("invalid role in permission table")
		}
		compiled := make([]glob.Glob, 0, len(patterns))
		for _, p := range patterns {
			g, err := glob.Compile(p, ':')
			if err != nil {
				return nil, oops.In("gate").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role.String()).
					With("pattern", p).
					Wrap(err)
			}
			compiled = append(compiled, g)
		}
		perms[role] = compiled
	}
	return &Gate{perms: perms}, nil
}

// DefaultGate returns a Gate over DefaultPermissions.
func DefaultGate() *Gate {
	g, err := NewGate(DefaultPermissions())
	if err != nil {
		panic(err)
	}
	return g
}

// IsLoggedIn reports whether the session holds any role.
func (g *Gate) IsLoggedIn(sess *Session) bool {
	return sess != nil && len(sess.Roles) > 0
}

// HasRole reports whether the session holds r.
func (g *Gate) HasRole(sess *Session, r Role) bool {
	return g.IsLoggedIn(sess) && sess.Roles.Has(r)
}

// Can reports whether any of the session's roles grants perm.
func (g *Gate) Can(sess *Session, perm string) bool {
	if !g.IsLoggedIn(sess) {
		return false
	}
	for _, r := range sess.Roles {
		for _, p := range g.perms[r] {
			if p.Match(perm) {
				return true
			}
		}
	}
	return false
}

// RequireLoggedIn returns an ErrForbidden error unless the session is logged in.
func (g *Gate) RequireLoggedIn(sess *Session) error {
	if !g.IsLoggedIn(sess) {
		return forbidden(loginRequiredMessage)
	}
	return nil
}

// RequireRole returns an ErrForbidden error unless the session holds r.
func (g *Gate) RequireRole(sess *Session, r Role) error {
	if err := g.RequireLoggedIn(sess); err != nil {
		return err
	}
	if !sess.Roles.Has(r) {
		msg := "Sorry, you are not allowed to access this page"
		if r == RoleAdmin {
			msg = adminOnlyMessage
		}
		return forbidden(msg)
	}
	return nil
}

// RequirePermission returns an ErrForbidden error unless the session is granted perm.
func (g *Gate) RequirePermission(sess *Session, perm string) error {
	if err := g.RequireLoggedIn(sess); err != nil {
		return err
	}
	if !g.Can(sess, perm) {
		return oops.Code("ACCESS_DENIED").
			With("permission", perm).
			Public("Sorry, you are not allowed to do this").
			Wrapf(ErrForbidden, "permission %q denied", perm)
	}
	return nil
}

func forbidden(msg string) error {
	return oops.Code("ACCESS_DENIED").Public(msg).Wrapf(ErrForbidden, "%s", msg)
}
