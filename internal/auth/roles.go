// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"slices"
	"strings"

	"github.com/samber/oops"
)

// Role is a member of the closed role vocabulary. The zero value is not a role.
type Role uint8

// Known roles.
const (
	RoleUser Role = iota + 1
	RoleEditor
	RoleAdmin
)

// AllRoles lists the vocabulary in display order.
func AllRoles() []Role {
	return []Role{RoleUser, RoleEditor, RoleAdmin}
}

// String returns the stored name of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleEditor:
		return "editor"
	case RoleAdmin:
		return "admin"
	default:
		return "invalid"
	}
}

// Valid reports whether r belongs to the vocabulary.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored role name into a Role.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "user":
		return RoleUser, nil
	case "editor":
		return RoleEditor, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, oops.Code("ROLE_INVALID").With("role", name).Errorf("invalid role: %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, oops.Code("ROLE_INVALID").With("role", uint8(r)).Errorf("invalid role value %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Roles is a set of roles kept in vocabulary order without duplicates.
type Roles []Role

// NewRoles builds a role set. Any unknown role is an error, never dropped.
func NewRoles(roles ...Role) (Roles, error) {
	set := make(Roles, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return nil, oops.Code("ROLE_INVALID").With("role", uint8(r)).Errorf("invalid role value %d", r)
		}
		if !slices.Contains(set, r) {
			set = append(set, r)
		}
	}
	slices.Sort(set)
	return set, nil
}

// ParseRoles builds a role set from stored names.
func ParseRoles(names ...string) (Roles, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewRoles(roles...)
}

// MustParseRoles is ParseRoles for compile-time constant names. It panics on
// an unknown name.
func MustParseRoles(names ...string) Roles {
	roles, err := ParseRoles(names...)
	if err != nil {
		panic(err)
	}
	return roles
}

// Has reports whether r is in the set.
func (rs Roles) Has(r Role) bool {
	return slices.Contains(rs, r)
}

// Strings returns the stored names of the set.
func (rs Roles) Strings() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.String()
	}
	return names
}

// Equal reports whether both sets contain the same roles.
func (rs Roles) Equal(other Roles) bool {
	a := slices.Clone(rs)
	b := slices.Clone(other)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}
