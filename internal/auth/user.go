// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User is a stored account. Username and Email are each globally unique.
type User struct {
	ID                  ulid.ULID
	Username            string
	Email               string
	FirstName           string
	LastName            string
	PasswordHash        string // empty for guest accounts
	PasswordHint        string
	Picture             string
	Roles               Roles
	FailedLoginAttempts int
	LoggedIn            bool
	CreatedAt           time.Time
}

// NewUser creates a password-protected User.
func NewUser(username, email, firstName, lastName, passwordHash, hint string, roles Roles) (*User, error) {
	if username == "" {
		return nil, oops.Code("USER_INVALID").Errorf("username cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("USER_INVALID").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID").Errorf("password hash cannot be empty")
	}
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		PasswordHint: hint,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// NewGuestUser creates a passwordless account for an external identity.
// The e-mail address doubles as the username.
func NewGuestUser(identity GuestIdentity, roles Roles) *User {
	return &User{
		ID:        ulid.Make(),
		Username:  identity.Email,
		Email:     identity.Email,
		FirstName: identity.GivenName,
		LastName:  identity.FamilyName,
		Picture:   identity.Picture,
		Roles:     roles,
		CreatedAt: time.Now().UTC(),
	}
}

// IsGuest reports whether the account has no local password.
func (u *User) IsGuest() bool {
	return u.PasswordHash == ""
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserField names a user detail that can be changed by its owner.
type UserField string

// Updatable user fields.
const (
	FieldEmail     UserField = "email"
	FieldFirstName UserField = "first_name"
	FieldLastName  UserField = "last_name"
)

// ParseUserField validates a field name.
func ParseUserField(name string) (UserField, error) {
	switch f := UserField(name); f {
	case FieldEmail, FieldFirstName, FieldLastName:
		return f, nil
	default:
		return "", oops.Code("UPDATE_FIELD_INVALID").
			With("field", name).
			Public("This field cannot be updated").
			Wrapf(ErrValidation, "unknown field %q", name)
	}
}

// value returns the current value of f on u.
func (u *User) value(f UserField) string {
	switch f {
	case FieldEmail:
		return u.Email
	case FieldFirstName:
		return u.FirstName
	case FieldLastName:
		return u.LastName
	default:
		return ""
	}
}

// UserFilter selects users for Count. Zero fields do not constrain.
type UserFilter struct {
	Username string
	Email    string
	LoggedIn *bool
}

// LoggedInFilter selects users whose logged-in flag is set.
func LoggedInFilter() UserFilter {
	loggedIn := true
	return UserFilter{LoggedIn: &loggedIn}
}

// UserUpdate lists the columns to change. Nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	PasswordHash *string
	Roles        Roles
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.FirstName == nil && u.LastName == nil &&
		u.PasswordHash == nil && u.Roles == nil
}

// fieldUpdate builds a UserUpdate that sets f to value.
func fieldUpdate(f UserField, value string) UserUpdate {
	switch f {
	case FieldEmail:
		return UserUpdate{Email: &value}
	case FieldFirstName:
		return UserUpdate{FirstName: &value}
	case FieldLastName:
		return UserUpdate{LastName: &value}
	default:
		return UserUpdate{}
	}
}

// UserRepository is the credential store. Each method is a single logical,
// row-atomic operation.
type UserRepository interface {
	// GetByUsername returns ErrNotFound if no user has the username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail returns ErrNotFound if no user has the e-mail address.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter UserFilter) (int, error)

	// Create stores a new user. Returns ErrDuplicate on a username or e-mail collision.
	Create(ctx context.Context, user *User) error

	// UpdateFields changes the given columns of the user.
	// Returns ErrNotFound if the user does not exist, ErrDuplicate on an e-mail collision.
	UpdateFields(ctx context.Context, username string, update UserUpdate) error

	// IncrementFailedAttempts atomically adds one to the failed-login counter.
	IncrementFailedAttempts(ctx context.Context, username string) error

	// ResetFailedAttempts atomically sets the failed-login counter to zero.
	ResetFailedAttempts(ctx context.Context, username string) error

	// SetLoggedIn toggles the logged-in flag.
	SetLoggedIn(ctx context.Context, username string, loggedIn bool) error

	// SearchByEmail returns users whose e-mail contains fragment, ordered by
	// e-mail, at most limit rows.
	SearchByEmail(ctx context.Context, fragment string, limit int) ([]*User, error)

	// Delete removes a user.
	Delete(ctx context.Context, id ulid.ULID) error
}
