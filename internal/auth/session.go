// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AuthStatus is the authentication state of a Session.
type AuthStatus uint8

// Authentication states.
//
//	unknown -> authenticated   successful password, token or guest login
//	unknown -> rejected        failed password check
//	*       -> unknown         logout
const (
	StatusUnknown AuthStatus = iota
	StatusAuthenticated
	StatusRejected
)

// String returns the wire name of the status.
func (s AuthStatus) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s AuthStatus) MarshalText() ([]byte, error) {
	switch s {
	case StatusUnknown, StatusAuthenticated, StatusRejected:
		return []byte(s.String()), nil
	default:
		return nil, oops.Code("STATUS_INVALID").Errorf("invalid auth status %d", s)
	}
}

// Session is the authentication state of one connection. It is never shared
// between connections and never persisted.
type Session struct {
	UserID           ulid.ULID  `json:"user_id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name"`
	Picture          string     `json:"picture,omitempty"`
	Roles            Roles      `json:"roles"`
	Status           AuthStatus `json:"status"`
	NeedsCredentials bool       `json:"needs_credentials"`
	PasswordHint     string     `json:"password_hint,omitempty"`

	// ReauthToken is set by a successful password or guest login and is
	// handed to the client as a cookie.
	ReauthToken string `json:"-"`
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{Status: StatusUnknown}
}

// IsAuthenticated reports whether the session completed a login.
func (s *Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Reset clears every field back to the unauthenticated state.
func (s *Session) Reset() {
	*s = Session{Status: StatusUnknown}
}

// populate fills the session from a stored user after a successful login.
func (s *Session) populate(u *User) {
	s.UserID = u.ID
	s.Username = u.Username
	s.Email = u.Email
	s.DisplayName = u.DisplayName()
	s.Picture = u.Picture
	s.Roles = u.Roles
	s.Status = StatusAuthenticated
	s.NeedsCredentials = false
	s.PasswordHint = ""
}
