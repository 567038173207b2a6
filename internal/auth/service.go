// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Policy holds the static login limits. Zero values disable a limit.
type Policy struct {
	MaxConcurrentUsers int
	MaxLoginAttempts   int
	SingleSession      bool
}

// Login methods and results reported to Metrics.
const (
	MethodPassword = "password"
	MethodToken    = "token"
	MethodGuest    = "guest"

	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultDenied   = "denied"
	ResultError    = "error"
)

// Metrics receives authentication outcomes.
type Metrics interface {
	ObserveLogin(method, result string)
	ObserveRegistration(result string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveLogin(string, string) {}
func (noopMetrics) ObserveRegistration(string)  {}

// Service orchestrates the authentication lifecycle. It holds no per-connection
// state; every operation that changes authentication state takes the caller's
// Session.
type Service struct {
	users      UserRepository
	hasher     PasswordHasher
	tokens     TokenIssuer
	validator  *Validator
	policy     Policy
	guestRoles Roles
	metrics    Metrics
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPolicy sets the login limits.
func WithPolicy(p Policy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

// WithGuestRoles sets the roles given to accounts created by guest login.
func WithGuestRoles(roles Roles) ServiceOption {
	return func(s *Service) {
		if len(roles) > 0 {
			s.guestRoles = roles
		}
	}
}

// WithMetrics sets the outcome recorder.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates a Service that logs to slog.Default().
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, validator *Validator, opts ...ServiceOption) (*Service, error) {
	return NewServiceWithLogger(users, hasher, tokens, validator, slog.Default(), opts...)
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, validator *Validator, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("token issuer is required")
	}
	if validator == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("validator is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}

	s := &Service{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		validator:  validator,
		guestRoles: Roles{RoleUser},
		metrics:    noopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validator returns the input validator the service enforces.
func (s *Service) Validator() *Validator {
	return s.validator
}

// dummyPasswordHash is verified when a user doesn't exist so that response
// time does not reveal whether the username is known. It never matches.
//
//nolint:gosec // G101: intentionally fake digest, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CheckCredentials reports whether password matches the stored digest of
// username. A missing user, a guest account or a malformed digest all yield false.
func (s *Service) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}
	return s.verify(ctx, user, password), nil
}

// lookup returns the user or nil when it does not exist.
func (s *Service) lookup(ctx context.Context, username string) (*User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// verify runs the hasher against the user's digest, or a dummy digest when
// there is no usable one.
func (s *Service) verify(ctx context.Context, user *User, password string) bool {
	ok, _ := s.check(ctx, user, password)
	return ok
}

// check is verify that also reports whether a failure was a genuine mismatch
// against a stored password digest. Unknown users, guest accounts and
// malformed digests are never mismatches.
func (s *Service) check(ctx context.Context, user *User, password string) (ok, mismatch bool) {
	digest := dummyPasswordHash
	if user != nil && !user.IsGuest() {
		digest = user.PasswordHash
	}

	ok, err := s.hasher.Verify(password, digest)
	if err != nil {
		attrs := []any{"code", "AUTH_INVALID_HASH", "error", err}
		if user != nil {
			attrs = append(attrs, "username", user.Username)
		}
		if errors.Is(err, ErrMalformedDigest) {
			s.logger.WarnContext(ctx, "malformed password digest", attrs...)
		} else {
			s.logger.ErrorContext(ctx, "password verification failed", attrs...)
		}
		return false, false
	}
	if user == nil || user.IsGuest() {
		return false, false
	}
	return ok, !ok
}

// Login authenticates username/password into sess.
//
// An empty username marks the session as waiting for credentials and returns
// StatusUnknown without touching the store. A missing user or wrong password
// returns StatusRejected with a nil error and clears any identity sess held;
// only a mismatch against a stored digest counts as a failed attempt.
// Capacity, lockout and single-session limits are enforced only after the
// password verified and fail with ErrLogin.
func (s *Service) Login(ctx context.Context, sess *Session, username, password string) (AuthStatus, error) {
	if username == "" {
		sess.NeedsCredentials = true
		return StatusUnknown, nil
	}
	sess.NeedsCredentials = false

	user, err := s.lookup(ctx, username)
	if err != nil {
		s.metrics.ObserveLogin(MethodPassword, ResultError)
		return StatusUnknown, err
	}

	if ok, mismatch := s.check(ctx, user, password); !ok {
		if mismatch {
			s.recordFailure(ctx, user)
		}
		sess.Reset()
		sess.Status = StatusRejected
		if user != nil {
			sess.PasswordHint = user.PasswordHint
		}
		s.metrics.ObserveLogin(MethodPassword, ResultRejected)
		s.logger.DebugContext(ctx, "login rejected", "username", username)
		return StatusRejected, nil
	}

	if err := s.checkCapacity(ctx); err != nil {
		s.metrics.ObserveLogin(MethodPassword, ResultDenied)
		return StatusUnknown, err
	}
	if s.policy.MaxLoginAttempts > 0 && user.FailedLoginAttempts >= s.policy.MaxLoginAttempts {
		s.metrics.ObserveLogin(MethodPassword, ResultDenied)
		return StatusUnknown, oops.Code("AUTH_LOGIN_LOCKED").
			With("username", username).
			With("failed_attempts", user.FailedLoginAttempts).
			Public("Maximum number of login attempts exceeded").
			Wrapf(ErrLogin, "maximum number of login attempts exceeded")
	}
	if err := s.checkSingleSession(user); err != nil {
		s.metrics.ObserveLogin(MethodPassword, ResultDenied)
		return StatusUnknown, err
	}

	s.upgradeDigest(ctx, user, password)

	if err := s.users.SetLoggedIn(ctx, username, true); err != nil {
		s.metrics.ObserveLogin(MethodPassword, ResultError)
		return StatusUnknown, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "set logged in").
			With("username", username).
			Wrap(err)
	}
	if err := s.users.ResetFailedAttempts(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "failed to reset failed-attempt counter",
			"username", username, "error", err)
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		s.metrics.ObserveLogin(MethodPassword, ResultError)
		return StatusUnknown, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	user.FailedLoginAttempts = 0
	sess.populate(user)
	sess.ReauthToken = token
	s.metrics.ObserveLogin(MethodPassword, ResultSuccess)
	s.logger.InfoContext(ctx, "user logged in", "username", username, "method", MethodPassword)
	return StatusAuthenticated, nil
}

// recordFailure bumps the failed-attempt counter. Write failures are logged
// and never change the login result.
func (s *Service) recordFailure(ctx context.Context, user *User) {
	if user == nil {
		return
	}
	if err := s.users.IncrementFailedAttempts(ctx, user.Username); err != nil {
		s.logger.WarnContext(ctx, "failed to record failed login attempt",
			"username", user.Username, "error", err)
	}
}

// upgradeDigest rehashes a legacy digest after a successful password check.
func (s *Service) upgradeDigest(ctx context.Context, user *User, password string) {
	if !s.hasher.NeedsUpgrade(user.PasswordHash) {
		return
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to rehash legacy digest", "username", user.Username, "error", err)
		return
	}
	if err := s.users.UpdateFields(ctx, user.Username, UserUpdate{PasswordHash: &digest}); err != nil {
		s.logger.WarnContext(ctx, "failed to store upgraded digest", "username", user.Username, "error", err)
		return
	}
	user.PasswordHash = digest
}

// checkCapacity fails when admitting one more user would exceed the cap.
func (s *Service) checkCapacity(ctx context.Context) error {
	if s.policy.MaxConcurrentUsers <= 0 {
		return nil
	}
	n, err := s.users.Count(ctx, LoggedInFilter())
	if err != nil {
		return oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "count logged in users").
			Wrap(err)
	}
	if n > s.policy.MaxConcurrentUsers-1 {
		return oops.Code("AUTH_LOGIN_CAPACITY").
			With("logged_in", n).
			With("max_concurrent_users", s.policy.MaxConcurrentUsers).
			Public("Maximum number of concurrent users exceeded").
			Wrapf(ErrLogin, "maximum number of concurrent users exceeded")
	}
	return nil
}

func (s *Service) checkSingleSession(user *User) error {
	if s.policy.SingleSession && user.LoggedIn {
		return oops.Code("AUTH_LOGIN_SINGLE_SESSION").
			With("username", user.Username).
			Public("Cannot log in multiple sessions").
			Wrapf(ErrLogin, "cannot log in multiple sessions")
	}
	return nil
}

// LoginWithToken re-authenticates sess from a re-authentication token.
//
// An invalid or expired token returns (false, nil): the caller must drop the
// token. A valid token for a user that no longer exists fails with ErrLogin.
// The failed-attempt counter is not touched.
func (s *Service) LoginWithToken(ctx context.Context, sess *Session, token string) (bool, error) {
	username, ok := s.tokens.Verify(token)
	if !ok {
		s.metrics.ObserveLogin(MethodToken, ResultRejected)
		return false, nil
	}
	sess.NeedsCredentials = false

	user, err := s.lookup(ctx, username)
	if err != nil {
		s.metrics.ObserveLogin(MethodToken, ResultError)
		return false, err
	}
	if user == nil {
		s.metrics.ObserveLogin(MethodToken, ResultDenied)
		return false, oops.Code("AUTH_LOGIN_NOT_AUTHORIZED").
			With("username", username).
			Public("User not authorized").
			Wrapf(ErrLogin, "user not authorized")
	}

	if err := s.users.SetLoggedIn(ctx, username, true); err != nil {
		s.metrics.ObserveLogin(MethodToken, ResultError)
		return false, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "set logged in").
			With("username", username).
			Wrap(err)
	}

	sess.populate(user)
	s.metrics.ObserveLogin(MethodToken, ResultSuccess)
	return true, nil
}

// Logout clears the logged-in flag and resets sess. Logging out an
// unauthenticated session is a no-op. A failed flag write is logged; the
// session is reset regardless.
func (s *Service) Logout(ctx context.Context, sess *Session) {
	if sess.Username != "" {
		if err := s.users.SetLoggedIn(ctx, sess.Username, false); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to clear logged-in flag",
				"username", sess.Username, "error", err)
		}
		s.logger.InfoContext(ctx, "user logged out", "username", sess.Username)
	}
	sess.Reset()
}

// RegisterUser creates a password-protected account. The caller's session is
// not authenticated by registering.
func (s *Service) RegisterUser(ctx context.Context, in RegistrationInput) (*User, error) {
	if err := s.validator.validateRegistration(in); err != nil {
		s.metrics.ObserveRegistration(ResultRejected)
		return nil, err
	}
	if len(in.Roles) == 0 {
		in.Roles = Roles{RoleUser}
	}

	taken, err := s.users.Count(ctx, UserFilter{Email: in.Email})
	if err != nil {
		s.metrics.ObserveRegistration(ResultError)
		return nil, oops.Code("REGISTER_FAILED").With("operation", "count by email").Wrap(err)
	}
	if taken > 0 {
		s.metrics.ObserveRegistration(ResultRejected)
		return nil, registerTaken("REGISTER_EMAIL_TAKEN", "Email already taken", "email", in.Email)
	}

	taken, err = s.users.Count(ctx, UserFilter{Username: in.Username})
	if err != nil {
		s.metrics.ObserveRegistration(ResultError)
		return nil, oops.Code("REGISTER_FAILED").With("operation", "count by username").Wrap(err)
	}
	if taken > 0 {
		s.metrics.ObserveRegistration(ResultRejected)
		return nil, registerTaken("REGISTER_USERNAME_TAKEN", "Username already taken", "username", in.Username)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.metrics.ObserveRegistration(ResultError)
		return nil, oops.Code("REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := NewUser(in.Username, in.Email, in.FirstName, in.LastName, digest, in.PasswordHint, in.Roles)
	if err != nil {
		s.metrics.ObserveRegistration(ResultError)
		return nil, oops.Code("REGISTER_FAILED").With("operation", "build user").Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.metrics.ObserveRegistration(ResultRejected)
			return nil, registerTaken("REGISTER_DUPLICATE", "Email or username already taken", "username", in.Username)
		}
		s.metrics.ObserveRegistration(ResultError)
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "create user").
			With("username", in.Username).
			Wrap(err)
	}

	s.metrics.ObserveRegistration(ResultSuccess)
	s.logger.InfoContext(ctx, "user registered", "username", user.Username, "roles", user.Roles.Strings())
	return user, nil
}

func registerTaken(code, msg, key, value string) error {
	return oops.Code(code).With(key, value).Public(msg).Wrapf(ErrRegister, "%s", msg)
}

// ResetPassword replaces the password of username after checking the current
// one, and clears the failed-attempt counter. Guest accounts can never reset.
func (s *Service) ResetPassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	if user != nil && user.IsGuest() {
		return oops.Code("RESET_GUEST").
			With("username", username).
			Public("Guest user cannot reset password").
			Wrapf(ErrReset, "guest user cannot reset password")
	}
	if !s.validator.ValidatePassword(newPassword) {
		return validationError("password", "Password does not meet criteria")
	}
	if !s.verify(ctx, user, currentPassword) {
		return oops.Code("AUTH_INVALID_CREDENTIALS").
			With("username", username).
			Public("Current password is incorrect").
			Wrapf(ErrCredentials, "password")
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_FAILED").With("operation", "hash password").Wrap(err)
	}
	if err := s.users.UpdateFields(ctx, username, UserUpdate{PasswordHash: &digest}); err != nil {
		return oops.Code("RESET_FAILED").
			With("operation", "update password").
			With("username", username).
			Wrap(err)
	}
	if err := s.users.ResetFailedAttempts(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "failed to reset failed-attempt counter",
			"username", username, "error", err)
	}

	s.logger.InfoContext(ctx, "password reset", "username", username)
	return nil
}

// UpdateUserDetails changes one detail of username. A changed e-mail must not
// belong to another user; an unchanged value is rejected. When sess belongs to
// username its cached e-mail and display name are refreshed.
func (s *Service) UpdateUserDetails(ctx context.Context, sess *Session, username string, field UserField, value string) error {
	switch field {
	case FieldEmail:
		if !s.validator.ValidateEmail(value) {
			return validationError("email", "Email is not valid")
		}
	case FieldFirstName, FieldLastName:
		if !s.validator.ValidateName(value) {
			return validationError(string(field), "Name is not valid")
		}
	default:
		_, err := ParseUserField(string(field))
		return err
	}

	if field == FieldEmail {
		existing, err := s.users.GetByEmail(ctx, value)
		switch {
		case err == nil && existing.Username != username:
			return updateError("UPDATE_EMAIL_TAKEN", "Email already taken", username)
		case err != nil && !errors.Is(err, ErrNotFound):
			return oops.Code("UPDATE_FAILED").With("operation", "get user by email").Wrap(err)
		}
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return updateError("UPDATE_USER_NOT_FOUND", "User not found", username)
	}
	if user.value(field) == value {
		return updateError("UPDATE_UNCHANGED", "New and current values are the same", username)
	}

	if err := s.users.UpdateFields(ctx, username, fieldUpdate(field, value)); err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			return updateError("UPDATE_EMAIL_TAKEN", "Email already taken", username)
		case errors.Is(err, ErrNotFound):
			return updateError("UPDATE_USER_NOT_FOUND", "User not found", username)
		}
		return oops.Code("UPDATE_FAILED").
			With("operation", "update fields").
			With("username", username).
			With("field", string(field)).
			Wrap(err)
	}

	if sess != nil && sess.Username == username {
		switch field {
		case FieldEmail:
			sess.Email = value
		case FieldFirstName:
			user.FirstName = value
			sess.DisplayName = user.DisplayName()
		case FieldLastName:
			user.LastName = value
			sess.DisplayName = user.DisplayName()
		}
	}

	s.logger.InfoContext(ctx, "user details updated", "username", username, "field", string(field))
	return nil
}

func updateError(code, msg, username string) error {
	return oops.Code(code).With("username", username).Public(msg).Wrapf(ErrUpdate, "%s", msg)
}
