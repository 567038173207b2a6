// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Password length bounds.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
)

// Default bounds for ValidateLength callers such as the password hint.
const (
	DefaultMinLength = 0
	DefaultMaxLength = 254
)

// passwordSpecials is the fixed set of accepted special characters.
const passwordSpecials = "!@#$%^&*(),.?\":{}|<>_-[]~`+=/\\"

const emailPattern = `[a-zA-Z0-9._%+-]{1,254}@[a-zA-Z0-9.-]{1,253}\.[a-zA-Z]{2,63}`

var (
	emailRegex    = regexp.MustCompile(`^` + emailPattern + `$`)
	usernameRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]{1,20}|` + emailPattern + `)$`)
	nameRegex     = regexp.MustCompile(`^[A-Za-z. ]{2,100}$`)
)

// Validator checks user supplied strings. It holds only the e-mail domain
// allow-list and is safe for concurrent use.
type Validator struct {
	domains map[string]struct{}
}

// NewValidator creates a Validator accepting e-mail addresses in the given domains.
func NewValidator(mailWhitelist []string) *Validator {
	domains := make(map[string]struct{}, len(mailWhitelist))
	for _, d := range mailWhitelist {
		domains[d] = struct{}{}
	}
	return &Validator{domains: domains}
}

// ValidateUsername accepts a bare handle of 1-20 letters, digits, '_' or '-',
// or a syntactically valid e-mail address.
func (v *Validator) ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidateEmail accepts a syntactically valid address whose domain is allow-listed.
func (v *Validator) ValidateEmail(email string) bool {
	if !emailRegex.MatchString(email) {
		return false
	}
	_, domain, _ := strings.Cut(email, "@")
	_, ok := v.domains[domain]
	return ok
}

// ValidateName accepts 2-100 letters, spaces or periods.
func (v *Validator) ValidateName(name string) bool {
	return nameRegex.MatchString(name)
}

// ValidatePassword enforces the fixed complexity rules.
func (v *Validator) ValidatePassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return false
	}

	var upper, lower, digit, special bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

// ValidateLength reports whether s has between minLen and maxLen characters
// inclusive. Line breaks are never accepted.
func (v *Validator) ValidateLength(s string, minLen, maxLen int) bool {
	if strings.ContainsAny(s, "\r\n") {
		return false
	}
	n := utf8.RuneCountInString(s)
	return n >= minLen && n <= maxLen
}

// validationError builds an ErrValidation with a field-specific code.
func validationError(field, msg string) error {
	return oops.Code("VALIDATION_"+strings.ToUpper(field)).
		With("field", field).
		Public(msg).
		Wrapf(ErrValidation, "%s", msg)
}

// RegistrationInput is the data a new account is created from.
type RegistrationInput struct {
	FirstName    string
	LastName     string
	Email        string
	Username     string
	Password     string
	PasswordHint string
	Roles        Roles
}

// validateRegistration checks every field of a registration before any store access.
func (v *Validator) validateRegistration(in RegistrationInput) error {
	switch {
	case !v.ValidateName(in.FirstName):
		return validationError("first_name", "First name is not valid")
	case !v.ValidateName(in.LastName):
		return validationError("last_name", "Last name is not valid")
	case !v.ValidateEmail(in.Email):
		return validationError("email", "Email is not valid")
	case !v.ValidateUsername(in.Username):
		return validationError("username", "Username is not valid")
	case !v.ValidatePassword(in.Password):
		return validationError("password", "Password does not meet criteria")
	case !v.ValidateLength(in.PasswordHint, DefaultMinLength, DefaultMaxLength):
		return validationError("password_hint", "Password hint is not valid")
	}
	return nil
}
