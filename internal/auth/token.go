// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenIssuer mints and checks re-authentication tokens.
type TokenIssuer interface {
	// Issue returns a signed token bound to username.
	Issue(username string) (string, error)

	// Verify returns the bound username. Any failure (bad signature, expired,
	// malformed) yields ok == false and never an error.
	Verify(token string) (username string, ok bool)
}

// ReauthClaims are the claims carried by a re-authentication token.
type ReauthClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTIssuer implements TokenIssuer with HS256 JSON Web Tokens.
type JWTIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// TokenOption configures a JWTIssuer.
type TokenOption func(*JWTIssuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(i *JWTIssuer) {
		i.now = now
	}
}

// NewJWTIssuer creates a JWTIssuer. An empty secret is a fatal configuration error.
func NewJWTIssuer(secret string, expiryDays int, opts ...TokenOption) (*JWTIssuer, error) {
	if secret == "" {
		return nil, oops.Code("TOKEN_SECRET_MISSING").Errorf("token signing secret is required")
	}
	if expiryDays <= 0 {
		return nil, oops.Code("TOKEN_EXPIRY_INVALID").
			With("expiry_days", expiryDays).
			Errorf("token expiry must be at least one day")
	}

	i := &JWTIssuer{
		secret: []byte(secret),
		expiry: time.Duration(expiryDays) * 24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Expiry returns the validity window of issued tokens.
func (i *JWTIssuer) Expiry() time.Duration {
	return i.expiry
}

// Issue returns a signed token bound to username.
func (i *JWTIssuer) Issue(username string) (string, error) {
	if username == "" {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Errorf("username is required")
	}

	now := i.now()
	claims := ReauthClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").With("username", username).Wrap(err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the bound username.
func (i *JWTIssuer) Verify(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := &ReauthClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid || claims.Username == "" {
		return "", false
	}
	return claims.Username, true
}

var _ TokenIssuer = (*JWTIssuer)(nil)
