// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/pkg/errutil"
)

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestNewJWTIssuer(t *testing.T) {
	t.Run("missing secret is fatal", func(t *testing.T) {
		issuer, err := auth.NewJWTIssuer("", 30)
		require.Error(t, err)
		assert.Nil(t, issuer)
		errutil.AssertErrorCode(t, err, "TOKEN_SECRET_MISSING")
	})

	t.Run("non-positive expiry is rejected", func(t *testing.T) {
		_, err := auth.NewJWTIssuer("secret", 0)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_EXPIRY_INVALID")
	})

	t.Run("expiry is measured in days", func(t *testing.T) {
		issuer, err := auth.NewJWTIssuer("secret", 2)
		require.NoError(t, err)
		assert.Equal(t, 48*time.Hour, issuer.Expiry())
	})
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer, err := auth.NewJWTIssuer("test-secret", 30, auth.WithClock(clock.Now))
	require.NoError(t, err)

	for _, username := range []string{"bob", "alice@allowed.edu", "x", "under_score-dash"} {
		t.Run(username, func(t *testing.T) {
			token, err := issuer.Issue(username)
			require.NoError(t, err)

			got, ok := issuer.Verify(token)
			require.True(t, ok)
			assert.Equal(t, username, got)
		})
	}
}

func TestJWTIssuer_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	issuer, err := auth.NewJWTIssuer("test-secret", 1, auth.WithClock(clock.Now))
	require.NoError(t, err)

	token, err := issuer.Issue("bob")
	require.NoError(t, err)

	clock.now = issuedAt.Add(24*time.Hour - time.Second)
	_, ok := issuer.Verify(token)
	assert.True(t, ok, "token should be valid just before expiry")

	clock.now = issuedAt.Add(24*time.Hour + time.Second)
	username, ok := issuer.Verify(token)
	assert.False(t, ok, "token should be invalid after expiry")
	assert.Empty(t, username)
}

func TestJWTIssuer_VerifyRejects(t *testing.T) {
	issuer, err := auth.NewJWTIssuer("test-secret", 30)
	require.NoError(t, err)
	other, err := auth.NewJWTIssuer("other-secret", 30)
	require.NoError(t, err)

	valid, err := issuer.Issue("bob")
	require.NoError(t, err)
	foreign, err := other.Issue("bob")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.ReauthClaims{Username: "bob"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.ReauthClaims{
		Username: "bob",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"tampered":       tampered,
		"missing expiry": noExpiry,
		"alg none":       unsigned,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			username, ok := issuer.Verify(token)
			assert.False(t, ok)
			assert.Empty(t, username)
		})
	}
}

func TestJWTIssuer_IssueRequiresUsername(t *testing.T) {
	issuer, err := auth.NewJWTIssuer("test-secret", 30)
	require.NoError(t, err)

	_, err = issuer.Issue("")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "TOKEN_ISSUE_FAILED")
}
