// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/auth"
)

func TestNewSession(t *testing.T) {
	sess := auth.NewSession()
	assert.Equal(t, auth.StatusUnknown, sess.Status)
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.Roles)
}

func TestSession_Reset(t *testing.T) {
	sess := &auth.Session{
		UserID:       ulid.Make(),
		Username:     "bob",
		Email:        "bob@allowed.edu",
		DisplayName:  "Bob Builder",
		Roles:        auth.Roles{auth.RoleUser},
		Status:       auth.StatusAuthenticated,
		PasswordHint: "hint",
		ReauthToken:  "token",
	}

	sess.Reset()
	assert.Equal(t, *auth.NewSession(), *sess)

	// Reset is idempotent.
	sess.Reset()
	assert.Equal(t, *auth.NewSession(), *sess)
}

func TestSession_JSONOmitsToken(t *testing.T) {
	sess := &auth.Session{
		Username:    "bob",
		Roles:       auth.Roles{auth.RoleUser, auth.RoleAdmin},
		Status:      auth.StatusAuthenticated,
		ReauthToken: "secret-token",
	}

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	body := string(data)
	assert.NotContains(t, body, "secret-token")
	assert.Contains(t, body, `"status":"authenticated"`)
	assert.Contains(t, body, `"roles":["user","admin"]`)
}

func TestAuthStatus_String(t *testing.T) {
	assert.Equal(t, "unknown", auth.StatusUnknown.String())
	assert.Equal(t, "authenticated", auth.StatusAuthenticated.String())
	assert.Equal(t, "rejected", auth.StatusRejected.String())
}
