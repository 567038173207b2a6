// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/pkg/errutil"
)

func TestParseRole(t *testing.T) {
	for _, r := range auth.AllRoles() {
		parsed, err := auth.ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	parsed, err := auth.ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, parsed)

	_, err = auth.ParseRole("superuser")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ROLE_INVALID")
}

func TestNewRoles(t *testing.T) {
	t.Run("sorts and removes duplicates", func(t *testing.T) {
		roles, err := auth.NewRoles(auth.RoleAdmin, auth.RoleUser, auth.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, auth.Roles{auth.RoleUser, auth.RoleAdmin}, roles)
	})

	t.Run("rejects values outside the vocabulary", func(t *testing.T) {
		_, err := auth.NewRoles(auth.RoleUser, auth.Role(0))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ROLE_INVALID")
	})

	t.Run("empty set", func(t *testing.T) {
		roles, err := auth.NewRoles()
		require.NoError(t, err)
		assert.Empty(t, roles)
	})
}

func TestParseRoles(t *testing.T) {
	roles, err := auth.ParseRoles("admin", "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, roles.Strings())

	_, err = auth.ParseRoles("user", "root")
	require.Error(t, err)

	assert.Panics(t, func() { auth.MustParseRoles("root") })
}

func TestRoles_Equal(t *testing.T) {
	a := auth.Roles{auth.RoleAdmin, auth.RoleUser}
	assert.True(t, a.Equal(auth.Roles{auth.RoleUser, auth.RoleAdmin}))
	assert.True(t, a.Equal(auth.Roles{auth.RoleUser, auth.RoleAdmin, auth.RoleUser}))
	assert.False(t, a.Equal(auth.Roles{auth.RoleUser}))
	assert.Equal(t, auth.Roles{auth.RoleAdmin, auth.RoleUser}, a, "Equal must not reorder the receiver")
}

func TestRole_JSON(t *testing.T) {
	var roles auth.Roles
	require.NoError(t, json.Unmarshal([]byte(`["editor","user"]`), &roles))
	assert.Equal(t, auth.Roles{auth.RoleEditor, auth.RoleUser}, roles)

	require.Error(t, json.Unmarshal([]byte(`["wizard"]`), &roles))

	_, err := json.Marshal(auth.Roles{auth.Role(9)})
	require.Error(t, err)
}
