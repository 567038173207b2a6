// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/internal/auth/redisstate"
)

func newContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(httptest.NewRequest(method, "/", http.NoBody), rec), rec
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", oops.Code("VALIDATION_EMAIL").Wrapf(auth.ErrValidation, "email"), http.StatusBadRequest},
		{"credentials", oops.Code("AUTH_INVALID_CREDENTIALS").Wrapf(auth.ErrCredentials, "password"), http.StatusUnauthorized},
		{"capacity", oops.Code("AUTH_LOGIN_CAPACITY").Wrapf(auth.ErrLogin, "full"), http.StatusForbidden},
		{"locked", oops.Code("AUTH_LOGIN_LOCKED").Wrapf(auth.ErrLogin, "locked"), http.StatusForbidden},
		{"single session", oops.Code("AUTH_LOGIN_SINGLE_SESSION").Wrapf(auth.ErrLogin, "busy"), http.StatusConflict},
		{"guest conflict", oops.Code("AUTH_GUEST_CONFLICT").Wrapf(auth.ErrLogin, "taken"), http.StatusConflict},
		{"other login error", oops.Code("AUTH_LOGIN_NOT_AUTHORIZED").Wrapf(auth.ErrLogin, "nope"), http.StatusUnauthorized},
		{"register", oops.Code("REGISTER_EMAIL_TAKEN").Wrapf(auth.ErrRegister, "taken"), http.StatusConflict},
		{"reset", oops.Code("RESET_GUEST").Wrapf(auth.ErrReset, "guest"), http.StatusForbidden},
		{"update missing user", oops.Code("UPDATE_USER_NOT_FOUND").Wrapf(auth.ErrUpdate, "missing"), http.StatusNotFound},
		{"update unchanged", oops.Code("UPDATE_UNCHANGED").Wrapf(auth.ErrUpdate, "same"), http.StatusBadRequest},
		{"update email taken", oops.Code("UPDATE_EMAIL_TAKEN").Wrapf(auth.ErrUpdate, "taken"), http.StatusConflict},
		{"forbidden anonymous", oops.Code("ACCESS_DENIED").Wrapf(auth.ErrForbidden, "login"), http.StatusUnauthorized},
		{"not found", oops.Code("USER_NOT_FOUND").Wrapf(auth.ErrNotFound, "bob"), http.StatusNotFound},
		{"oauth state", oops.Code("OAUTH_STATE_INVALID").Wrapf(redisstate.ErrInvalidState, "stale"), http.StatusBadRequest},
		{"echo error", echo.NewHTTPError(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodGet)
			assert.Equal(t, tt.want, statusOf(c, tt.err))
		})
	}
}

func TestStatusOf_ForbiddenWhenLoggedIn(t *testing.T) {
	c, _ := newContext(http.MethodGet)
	c.Set(sessionKey, &auth.Session{Username: "bob", Status: auth.StatusAuthenticated})

	err := oops.Code("ACCESS_DENIED").Wrapf(auth.ErrForbidden, "admin only")
	assert.Equal(t, http.StatusForbidden, statusOf(c, err))
}

func TestHandleError(t *testing.T) {
	var logs bytes.Buffer
	s := &Server{logger: slog.New(slog.NewJSONHandler(&logs, nil))}

	t.Run("public message and code", func(t *testing.T) {
		c, rec := newContext(http.MethodPost)
		s.handleError(oops.Code("REGISTER_USERNAME_TAKEN").
			Public("Username already taken").
			Wrapf(auth.ErrRegister, "username %q taken", "bob"), c)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"Username already taken","code":"REGISTER_USERNAME_TAKEN"}`, rec.Body.String())
	})

	t.Run("server errors hide their details", func(t *testing.T) {
		logs.Reset()
		c, rec := newContext(http.MethodGet)
		s.handleError(oops.Code("USER_SEARCH_FAILED").Wrapf(errors.New("pq: relation users does not exist"), "search"), c)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
		assert.Contains(t, logs.String(), "relation users does not exist")
		assert.Contains(t, logs.String(), "USER_SEARCH_FAILED")
	})

	t.Run("echo errors keep their message", func(t *testing.T) {
		c, rec := newContext(http.MethodGet)
		s.handleError(echo.NewHTTPError(http.StatusNotFound, "Unknown identity provider"), c)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Unknown identity provider"}`, rec.Body.String())
	})

	t.Run("HEAD has no body", func(t *testing.T) {
		c, rec := newContext(http.MethodHead)
		s.handleError(echo.ErrNotFound, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("committed responses are left alone", func(t *testing.T) {
		c, rec := newContext(http.MethodGet)
		require.NoError(t, c.NoContent(http.StatusAccepted))
		s.handleError(errors.New("late failure"), c)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}
