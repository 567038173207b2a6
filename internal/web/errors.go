// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/internal/auth/redisstate"
	"github.com/wellnest/wellnest/pkg/errutil"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusOf maps an error kind to an HTTP status. Unknown errors are 500.
func statusOf(c echo.Context, err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrLogin):
		switch errutil.Code(err) {
		case "AUTH_LOGIN_CAPACITY", "AUTH_LOGIN_LOCKED":
			return http.StatusForbidden
		case "AUTH_LOGIN_SINGLE_SESSION", "AUTH_GUEST_CONFLICT":
			return http.StatusConflict
		default:
			return http.StatusUnauthorized
		}
	case errors.Is(err, auth.ErrRegister):
		return http.StatusConflict
	case errors.Is(err, auth.ErrReset):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUpdate):
		switch errutil.Code(err) {
		case "UPDATE_USER_NOT_FOUND":
			return http.StatusNotFound
		case "UPDATE_UNCHANGED":
			return http.StatusBadRequest
		default:
			return http.StatusConflict
		}
	case errors.Is(err, auth.ErrForbidden):
		if !SessionFrom(c).IsAuthenticated() {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case errors.Is(err, auth.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, redisstate.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError renders err as JSON. Server errors are logged and their
// details withheld from the client.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusOf(c, err)
	body := errorBody{Error: http.StatusText(status)}

	var he *echo.HTTPError
	switch {
	case status >= http.StatusInternalServerError:
		errutil.LogError(c.Request().Context(), s.logger, "request failed", err)
	case errors.As(err, &he):
		body.Error = fmt.Sprint(he.Message)
	default:
		body.Error = oops.GetPublic(err, http.StatusText(status))
		body.Code = errutil.Code(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Warn("failed to write error response", "error", err)
	}
}
