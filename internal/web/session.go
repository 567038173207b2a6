// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wellnest/wellnest/internal/auth"
)

const sessionKey = "wellnest.session"

// SessionFrom returns the request's session. Requests that did not pass the
// session middleware get a fresh unauthenticated one.
func SessionFrom(c echo.Context) *auth.Session {
	if sess, ok := c.Get(sessionKey).(*auth.Session); ok {
		return sess
	}
	sess := auth.NewSession()
	c.Set(sessionKey, sess)
	return sess
}

// restoreSession attaches a session to the request and, when the client holds
// a re-authentication cookie, logs it in with the token. An invalid token or a
// login error wipes the cookie.
func (s *Server) restoreSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := auth.NewSession()
		c.Set(sessionKey, sess)

		cookie, err := c.Cookie(s.cookie.Name)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		ctx := c.Request().Context()
		ok, err := s.svc.LoginWithToken(ctx, sess, cookie.Value)
		switch {
		case err == nil && ok:
		case err == nil, errors.Is(err, auth.ErrLogin):
			s.logger.DebugContext(ctx, "dropping re-authentication cookie", "error", err)
			sess.Reset()
			s.wipeCookie(c)
		default:
			// The cookie is kept so the next request can retry.
			s.logger.ErrorContext(ctx, "token login failed", "error", err)
			sess.Reset()
		}
		return next(c)
	}
}

func (s *Server) setCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     s.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cookie.Expiry.Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) wipeCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.gate.RequireLoggedIn(SessionFrom(c)); err != nil {
			return err
		}
		return next(c)
	}
}

func (s *Server) requireRole(role auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := s.gate.RequireRole(SessionFrom(c), role); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func (s *Server) requirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := s.gate.RequirePermission(SessionFrom(c), perm); err != nil {
				return err
			}
			return next(c)
		}
	}
}
