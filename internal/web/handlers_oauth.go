// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wellnest/wellnest/internal/auth"
)

func (s *Server) provider(c echo.Context) (auth.IdentityProvider, error) {
	name := c.Param("provider")
	p, ok := s.providers[name]
	if !ok || s.states == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Unknown identity provider")
	}
	return p, nil
}

func (s *Server) handleOAuthLogin(c echo.Context) error {
	p, err := s.provider(c)
	if err != nil {
		return err
	}
	state, err := s.states.Issue(c.Request().Context(), p.Name())
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	p, err := s.provider(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if c.QueryParam("error") != "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Sign-in was cancelled")
	}
	if err := s.states.Consume(ctx, c.QueryParam("state"), p.Name()); err != nil {
		return err
	}

	sess := SessionFrom(c)
	if err := s.svc.GuestLogin(ctx, sess, p, c.QueryParam("code")); err != nil {
		return err
	}
	s.setCookie(c, sess.ReauthToken)
	return c.Redirect(http.StatusFound, "/")
}
