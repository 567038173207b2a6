// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wellnest/wellnest/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	PasswordHint string `json:"password_hint"`
}

// sessionView is the client's view of its session.
type sessionView struct {
	Status           string   `json:"status"`
	NeedsCredentials bool     `json:"needs_credentials,omitempty"`
	Username         string   `json:"username,omitempty"`
	Email            string   `json:"email,omitempty"`
	DisplayName      string   `json:"display_name,omitempty"`
	Picture          string   `json:"picture,omitempty"`
	Roles            []string `json:"roles"`
	PasswordHint     string   `json:"password_hint,omitempty"`
}

func viewOf(sess *auth.Session) sessionView {
	return sessionView{
		Status:           sess.Status.String(),
		NeedsCredentials: sess.NeedsCredentials,
		Username:         sess.Username,
		Email:            sess.Email,
		DisplayName:      sess.DisplayName,
		Picture:          sess.Picture,
		Roles:            sess.Roles.Strings(),
		PasswordHint:     sess.PasswordHint,
	}
}

type registerResponse struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	sess := SessionFrom(c)
	status, err := s.svc.Login(c.Request().Context(), sess, req.Username, req.Password)
	if err != nil {
		return err
	}

	switch status {
	case auth.StatusAuthenticated:
		s.setCookie(c, sess.ReauthToken)
		return c.JSON(http.StatusOK, viewOf(sess))
	case auth.StatusRejected:
		return c.JSON(http.StatusUnauthorized, viewOf(sess))
	default:
		return c.JSON(http.StatusOK, viewOf(sess))
	}
}

func (s *Server) handleLogout(c echo.Context) error {
	s.svc.Logout(c.Request().Context(), SessionFrom(c))
	s.wipeCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := s.svc.RegisterUser(c.Request().Context(), auth.RegistrationInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		PasswordHint: req.PasswordHint,
		Roles:        s.registerRoles,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles.Strings(),
	})
}

func (s *Server) handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, viewOf(SessionFrom(c)))
}
