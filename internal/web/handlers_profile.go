// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wellnest/wellnest/internal/auth"
)

type updateProfileRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type resetPasswordRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

type updateRolesRequest struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (s *Server) handleProfile(c echo.Context) error {
	profile, err := s.svc.Profile(c.Request().Context(), SessionFrom(c).Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	field, err := auth.ParseUserField(req.Field)
	if err != nil {
		return err
	}

	sess := SessionFrom(c)
	if err := s.svc.UpdateUserDetails(c.Request().Context(), sess, sess.Username, field, req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) handleResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	err := s.svc.ResetPassword(c.Request().Context(), SessionFrom(c).Username, req.Current, req.New)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(c echo.Context) error {
	if err := s.svc.DeleteAccount(c.Request().Context(), SessionFrom(c)); err != nil {
		return err
	}
	s.wipeCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSearchUsers(c echo.Context) error {
	users, err := s.svc.SearchUsers(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return err
	}
	if users == nil {
		users = []*auth.Profile{}
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) handleUpdateRoles(c echo.Context) error {
	var req updateRolesRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	roles, err := auth.ParseRoles(req.Roles...)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Roles are not valid").SetInternal(err)
	}
	if err := s.svc.UpdateRoles(c.Request().Context(), SessionFrom(c), req.Email, roles); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
