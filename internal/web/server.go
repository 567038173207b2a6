// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package web is the JSON HTTP surface of WellNest, built on echo.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/wellnest/wellnest/internal/auth"
)

// CookieOptions shape the re-authentication cookie.
type CookieOptions struct {
	Name   string
	Expiry time.Duration
	Secure bool
}

// Server routes requests to an AuthService.
type Server struct {
	echo          *echo.Echo
	svc           AuthService
	gate          *auth.Gate
	cookie        CookieOptions
	registerRoles auth.Roles
	providers     map[string]auth.IdentityProvider
	states        StateStore
	metrics       RequestMetrics
	tracer        trace.Tracer
	propagator    propagation.TextMapPropagator
	logger        *slog.Logger

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithOAuth enables the guest-login routes for providers.
func WithOAuth(states StateStore, providers ...auth.IdentityProvider) Option {
	return func(s *Server) {
		s.states = states
		for _, p := range providers {
			s.providers[p.Name()] = p
		}
	}
}

// WithRegisterRoles sets the roles given to self-registered accounts.
func WithRegisterRoles(roles auth.Roles) Option {
	return func(s *Server) { s.registerRoles = roles }
}

// WithRequestMetrics records every request.
func WithRequestMetrics(m RequestMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracerProvider sets where request spans go. The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracer = tp.Tracer(tracerName) }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

const tracerName = "github.com/wellnest/wellnest/internal/web"

// New creates a Server and registers its routes.
func New(svc AuthService, gate *auth.Gate, cookie CookieOptions, opts ...Option) *Server {
	s := &Server{
		echo:          echo.New(),
		svc:           svc,
		gate:          gate,
		cookie:        cookie,
		registerRoles: auth.Roles{auth.RoleUser},
		providers:     make(map[string]auth.IdentityProvider),
		metrics:       noopRequestMetrics{},
		tracer:        otel.GetTracerProvider().Tracer(tracerName),
		propagator:    propagation.TraceContext{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.ErrorContext(c.Request().Context(), "handler panic",
				"error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(middleware.RequestID())
	e.Use(s.traceRequests)
	e.Use(s.observeRequests)
	e.Use(middleware.BodyLimit("64K"))

	api := e.Group("/api", s.restoreSession)
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)
	api.POST("/register", s.handleRegister)
	api.GET("/session", s.handleSession)

	profile := api.Group("/profile", s.requireLogin)
	profile.GET("", s.handleProfile, s.requirePermission(auth.PermReadProfile))
	profile.PATCH("", s.handleUpdateProfile, s.requirePermission(auth.PermWriteProfile))
	profile.POST("/password", s.handleResetPassword, s.requirePermission(auth.PermWriteProfile))
	profile.DELETE("", s.handleDeleteAccount, s.requirePermission(auth.PermDeleteAccount))

	admin := api.Group("/admin", s.requireRole(auth.RoleAdmin))
	admin.GET("/users", s.handleSearchUsers, s.requirePermission(auth.PermReadUsers))
	admin.PUT("/users/roles", s.handleUpdateRoles, s.requirePermission(auth.PermWriteRoles))

	oauth := api.Group("/oauth/:provider")
	oauth.GET("/login", s.handleOAuthLogin)
	oauth.GET("/callback", s.handleOAuthCallback)
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr and serves in the background. The returned channel
// receives a serve failure and is closed when the server stops.
func (s *Server) Start(addr string) (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("WEB_RUNNING").Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	s.listener = listener

	srv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.httpServer = srv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", "error", err)
			errCh <- err
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
	}
	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
