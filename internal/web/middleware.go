// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package web

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/wellnest/wellnest/internal/auth"
)

const unmatchedRoute = "unmatched"

func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return unmatchedRoute
}

// traceRequests continues an incoming W3C trace and opens a server span.
func (s *Server) traceRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := s.propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, span := s.tracer.Start(ctx, req.Method+" "+routeOf(c),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("http.route", routeOf(c)),
			))
		defer span.End()

		c.SetRequest(req.WithContext(ctx))
		err := next(c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "request failed")
		}
		return err
	}
}

// observeRequests renders handler errors, then logs and counts the request.
func (s *Server) observeRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		req := c.Request()
		status := c.Response().Status
		route := routeOf(c)
		s.metrics.ObserveRequest(route, status)

		attrs := []any{
			"method", req.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		}
		if sess, ok := c.Get(sessionKey).(*auth.Session); ok && sess.IsAuthenticated() {
			attrs = append(attrs, "username", sess.Username)
		}
		s.logger.InfoContext(req.Context(), "request", attrs...)
		return nil
	}
}
