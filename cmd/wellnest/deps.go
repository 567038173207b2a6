// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/internal/auth/postgres"
	"github.com/wellnest/wellnest/internal/observability"
	"github.com/wellnest/wellnest/internal/store"
	"github.com/wellnest/wellnest/internal/web"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseFactory connects to PostgreSQL.
	// Default: store.Connect
	DatabaseFactory func(ctx context.Context, url string) (Database, error)

	// RedisFactory connects to the OAuth state store.
	// Default: store.NewRedisClient
	RedisFactory func(ctx context.Context, url string) (RedisClient, error)

	// WebServerFactory creates the HTTP API server.
	// Default: web.New
	WebServerFactory func(svc web.AuthService, gate *auth.Gate, cookie web.CookieOptions, opts ...web.Option) WebServer

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, gatherer prometheus.Gatherer, isReady observability.ReadinessChecker) ObservabilityServer

	// Getenv looks up secrets.
	// Default: os.Getenv
	Getenv func(string) string
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	if d == nil {
		d = &ServeDeps{}
	}
	if d.DatabaseFactory == nil {
		d.DatabaseFactory = connectDatabase
	}
	if d.RedisFactory == nil {
		d.RedisFactory = func(ctx context.Context, url string) (RedisClient, error) {
			client, err := store.NewRedisClient(ctx, url)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
	if d.WebServerFactory == nil {
		d.WebServerFactory = func(svc web.AuthService, gate *auth.Gate, cookie web.CookieOptions, opts ...web.Option) WebServer {
			return web.New(svc, gate, cookie, opts...)
		}
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, gatherer prometheus.Gatherer, isReady observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, gatherer, isReady)
		}
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	return d
}

func connectDatabase(ctx context.Context, url string) (Database, error) {
	pool, err := store.Connect(ctx, url, store.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Database is the part of *pgxpool.Pool the commands use.
type Database interface {
	postgres.Pool
	Ping(ctx context.Context) error
	Close()
}

// RedisClient is the part of *redis.Client the serve command uses.
type RedisClient interface {
	redis.Cmdable
	Close() error
}

// WebServer wraps the methods used from web.Server.
type WebServer interface {
	Start(addr string) (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}
