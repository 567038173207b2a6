// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package store connects to the PostgreSQL credential store and Redis, and
// owns the embedded schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultConnectAttempts is how many times Connect tries to reach the database.
const DefaultConnectAttempts = 3

type connectConfig struct {
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// ConnectOption configures Connect.
type ConnectOption func(*connectConfig)

// WithAttempts sets the number of connection attempts and the pause between them.
func WithAttempts(attempts int, backoff time.Duration) ConnectOption {
	return func(c *connectConfig) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(logger *slog.Logger) ConnectOption {
	return func(c *connectConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Connect opens a pgx pool and pings it, retrying with a constant backoff.
// Failing every attempt returns DB_CONNECT_FAILED; callers treat it as fatal.
func Connect(ctx context.Context, dsn string, opts ...ConnectOption) (*pgxpool.Pool, error) {
	cfg := connectConfig{
		attempts: DefaultConnectAttempts,
		backoff:  time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		// The DSN carries credentials; only the parse error is kept.
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("invalid database URL")
	}

	var (
		pool    *pgxpool.Pool
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(cfg.attempts-1), retry.NewConstant(cfg.backoff)) //nolint:gosec // attempts > 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			cfg.logger.WarnContext(ctx, "database connection attempt failed",
				"attempt", attempt, "max_attempts", cfg.attempts, "error", err)
			return retry.RetryableError(err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			cfg.logger.WarnContext(ctx, "database connection attempt failed",
				"attempt", attempt, "max_attempts", cfg.attempts, "error", err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("attempts", attempt).
			With("host", poolCfg.ConnConfig.Host).
			Wrap(err)
	}

	cfg.logger.InfoContext(ctx, "connected to database",
		"host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database, "attempts", attempt)
	return pool, nil
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Errorf("invalid redis URL")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", opts.Addr).Wrap(err)
	}
	return client, nil
}
