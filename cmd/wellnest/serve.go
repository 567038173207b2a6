// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/internal/auth/oauth"
	"github.com/wellnest/wellnest/internal/auth/postgres"
	"github.com/wellnest/wellnest/internal/auth/redisstate"
	"github.com/wellnest/wellnest/internal/config"
	"github.com/wellnest/wellnest/internal/logging"
	"github.com/wellnest/wellnest/internal/observability"
	"github.com/wellnest/wellnest/internal/web"
)

const (
	serviceName     = "wellnest"
	shutdownTimeout = 10 * time.Second
	readinessPing   = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API",
		Long: `Start the HTTP API and the metrics/health server. Secrets come from
WELLNEST_AUTH_KEY and DATABASE_URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}
	addServerFlags(cmd.Flags())
	return cmd
}

// runServeWithDeps starts the service with injectable dependencies and blocks
// until a signal, a server failure or ctx cancellation.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	cfg, err := config.LoadWithEnv(configFile, cmd.Flags(), deps.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.SetDefault(serviceName, version, cfg.Log.Format)
	logger.Info("starting wellnest",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Server.MetricsAddr,
		"oauth", cfg.AnyOAuthEnabled(),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := deps.DatabaseFactory(ctx, cfg.Secrets.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, metrics := observability.NewRegistry()

	svc, err := buildService(cfg, db, metrics, logger)
	if err != nil {
		return err
	}

	registerRoles, err := cfg.RegisterRoles()
	if err != nil {
		return err
	}
	webOpts := []web.Option{
		web.WithLogger(logger),
		web.WithRegisterRoles(registerRoles),
		web.WithRequestMetrics(metrics),
	}

	if cfg.AnyOAuthEnabled() {
		rdb, err := deps.RedisFactory(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := rdb.Close(); closeErr != nil {
				logger.Debug("error closing redis client", "error", closeErr)
			}
		}()
		webOpts = append(webOpts, web.WithOAuth(redisstate.New(rdb, redisstate.DefaultTTL), identityProviders(cfg)...))
	}

	webServer := deps.WebServerFactory(svc, auth.DefaultGate(), web.CookieOptions{
		Name:   cfg.Auth.CookieName,
		Expiry: time.Duration(cfg.Auth.CookieExpiryDays) * 24 * time.Hour,
		Secure: cfg.Auth.SecureCookie,
	}, webOpts...)

	failures := make(chan error, 2)

	webErrCh, err := webServer.Start(cfg.Server.Addr)
	if err != nil {
		return err
	}
	go monitorServerErrors(ctx, webErrCh, "web", failures)

	var obsServer ObservabilityServer
	if cfg.Server.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, registry, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, readinessPing)
			defer pingCancel()
			return db.Ping(pingCtx) == nil
		})
		obsErrCh, err := obsServer.Start()
		if err != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if stopErr := webServer.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop web server during cleanup", "error", stopErr)
			}
			return err
		}
		go monitorServerErrors(ctx, obsErrCh, "observability", failures)
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("WellNest started on " + webServer.Addr())

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-failures:
		runErr = err
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping web server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// buildService wires the repository, hasher and token issuer into the
// authentication service.
func buildService(cfg *config.Config, db Database, metrics auth.Metrics, logger *slog.Logger) (*auth.Service, error) {
	tokens, err := auth.NewJWTIssuer(cfg.Secrets.AuthKey, cfg.Auth.CookieExpiryDays)
	if err != nil {
		return nil, err
	}
	guestRoles, err := cfg.GuestRoles()
	if err != nil {
		return nil, err
	}

	return auth.NewServiceWithLogger(
		postgres.NewUserRepository(db),
		auth.NewArgon2idHasher(),
		tokens,
		auth.NewValidator(cfg.Auth.MailWhitelist),
		logger,
		auth.WithPolicy(cfg.Policy()),
		auth.WithGuestRoles(guestRoles),
		auth.WithMetrics(metrics),
	)
}

func identityProviders(cfg *config.Config) []auth.IdentityProvider {
	var providers []auth.IdentityProvider
	if g := cfg.OAuth.Google; g.Enabled() {
		providers = append(providers, oauth.NewGoogle(oauth.Credentials{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
		}))
	}
	if m := cfg.OAuth.Microsoft; m.Enabled() {
		providers = append(providers, oauth.NewMicrosoft(oauth.Credentials{
			ClientID:     m.ClientID,
			ClientSecret: m.ClientSecret,
			RedirectURL:  m.RedirectURL,
		}, m.Tenant))
	}
	return providers
}

// monitorServerErrors forwards the first failure of a server to failures.
// It exits when the channel is closed or ctx is cancelled.
func monitorServerErrors(ctx context.Context, errCh <-chan error, serverName string, failures chan<- error) {
	select {
	case err, ok := <-errCh:
		if !ok || err == nil {
			return
		}
		slog.Error("server error, triggering shutdown", "server", serverName, "error", err)
		select {
		case failures <- oops.Code("SERVER_FAILED").With("server", serverName).Wrap(err):
		default:
		}
	case <-ctx.Done():
	}
}
