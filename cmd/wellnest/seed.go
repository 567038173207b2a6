// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wellnest/wellnest/internal/auth"
	"github.com/wellnest/wellnest/internal/auth/postgres"
	"github.com/wellnest/wellnest/internal/config"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedDeps contains injectable dependencies for the seed command.
type seedDeps struct {
	openUsers func(ctx context.Context, url string) (auth.UserRepository, func(), error)
	hasher    auth.PasswordHasher
	getenv    func(string) string
}

func defaultSeedDeps() *seedDeps {
	return &seedDeps{
		openUsers: func(ctx context.Context, url string) (auth.UserRepository, func(), error) {
			db, err := connectDatabase(ctx, url)
			if err != nil {
				return nil, nil, err
			}
			return postgres.NewUserRepository(db), db.Close, nil
		},
		hasher: auth.NewArgon2idHasher(),
		getenv: os.Getenv,
	}
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	return newSeedCmd(defaultSeedDeps())
}

func newSeedCmd(deps *seedDeps) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator account",
		Long: `Creates the administrator from ADMIN_USERNAME, ADMIN_EMAIL and
ADMIN_PASSWORD with the admin and user roles.
This command is idempotent - an existing account is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// cmd.Context() carries SIGINT/SIGTERM cancellation.
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runSeed(ctx, cmd, deps)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

var adminRoles = auth.Roles{auth.RoleUser, auth.RoleAdmin}

func runSeed(ctx context.Context, cmd *cobra.Command, deps *seedDeps) error {
	cfg, err := config.LoadWithEnv(configFile, nil, deps.getenv)
	if err != nil {
		return err
	}
	s := cfg.Secrets
	for env, value := range map[string]string{
		config.EnvDatabaseURL:   s.DatabaseURL,
		config.EnvAdminUsername: s.AdminUsername,
		config.EnvAdminEmail:    s.AdminEmail,
		config.EnvAdminPassword: s.AdminPassword,
	} {
		if value == "" {
			return oops.Code("CONFIG_INVALID").With("key", env).Errorf("%s environment variable is required", env)
		}
	}

	cmd.Println("Connecting to database...")
	users, closeUsers, err := deps.openUsers(ctx, s.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeUsers()

	digest, err := deps.hasher.Hash(s.AdminPassword)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "hash password").Wrap(err)
	}
	admin, err := auth.NewUser(s.AdminUsername, s.AdminEmail, "Admin", "", digest, "", adminRoles)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "build admin").Wrap(err)
	}

	if err := users.Create(ctx, admin); err != nil {
		if !errors.Is(err, auth.ErrDuplicate) {
			return oops.Code("SEED_FAILED").With("operation", "create admin").Wrap(err)
		}
		cmd.Println("Administrator already exists, skipping seed")
		verifyExistingAdmin(ctx, users, admin)
		return nil
	}

	cmd.Println("Created administrator: " + admin.Username)
	slog.Info("created administrator", "username", admin.Username, "roles", admin.Roles.Strings())
	return nil
}

// verifyExistingAdmin warns when the stored account differs from the environment.
func verifyExistingAdmin(ctx context.Context, users auth.UserRepository, want *auth.User) {
	existing, err := users.GetByUsername(ctx, want.Username)
	if err != nil {
		slog.Warn("could not verify existing administrator", "username", want.Username, "error", err)
		return
	}
	if existing.Email != want.Email {
		slog.Warn("administrator email mismatch",
			"username", want.Username,
			"expected", want.Email,
			"actual", existing.Email)
	}
	if !existing.Roles.Has(auth.RoleAdmin) {
		slog.Warn("existing account is not an administrator", "username", want.Username)
	}
}
