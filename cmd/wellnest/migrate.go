// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package main

import (
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wellnest/wellnest/internal/config"
	"github.com/wellnest/wellnest/internal/store"
)

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Status() (store.MigrationStatus, error)
	Close() error
}

// migrateDeps contains injectable dependencies for the migrate commands.
type migrateDeps struct {
	newMigrator func(url string) (Migrator, error)
	getenv      func(string) string
}

func defaultMigrateDeps() *migrateDeps {
	return &migrateDeps{
		newMigrator: func(url string) (Migrator, error) {
			m, err := store.NewMigrator(url)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		getenv: os.Getenv,
	}
}

// NewMigrateCmd creates the migrate subcommand. Without a subcommand it
// applies every pending migration.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(defaultMigrateDeps())
}

func newMigrateCmd(deps *migrateDeps) *cobra.Command {
	up := func(cmd *cobra.Command, _ []string) error {
		return withMigrator(deps, func(m Migrator) error {
			cmd.Println("Running migrations...")
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply, revert or inspect the PostgreSQL schema migrations. DATABASE_URL locates the database.`,
		Args:  cobra.NoArgs,
		RunE:  up,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE:  up,
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		Long:  `Revert the last --steps migrations, or every migration when --steps is 0. Reverting everything drops all accounts.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 0 {
				return oops.Code("INVALID_STEPS").With("steps", steps).Errorf("--steps must not be negative")
			}
			return withMigrator(deps, func(m Migrator) error {
				if steps == 0 {
					cmd.Println("Reverting all migrations...")
					if err := m.Down(); err != nil {
						return err
					}
				} else {
					cmd.Printf("Reverting %d migration(s)...\n", steps)
					if err := m.Steps(-steps); err != nil {
						return err
					}
				}
				cmd.Println("Revert completed successfully")
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert (0 = all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				status, err := m.Status()
				if err != nil {
					return err
				}
				cmd.Printf("Current version: %d\n", status.Current)
				if status.Dirty {
					cmd.Println("WARNING: database is dirty; a previous migration failed part-way")
				}
				cmd.Printf("Applied: %s\n", formatVersions(status.Applied))
				cmd.Printf("Pending: %s\n", formatVersions(status.Pending))
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(deps *migrateDeps, fn func(Migrator) error) error {
	cfg, err := config.LoadWithEnv(configFile, nil, deps.getenv)
	if err != nil {
		return err
	}
	if cfg.Secrets.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("%s environment variable is required", config.EnvDatabaseURL)
	}

	m, err := deps.newMigrator(cfg.Secrets.DatabaseURL)
	if err != nil {
		return err
	}
	runErr := fn(m)
	if closeErr := m.Close(); closeErr != nil && runErr == nil {
		return closeErr
	}
	return runErr
}

func formatVersions(versions []uint) string {
	if len(versions) == 0 {
		return "none"
	}
	out := ""
	for i, v := range versions {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%06d", v)
	}
	return out
}
