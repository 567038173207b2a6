// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wellnest/wellnest/internal/config"
)

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	return newConfigCmd(os.Getenv)
}

func newConfigCmd(getenv func(string) string) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration serve would run with, as YAML. Secrets are
never printed. With --validate the configuration is also checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithEnv(configFile, cmd.Flags(), getenv)
			if err != nil {
				return err
			}
			if validate {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return oops.Code("CONFIG_ENCODE_FAILED").Wrap(err)
			}
			return enc.Close()
		},
	}

	addServerFlags(cmd.Flags())
	cmd.Flags().BoolVar(&validate, "validate", false, "fail if the configuration cannot serve requests")
	return cmd
}
