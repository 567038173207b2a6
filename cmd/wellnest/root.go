// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the WellNest CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wellnest",
		Short: "WellNest - authentication and session service",
		Long: `WellNest authenticates users of the WellNest platform with passwords,
re-authentication cookies and Google or Microsoft guest sign-in, and
manages accounts and roles.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// Default values for server flags. They mirror the config defaults so that
// --help shows them; only flags set on the command line override the file.
const (
	defaultAddr        = ":8080"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultLogFormat   = "json"
)

// addServerFlags registers the flags config.Load maps onto server and log keys.
func addServerFlags(fs *pflag.FlagSet) {
	fs.String("addr", defaultAddr, "HTTP listen address")
	fs.String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", defaultLogFormat, "log format (json or text)")
}
