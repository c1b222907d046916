// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package main

import (
	"github.com/spf13/cobra"
)

// RuntimeVersion is the version script plugins check their requires
// constraint against.
const RuntimeVersion = "0.1.0"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the hearth CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hearth",
		Short: "Hearth - a plugin-driven application runtime",
		Long: `Hearth assembles an application from plugins, configs and typed event
handlers, then drives it frame by frame in the terminal or headless.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/hearth/config.yaml)")

	cmd.AddCommand(NewRunCmd(nil))
	cmd.AddCommand(NewPluginsCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build and plugin runtime versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("hearth %s (commit: %s, built: %s)\n", version, commit, date)
			cmd.Printf("plugin runtime %s\n", RuntimeVersion)
			return nil
		},
	}
}
