// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package main

import (
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hearthrt/hearth/internal/config"
	"github.com/hearthrt/hearth/internal/plugin"
	"github.com/hearthrt/hearth/internal/xdg"
)

// NewPluginsCmd creates the plugins subcommand.
func NewPluginsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the script plugins found in the plugins directory",
		Long: `List every plugin directory with a valid plugin.yaml. Plugins with an
invalid manifest are skipped with a warning, as they are by run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				settings, err := config.Load(configFile, nil)
				if err != nil {
					return oops.Wrapf(err, "invalid configuration")
				}
				dir = settings.PluginsDir
			}
			if dir == "" {
				var err error
				if dir, err = xdg.PluginsDir(); err != nil {
					return err
				}
			}
			return listPlugins(cmd, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "plugins-dir", "", "directory to scan (default: from config, then XDG_DATA_HOME/hearth/plugins)")
	return cmd
}

func listPlugins(cmd *cobra.Command, dir string) error {
	mgr := plugin.NewManager(dir)
	discovered, err := mgr.Discover(cmd.Context())
	if err != nil {
		return err
	}
	if len(discovered) == 0 {
		cmd.Printf("no plugins in %s\n", dir)
		return nil
	}
	for _, dp := range discovered {
		m := dp.Manifest
		cmd.Printf("%s %s\n", m.Name, m.Version)
		if m.Description != "" {
			cmd.Printf("  %s\n", m.Description)
		}
		cmd.Printf("  events: %s\n", strings.Join(m.Events, ", "))
		if len(m.Capabilities) > 0 {
			cmd.Printf("  capabilities: %s\n", strings.Join(m.Capabilities, ", "))
		}
		if m.Requires != "" {
			cmd.Printf("  requires: %s\n", m.Requires)
		}
	}
	return nil
}
