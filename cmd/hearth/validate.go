// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hearthrt/hearth/internal/plugin"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest-or-plugin-dir>...",
		Short: "Validate plugin manifests without running them",
		Long: `Validates each plugin.yaml against the manifest JSON Schema and then
checks its semantics (semver version, requires constraint, event patterns).
A directory argument means the plugin.yaml inside it.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch manifest errors early:
  hearth validate plugins/*`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, arg := range args {
				if err := validateManifest(arg); err != nil {
					failed++
					cmd.PrintErrf("%s: %s\n", arg, plugin.FormatSchemaError(err))
					continue
				}
				cmd.Printf("%s: ok\n", arg)
			}
			if failed > 0 {
				return oops.Code("VALIDATION_FAILED").
					With("failed", failed).
					Errorf("validation failed: %d of %d manifests invalid", failed, len(args))
			}
			slog.Debug("all manifests valid", "count", len(args))
			return nil
		},
	}
}

func validateManifest(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, plugin.ManifestFile)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the user
	if err != nil {
		return oops.With("path", path).Wrapf(err, "read manifest")
	}
	if err := plugin.ValidateSchema(data); err != nil {
		return err
	}
	_, err = plugin.ParseManifest(data)
	return err
}
