// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Command gen-schema writes the plugin manifest JSON Schema, to stdout or
// to the file named by -o.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/hearthrt/hearth/internal/plugin"
)

func main() {
	out := pflag.StringP("output", "o", "", "write the schema to this file instead of stdout")
	pflag.Parse()

	if err := run(*out, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, stdout io.Writer) error {
	schema, err := plugin.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}
	if outPath == "" {
		_, err = fmt.Fprintln(stdout, string(schema))
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Generated %s\n", outPath)
	return err
}
