// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package xdg resolves the XDG base directories Hearth reads from and
// writes to.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "hearth"

// ConfigDir returns $XDG_CONFIG_HOME/hearth, falling back to ~/.config/hearth.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/hearth, falling back to
// ~/.local/share/hearth.
func DataDir() (string, error) {
	return resolve("XDG_DATA_HOME", ".local", "share")
}

// CacheDir returns $XDG_CACHE_HOME/hearth, falling back to ~/.cache/hearth.
func CacheDir() (string, error) {
	return resolve("XDG_CACHE_HOME", ".cache")
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// PluginsDir returns the default directory scanned for script plugins.
func PluginsDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "plugins"), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR").With("path", path).Wrapf(err, "create directory")
	}
	return nil
}

func resolve(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", oops.Code("XDG_NO_HOME").With("env", env).Wrapf(err, "resolve home directory")
		}
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}
