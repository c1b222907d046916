// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package config loads runtime settings from a YAML file and command-line
// flags. Flags that were set explicitly override the file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/hearthrt/hearth/internal/logging"
	"github.com/hearthrt/hearth/internal/xdg"
)

// Settings are the runtime settings of the hearth binary.
type Settings struct {
	LogFormat   string  `koanf:"log-format"`
	LogLevel    string  `koanf:"log-level"`
	FrameRate   float64 `koanf:"frame-rate"`
	MaxFrames   uint64  `koanf:"max-frames"`
	MetricsAddr string  `koanf:"metrics-addr"`
	PluginsDir  string  `koanf:"plugins-dir"`
	AssetsDir   string  `koanf:"assets-dir"`
	Watch       bool    `koanf:"watch"`
	Headless    bool    `koanf:"headless"`
	Seed        uint64  `koanf:"seed"`
}

// Defaults returns the settings used when neither file nor flags say
// otherwise.
func Defaults() Settings {
	return Settings{
		LogFormat: "text",
		LogLevel:  "info",
		FrameRate: 60,
		Seed:      1,
	}
}

// RegisterFlags defines one flag per setting on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "minimum log level")
	fs.Float64("frame-rate", d.FrameRate, "frames per second; 0 runs frames back to back")
	fs.Uint64("max-frames", d.MaxFrames, "stop after this many frames; 0 means no limit")
	fs.String("metrics-addr", d.MetricsAddr, "address for the metrics server; empty disables it")
	fs.String("plugins-dir", d.PluginsDir, "directory scanned for script plugins")
	fs.String("assets-dir", d.AssetsDir, "root directory for assets")
	fs.Bool("watch", d.Watch, "reload assets when they change on disk")
	fs.Bool("headless", d.Headless, "run without a terminal")
	fs.Uint64("seed", d.Seed, "random number generator seed")
}

// Load reads settings from the YAML file at path and then from flags.
// An empty path means the default config file, which may be absent. flags
// may be nil.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = xdg.ConfigFile(); err != nil {
			return Settings{}, err
		}
	}
	if err := loadFile(k, path, explicit); err != nil {
		return Settings{}, err
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Settings{}, oops.Code("CONFIG_FLAGS").Wrapf(err, "load flags")
		}
	}

	s := Defaults()
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, oops.Code("CONFIG_DECODE").With("path", path).Wrapf(err, "decode settings")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code("CONFIG_READ").With("path", path).Wrapf(err, "stat config file")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_READ").With("path", path).Wrapf(err, "load config file")
	}
	return nil
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.LogFormat != "json" && s.LogFormat != "text" {
		return invalid("log-format", s.LogFormat, "must be json or text")
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return invalid("log-level", s.LogLevel, "must be debug, info, warn or error")
	}
	if s.FrameRate < 0 {
		return invalid("frame-rate", s.FrameRate, "must not be negative")
	}
	if s.Watch && s.AssetsDir == "" {
		return invalid("watch", s.Watch, "requires assets-dir")
	}
	return nil
}

// FrameInterval converts FrameRate to the time between frame starts.
func (s Settings) FrameInterval() time.Duration {
	if s.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / s.FrameRate)
}

func invalid(key string, value any, reason string) error {
	return oops.Code("CONFIG_INVALID").
		With("key", key).
		With("value", value).
		Errorf("%s: %s", key, reason)
}
