// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Masterminds/semver/v3"
	"github.com/gdamore/tcell/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hearthrt/hearth/internal/asset"
	"github.com/hearthrt/hearth/internal/config"
	"github.com/hearthrt/hearth/internal/logging"
	"github.com/hearthrt/hearth/internal/observability"
	"github.com/hearthrt/hearth/internal/plugin"
	"github.com/hearthrt/hearth/internal/plugin/lua"
	"github.com/hearthrt/hearth/internal/rng"
	"github.com/hearthrt/hearth/internal/window"
	"github.com/hearthrt/hearth/internal/xdg"
	"github.com/hearthrt/hearth/pkg/app"
)

// bannerAsset is loaded from the assets dir at startup. Windowed runs show
// it in the status line until a plugin message replaces it.
const bannerAsset = "banner.txt"

// RunDeps contains injectable dependencies for the run command.
// All fields with nil values will use their default implementations.
type RunDeps struct {
	// Screen replaces the terminal screen in windowed mode.
	// Default: tcell.NewScreen
	Screen tcell.Screen

	// LogWriter receives log output.
	// Default: os.Stderr when headless, XDG_CACHE_HOME/hearth/hearth.log otherwise
	LogWriter io.Writer

	// PluginsDirGetter returns the plugins directory used when none is configured.
	// Default: xdg.PluginsDir
	PluginsDirGetter func() (string, error)
}

// NewRunCmd creates the run subcommand. deps may be nil.
func NewRunCmd(deps *RunDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the application",
		Long: `Run assembles the application from the configured plugins and drives it
until Escape or Ctrl-C is pressed, max-frames is reached or the process is
signalled. With --headless no terminal is used; without max-frames a
headless run executes a single frame.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return oops.Wrapf(err, "invalid configuration")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runApp(ctx, settings, deps)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// runApp builds and runs the App described by s.
func runApp(ctx context.Context, s config.Settings, deps *RunDeps) error {
	if deps == nil {
		deps = &RunDeps{}
	}
	if deps.PluginsDirGetter == nil {
		deps.PluginsDirGetter = xdg.PluginsDir
	}

	logWriter, closeLog, err := openLog(s, deps)
	if err != nil {
		return err
	}
	defer closeLog()

	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.SetDefault(logging.Options{
		Service: "hearth",
		Version: version,
		Format:  s.LogFormat,
		Level:   level,
		Writer:  logWriter,
	})

	pluginsDir := s.PluginsDir
	if pluginsDir == "" {
		if pluginsDir, err = deps.PluginsDirGetter(); err != nil {
			return oops.Wrapf(err, "resolve plugins directory")
		}
	}

	b := app.NewBuilder().WithLogger(logger)
	if _, err := b.AddConfig(rng.Config{Seed: s.Seed}); err != nil {
		return err
	}
	random, _ := app.Get[rng.Source](b.Plugins())

	host := lua.NewHost(lua.WithRandom(random), lua.WithLogger(logger))
	if _, err := b.AddConfig(plugin.Config{
		Dir:            pluginsDir,
		Host:           host,
		RuntimeVersion: semver.MustParse(RuntimeVersion),
		Logger:         logger,
	}); err != nil {
		return err
	}

	if s.AssetsDir != "" {
		if err := addAssets(b, s, logger); err != nil {
			return err
		}
	}
	if s.MetricsAddr != "" {
		if _, err := b.AddConfig(observability.Config{Addr: s.MetricsAddr}); err != nil {
			return err
		}
	}

	b.On(app.Handle(func(m *plugin.Message) {
		logger.Info("plugin message", "plugin", m.Plugin, "text", m.Text)
	}).Named("hearth.log_message"))

	if s.Headless {
		if s.MaxFrames > 0 {
			b.SetRunner(app.LoopRunner(app.LoopOptions{
				Interval:  s.FrameInterval(),
				MaxFrames: s.MaxFrames,
			}))
		}
	} else {
		if _, err := b.AddConfig(window.Config{
			Title:     "Hearth",
			Screen:    deps.Screen,
			Interval:  s.FrameInterval(),
			MaxFrames: s.MaxFrames,
			Logger:    logger,
		}); err != nil {
			return err
		}
		b.On(app.Handle1(func(m *plugin.Message, w *window.Window) {
			w.SetStatus(m.Plugin + ": " + m.Text)
		}).Named("hearth.show_message"))
		if s.AssetsDir != "" {
			b.On(app.Handle1(func(ev *asset.Loaded, w *window.Window) {
				if ev.Path == bannerAsset {
					w.SetStatus(firstLine(ev.Data))
				}
			}).Named("hearth.show_banner"))
		}
	}

	logger.Info("starting",
		"plugins_dir", pluginsDir,
		"assets_dir", s.AssetsDir,
		"headless", s.Headless,
		"max_frames", s.MaxFrames)

	if err := b.Build(ctx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

// addAssets registers the asset loader. The banner is loaded at Init and
// reloaded whenever a watched file changes.
func addAssets(b *app.Builder, s config.Settings, logger *slog.Logger) error {
	if _, err := b.AddConfig(asset.Config{
		Root:    s.AssetsDir,
		Watch:   s.Watch,
		Options: []asset.Option{asset.WithLogger(logger)},
	}); err != nil {
		return err
	}
	b.On(app.Handle1(func(_ *app.Init, l *asset.Loader) {
		l.Load(bannerAsset)
	}).Named("hearth.load_banner")).
		On(app.Handle1(func(ev *asset.Changed, l *asset.Loader) {
			logger.Info("asset changed", "path", ev.Path)
			l.Load(ev.Path)
		}).Named("hearth.reload_asset")).
		On(app.Handle(func(ev *asset.Loaded) {
			logger.Info("asset loaded", "path", ev.Path, "bytes", len(ev.Data))
		}).Named("hearth.asset_loaded")).
		On(app.Handle(func(ev *asset.Failed) {
			logger.Warn("asset failed to load", "path", ev.Path, "error", ev.Err)
		}).Named("hearth.asset_failed"))
	return nil
}

// firstLine returns the first line of data without surrounding space.
func firstLine(data []byte) string {
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line)
}

// openLog picks the log destination. A terminal UI owns stderr, so windowed
// runs log to a file in the cache directory.
func openLog(s config.Settings, deps *RunDeps) (io.Writer, func(), error) {
	if deps.LogWriter != nil {
		return deps.LogWriter, func() {}, nil
	}
	if s.Headless {
		return os.Stderr, func() {}, nil
	}
	dir, err := xdg.CacheDir()
	if err != nil {
		return nil, nil, err
	}
	if err := xdg.EnsureDir(dir); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(dir, "hearth.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path under the user's cache dir
	if err != nil {
		return nil, nil, oops.Code("LOG_OPEN").With("path", path).Wrapf(err, "open log file")
	}
	return f, func() { _ = f.Close() }, nil
}
