// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package plugin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/hearthrt/hearth/internal/observability"
)

// ManifestFile is the manifest name looked for in each plugin directory.
const ManifestFile = "plugin.yaml"

// Manager discovers plugins, loads them into a Host and fans lifecycle
// events out to the plugins subscribed to them.
type Manager struct {
	pluginsDir string
	host       Host
	runtime    *semver.Version
	logger     *slog.Logger

	mu     sync.RWMutex
	loaded map[string]*DiscoveredPlugin
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithHost sets the host plugins are loaded into.
func WithHost(h Host) ManagerOption {
	return func(m *Manager) { m.host = h }
}

// WithRuntimeVersion sets the version checked against manifest requires.
func WithRuntimeVersion(v *semver.Version) ManagerOption {
	return func(m *Manager) { m.runtime = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a plugin manager for pluginsDir.
func NewManager(pluginsDir string, opts ...ManagerOption) *Manager {
	m := &Manager{
		pluginsDir: pluginsDir,
		logger:     slog.Default(),
		loaded:     make(map[string]*DiscoveredPlugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DiscoveredPlugin contains a manifest and its directory.
type DiscoveredPlugin struct {
	Manifest *Manifest
	Dir      string
}

// Discover finds all valid plugins in the plugins directory, sorted by
// directory name. Invalid plugins are logged and skipped. A missing
// directory yields no plugins.
func (m *Manager) Discover(_ context.Context) ([]*DiscoveredPlugin, error) {
	entries, err := os.ReadDir(m.pluginsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, oops.With("dir", m.pluginsDir).Wrapf(err, "read plugins directory")
	}

	var plugins []*DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(m.pluginsDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(dir, ManifestFile)) //nolint:gosec // path built from ReadDir entries
		if err != nil {
			m.logger.Warn("skipping plugin without manifest", "dir", entry.Name(), "error", err)
			continue
		}
		manifest, err := ParseManifest(data)
		if err != nil {
			m.logger.Warn("skipping plugin with invalid manifest", "dir", entry.Name(), "error", err)
			continue
		}
		plugins = append(plugins, &DiscoveredPlugin{Manifest: manifest, Dir: dir})
	}
	return plugins, nil
}

// LoadAll discovers and loads every plugin. Plugins that fail to load or
// reject the runtime version are logged and skipped, so one broken plugin
// does not stop the App. It returns the names loaded.
func (m *Manager) LoadAll(ctx context.Context) ([]string, error) {
	discovered, err := m.Discover(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, dp := range discovered {
		if err := m.load(ctx, dp); err != nil {
			m.logger.Error("failed to load plugin", "plugin", dp.Manifest.Name, "error", err)
			continue
		}
		names = append(names, dp.Manifest.Name)
	}
	return names, nil
}

func (m *Manager) load(ctx context.Context, dp *DiscoveredPlugin) error {
	if err := dp.Manifest.CheckRuntime(m.runtime); err != nil {
		return err
	}
	if m.host == nil {
		m.logger.Warn("no script host configured, skipping plugin", "plugin", dp.Manifest.Name)
		return oops.Code(CodeNotLoaded).With("plugin", dp.Manifest.Name).Errorf("no script host")
	}
	if err := m.host.Load(ctx, dp.Manifest, dp.Dir); err != nil {
		return oops.With("plugin", dp.Manifest.Name).Wrapf(err, "load plugin")
	}

	m.mu.Lock()
	m.loaded[dp.Manifest.Name] = dp
	m.mu.Unlock()

	m.logger.Info("loaded plugin",
		"plugin", dp.Manifest.Name,
		"version", dp.Manifest.Version,
		"events", dp.Manifest.Events)
	return nil
}

// ListPlugins returns names of all loaded plugins, sorted.
func (m *Manager) ListPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Subscribers returns the loaded plugins subscribed to event, sorted by
// name.
func (m *Manager) Subscribers(event string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name, dp := range m.loaded {
		if dp.Manifest.Subscribes(event) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Deliver runs ev through every subscribed plugin in name order and
// returns the messages they emitted. A failing plugin is logged and
// counted; the others still run.
func (m *Manager) Deliver(ctx context.Context, ev Event) []Message {
	var out []Message
	for _, name := range m.Subscribers(ev.Name) {
		msgs, err := m.host.Deliver(ctx, name, ev)
		if err != nil {
			observability.RecordScriptError(name)
			m.logger.Warn("plugin callback failed", "plugin", name, "event", ev.Name, "error", err)
		}
		out = append(out, msgs...)
	}
	return out
}

// Close forgets all loaded plugins and closes the host.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = make(map[string]*DiscoveredPlugin)
	if m.host != nil {
		if err := m.host.Close(ctx); err != nil {
			return oops.Wrapf(err, "close script host")
		}
	}
	return nil
}
