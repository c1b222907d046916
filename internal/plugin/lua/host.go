// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/hearthrt/hearth/internal/logging"
	"github.com/hearthrt/hearth/internal/plugin"
	"github.com/hearthrt/hearth/internal/plugin/capability"
	"github.com/hearthrt/hearth/internal/rng"
)

var _ plugin.Host = (*Host)(nil)

// Capabilities a manifest grants to reach host functions. hearth.log needs
// none.
const (
	CapEmit   = "hearth.emit"
	CapRandom = "hearth.random"
)

// DefaultCallTimeout bounds a single callback.
const DefaultCallTimeout = 100 * time.Millisecond

// luaPlugin is one loaded script. Its state persists across callbacks so
// scripts can keep globals between frames.
type luaPlugin struct {
	manifest *plugin.Manifest
	state    *lua.LState
	emitted  []plugin.Message
}

// Host runs Lua plugins. Callbacks run one at a time.
type Host struct {
	factory  *StateFactory
	enforcer *capability.Enforcer
	random   *rng.Source
	logger   *slog.Logger
	timeout  time.Duration

	mu      sync.Mutex
	plugins map[string]*luaPlugin
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithRandom backs hearth.random with src.
func WithRandom(src *rng.Source) Option {
	return func(h *Host) { h.random = src }
}

// WithLogger sets the logger hearth.log writes to.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithCallTimeout bounds each callback. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(h *Host) { h.timeout = d }
}

// NewHost creates a Lua plugin host.
func NewHost(opts ...Option) *Host {
	h := &Host{
		factory:  NewStateFactory(),
		enforcer: capability.NewEnforcer(),
		logger:   slog.Default(),
		timeout:  DefaultCallTimeout,
		plugins:  make(map[string]*luaPlugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load reads the entry file, runs its top level in a fresh sandboxed state
// and keeps the state for later callbacks.
func (h *Host) Load(ctx context.Context, manifest *plugin.Manifest, dir string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	errb := oops.In("lua").With("plugin", manifest.Name).With("operation", "load")
	if h.closed {
		return errb.Code(plugin.CodeHostClosed).New("host is closed")
	}
	if _, ok := h.plugins[manifest.Name]; ok {
		return errb.Code(plugin.CodeScript).New("plugin already loaded")
	}

	entryPath := filepath.Join(dir, manifest.LuaPlugin.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return errb.With("path", entryPath).Hint("failed to read entry file").Wrap(err)
	}
	if err := h.enforcer.SetGrants(manifest.Name, manifest.Capabilities); err != nil {
		return errb.Wrap(err)
	}

	L, err := h.factory.NewState()
	if err != nil {
		h.enforcer.RemoveGrants(manifest.Name)
		return errb.Hint("failed to create state").Wrap(err)
	}
	p := &luaPlugin{manifest: manifest, state: L}
	h.registerFunctions(p)

	L.SetContext(ctx)
	err = L.DoString(string(code))
	L.RemoveContext()
	if err != nil {
		L.Close()
		h.enforcer.RemoveGrants(manifest.Name)
		return errb.Code(plugin.CodeScript).With("entry", manifest.LuaPlugin.Entry).Hint("script error").Wrap(err)
	}

	h.plugins[manifest.Name] = p
	return nil
}

// Unload closes a plugin's state.
func (h *Host) Unload(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.plugins[name]
	if !ok {
		return oops.In("lua").Code(plugin.CodeNotLoaded).With("plugin", name).With("operation", "unload").New("plugin not loaded")
	}
	p.state.Close()
	h.enforcer.RemoveGrants(name)
	delete(h.plugins, name)
	return nil
}

// Deliver calls on_<event>(ev) with dots in the event name replaced by
// underscores, so frame.start calls on_frame_start. Messages emitted before
// a failure are still returned.
func (h *Host) Deliver(ctx context.Context, name string, ev plugin.Event) ([]plugin.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.plugins[name]
	if !ok {
		return nil, oops.In("lua").Code(plugin.CodeNotLoaded).With("plugin", name).With("operation", "deliver").New("plugin not loaded")
	}

	fn, ok := p.state.GetGlobal(callbackName(ev.Name)).(*lua.LFunction)
	if !ok {
		return nil, nil
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	p.emitted = nil
	p.state.SetContext(ctx)
	err := p.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, eventTable(p.state, ev))
	p.state.RemoveContext()

	emitted := p.emitted
	p.emitted = nil
	if err != nil {
		return emitted, oops.In("lua").Code(plugin.CodeScript).
			With("plugin", name).
			With("event", ev.Name).
			Wrap(err)
	}
	return emitted, nil
}

// Plugins returns names of loaded plugins, sorted.
func (h *Host) Plugins() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close closes every state. Later loads fail.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, p := range h.plugins {
		p.state.Close()
		h.enforcer.RemoveGrants(name)
	}
	h.closed = true
	h.plugins = nil
	return nil
}

func callbackName(event string) string {
	return "on_" + strings.ReplaceAll(event, ".", "_")
}

func eventTable(L *lua.LState, ev plugin.Event) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(ev.Name))
	L.SetField(t, "frame", lua.LNumber(ev.Frame))
	L.SetField(t, "delta", lua.LNumber(ev.Delta.Seconds()))
	return t
}

// registerFunctions installs the hearth table in p's state.
func (h *Host) registerFunctions(p *luaPlugin) {
	name := p.manifest.Name
	L := p.state
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			level, err := logging.ParseLevel(L.CheckString(1))
			if err != nil {
				level = slog.LevelInfo
			}
			msg := L.CheckString(2)
			h.logger.Log(context.Background(), level, msg, "plugin", name)
			return 0
		},
		"emit": func(L *lua.LState) int {
			if !h.enforcer.Check(name, CapEmit) {
				L.RaiseError("capability %s not granted", CapEmit)
				return 0
			}
			p.emitted = append(p.emitted, plugin.Message{Plugin: name, Text: L.CheckString(1)})
			return 0
		},
		"random": func(L *lua.LState) int {
			if !h.enforcer.Check(name, CapRandom) {
				L.RaiseError("capability %s not granted", CapRandom)
				return 0
			}
			if h.random == nil {
				L.RaiseError("no random source configured")
				return 0
			}
			n := L.CheckInt(1)
			if n < 1 {
				L.ArgError(1, "must be at least 1")
				return 0
			}
			L.Push(lua.LNumber(h.random.IntN(n) + 1))
			return 1
		},
	})
	L.SetGlobal("hearth", mod)
}
