// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package plugin discovers Lua script plugins and drives them from App
// lifecycle events.
package plugin

import (
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Lifecycle event names a manifest may subscribe to, in dispatch order
// within a run.
const (
	EventInit       = "init"
	EventFrameStart = "frame.start"
	EventUpdate     = "update"
	EventFrameEnd   = "frame.end"
	EventClose      = "close"
)

// LifecycleEvents lists every subscribable event name.
var LifecycleEvents = []string{EventInit, EventFrameStart, EventUpdate, EventFrameEnd, EventClose}

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name        string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version     string `yaml:"version" json:"version" jsonschema:"description=Semantic version of the plugin"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Requires is a semver constraint on the runtime version, e.g. ">= 0.3, < 1".
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty"`
	// Events are glob patterns over lifecycle event names with '.' as the
	// separator: "frame.*" matches frame.start and frame.end.
	Events       []string   `yaml:"events,omitempty" json:"events,omitempty"`
	Capabilities []string   `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	LuaPlugin    *LuaConfig `yaml:"lua-plugin" json:"lua-plugin"`

	matchers []glob.Glob
	requires *semver.Constraints
}

// LuaConfig holds Lua-specific configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" json:"entry"`
}

const maxNameLength = 64

// namePattern: lowercase letter first, then lowercase letters, digits or
// hyphens, not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a plugin.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, invalidManifest("", "manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code(CodeInvalidManifest).Wrapf(err, "invalid YAML")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints and compiles the event patterns and
// runtime constraint.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return invalidManifest("name", "name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return invalidManifest("name", "name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return invalidManifest("version", "version is required")
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return invalidManifest("version", "version %q is not a semantic version: %v", m.Version, err)
	}

	m.requires = nil
	if m.Requires != "" {
		c, err := semver.NewConstraint(m.Requires)
		if err != nil {
			return invalidManifest("requires", "requires %q is not a version constraint: %v", m.Requires, err)
		}
		m.requires = c
	}

	m.matchers = make([]glob.Glob, 0, len(m.Events))
	for i, pattern := range m.Events {
		if pattern == "" {
			return invalidManifest("events", "event %d: empty pattern", i)
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return invalidManifest("events", "event %d (%q): %v", i, pattern, err)
		}
		m.matchers = append(m.matchers, g)
	}

	if m.LuaPlugin == nil {
		return invalidManifest("lua-plugin", "lua-plugin is required")
	}
	if m.LuaPlugin.Entry == "" {
		return invalidManifest("lua-plugin", "lua-plugin.entry is required")
	}
	if !filepath.IsLocal(m.LuaPlugin.Entry) {
		return invalidManifest("lua-plugin", "lua-plugin.entry %q must be inside the plugin directory", m.LuaPlugin.Entry)
	}
	return nil
}

// Subscribes reports whether any event pattern matches the lifecycle event
// name.
func (m *Manifest) Subscribes(event string) bool {
	for _, g := range m.matchers {
		if g.Match(event) {
			return true
		}
	}
	return false
}

// CheckRuntime reports whether the plugin accepts the given runtime version.
// A manifest without requires accepts every version.
func (m *Manifest) CheckRuntime(runtime *semver.Version) error {
	if m.requires == nil || runtime == nil {
		return nil
	}
	if ok, errs := m.requires.Validate(runtime); !ok {
		reason := "constraint not met"
		if len(errs) > 0 {
			reason = errs[0].Error()
		}
		return oops.Code(CodeIncompatible).
			With("plugin", m.Name).
			With("requires", m.Requires).
			With("runtime", runtime.String()).
			Errorf("plugin %s requires runtime %s: %s", m.Name, m.Requires, reason)
	}
	return nil
}

func invalidManifest(field, format string, args ...any) error {
	return oops.Code(CodeInvalidManifest).With("field", field).Errorf(format, args...)
}
