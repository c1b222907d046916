// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package capability decides which host functions a script plugin may
// call.
//
// Grants are gobwas/glob patterns with '.' as the segment separator:
//   - '*' matches a single segment: "hearth.*" matches "hearth.emit"
//   - '**' matches any number of segments
package capability

import (
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Enforcer checks plugin capabilities at call time. It is safe for
// concurrent use and the zero value is ready to use.
type Enforcer struct {
	mu     sync.RWMutex
	grants map[string][]compiledGrant
}

// NewEnforcer creates a capability enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{grants: make(map[string][]compiledGrant)}
}

// SetGrants replaces the grants of plugin. Either every pattern compiles
// and all are installed, or none are.
func (e *Enforcer) SetGrants(plugin string, patterns []string) error {
	if plugin == "" {
		return oops.Code("CAPABILITY_INVALID").Errorf("plugin name cannot be empty")
	}
	compiled := make([]compiledGrant, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return oops.Code("CAPABILITY_INVALID").With("plugin", plugin).Errorf("capability %d: empty pattern", i)
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return oops.Code("CAPABILITY_INVALID").With("plugin", plugin).With("pattern", pattern).Wrapf(err, "capability %d", i)
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.grants == nil {
		e.grants = make(map[string][]compiledGrant)
	}
	e.grants[plugin] = compiled
	return nil
}

// RemoveGrants forgets plugin.
func (e *Enforcer) RemoveGrants(plugin string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.grants, plugin)
}

// Grants returns a copy of the patterns granted to plugin, or nil if it is
// unknown.
func (e *Enforcer) Grants(plugin string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	grants, ok := e.grants[plugin]
	if !ok {
		return nil
	}
	out := make([]string, len(grants))
	for i, g := range grants {
		out[i] = g.pattern
	}
	return out
}

// Check reports whether plugin holds capability. Unknown plugins and empty
// capabilities are denied.
func (e *Enforcer) Check(plugin, capability string) bool {
	if capability == "" {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, g := range e.grants[plugin] {
		if g.glob.Match(capability) {
			return true
		}
	}
	return false
}
