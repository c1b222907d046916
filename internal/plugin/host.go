// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package plugin

import (
	"context"
	"time"
)

// Event is what a script callback receives.
type Event struct {
	Name  string
	Frame uint64
	Delta time.Duration
}

// Message is queued on the App for every hearth.emit call a script makes.
type Message struct {
	Plugin string
	Text   string
}

// Host runs plugins of one runtime.
type Host interface {
	// Load compiles the plugin's entry file.
	Load(ctx context.Context, manifest *Manifest, dir string) error

	// Unload tears down a plugin.
	Unload(ctx context.Context, name string) error

	// Deliver runs the plugin's callback for ev and returns the messages
	// it emitted. A plugin without a callback for ev returns nothing.
	Deliver(ctx context.Context, name string, ev Event) ([]Message, error)

	// Plugins returns names of all loaded plugins.
	Plugins() []string

	// Close shuts down the host and all plugins.
	Close(ctx context.Context) error
}
