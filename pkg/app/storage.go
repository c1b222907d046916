// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

var queueKey = KeyOf[Queue]()

// Storage is the single container handlers draw their parameters from: the
// application state, the plugin registry and the event queue.
type Storage struct {
	state    any
	stateKey TypeKey
	plugins  *Plugins
	queue    *Queue
}

func newStorage(stateKey TypeKey, state any, plugins *Plugins, queue *Queue) *Storage {
	return &Storage{
		state:    state,
		stateKey: stateKey,
		plugins:  plugins,
		queue:    queue,
	}
}

// Plugins returns the plugin registry.
func (s *Storage) Plugins() *Plugins {
	return s.plugins
}

// Queue returns the event queue.
func (s *Storage) Queue() *Queue {
	return s.queue
}

// State returns a pointer to the application state.
func (s *Storage) State() any {
	return s.state
}

// StateKey returns the key of the application state type.
func (s *Storage) StateKey() TypeKey {
	return s.stateKey
}

// resolve maps a parameter type to the pointer passed to a handler: the
// queue, then the state, then the plugin registry.
func (s *Storage) resolve(key TypeKey) (any, bool) {
	switch key {
	case queueKey:
		return s.queue, true
	case s.stateKey:
		return s.state, true
	}
	return s.plugins.Lookup(key)
}

// StateOf returns the application state as *S.
func StateOf[S any](s *Storage) (*S, bool) {
	st, ok := s.state.(*S)
	return st, ok
}
