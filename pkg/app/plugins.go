// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

// slot owns the single instance registered for one type. Every slot holds
// its own allocation, so pointers taken from different slots never overlap.
type slot struct {
	ptr any
}

// Plugins maps a TypeKey to exactly one instance of that type.
//
// Plugins is filled while building and sealed before the App runs.
// It is not safe for concurrent use; the App owns it on the dispatch goroutine.
type Plugins struct {
	slots  map[TypeKey]*slot
	order  []TypeKey
	sealed bool
}

// NewPlugins creates an empty registry.
func NewPlugins() *Plugins {
	return &Plugins{
		slots: make(map[TypeKey]*slot),
	}
}

// Insert stores v under its type. A pointer is stored as given; any other
// value is copied into a new allocation. Inserting a second instance of the
// same type returns a DUPLICATE_PLUGIN error and leaves the first in place.
//
// Insert panics once the registry is sealed.
func (p *Plugins) Insert(v any) error {
	if p.sealed {
		panic(&WiringError{Code: CodeSealed, Type: KeyOfValue(v), Detail: "plugins cannot be added after the app has started"})
	}
	key, ptr, ok := cellOf(v)
	if !ok {
		return ErrInvalidPlugin(v)
	}
	if _, exists := p.slots[key]; exists {
		return ErrDuplicatePlugin(key)
	}
	p.slots[key] = &slot{ptr: ptr}
	p.order = append(p.order, key)
	return nil
}

// Has reports whether a plugin is registered under key.
func (p *Plugins) Has(key TypeKey) bool {
	_, ok := p.slots[key]
	return ok
}

// Lookup returns the stored pointer for key.
func (p *Plugins) Lookup(key TypeKey) (any, bool) {
	s, ok := p.slots[key]
	if !ok {
		return nil, false
	}
	return s.ptr, true
}

// Len returns the number of registered plugins.
func (p *Plugins) Len() int {
	return len(p.order)
}

// Keys returns the registered keys in insertion order.
// The returned slice is a copy.
func (p *Plugins) Keys() []TypeKey {
	keys := make([]TypeKey, len(p.order))
	copy(keys, p.order)
	return keys
}

// Sealed reports whether the registry no longer accepts inserts.
func (p *Plugins) Sealed() bool {
	return p.sealed
}

func (p *Plugins) seal() {
	p.sealed = true
}

// Get returns the registered *T.
func Get[T any](p *Plugins) (*T, bool) {
	ptr, ok := p.Lookup(KeyOf[T]())
	if !ok {
		return nil, false
	}
	t, ok := ptr.(*T)
	return t, ok
}

// MustGet returns the registered *T and panics if T was never added.
func MustGet[T any](p *Plugins) *T {
	t, ok := Get[T](p)
	if !ok {
		panic(&WiringError{Code: CodeUnresolvedParameter, Type: KeyOf[T](), Detail: "plugin not registered"})
	}
	return t
}

// Require returns the registered *T or a MISSING_PLUGIN error. It is meant
// for setup functions, where a missing plugin is a build failure rather than
// a defect.
func Require[T any](p *Plugins) (*T, error) {
	t, ok := Get[T](p)
	if !ok {
		return nil, ErrMissingPlugin(KeyOf[T]())
	}
	return t, nil
}
