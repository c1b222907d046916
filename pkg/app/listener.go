// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"cmp"
	"slices"
)

// Mode selects how many times a listener fires.
type Mode uint8

const (
	// Repeating listeners fire on every occurrence of their event.
	Repeating Mode = iota
	// Once listeners fire on the first occurrence and are then discarded.
	Once
)

func (m Mode) String() string {
	switch m {
	case Repeating:
		return "repeating"
	case Once:
		return "once"
	default:
		return "unknown"
	}
}

// Listener is a handler bound to its event type.
type Listener struct {
	Ordinal uint64
	Mode    Mode
	Handler Handler
}

// listenerTable maps an event type to its listeners in registration order.
type listenerTable struct {
	byEvent map[TypeKey][]*Listener
	next    uint64
}

func newListenerTable() *listenerTable {
	return &listenerTable{
		byEvent: make(map[TypeKey][]*Listener),
	}
}

func (t *listenerTable) add(mode Mode, h Handler) *Listener {
	t.next++
	l := &Listener{Ordinal: t.next, Mode: mode, Handler: h}
	key := h.Event()
	t.byEvent[key] = append(t.byEvent[key], l)
	return l
}

// take returns the repeating listeners for key and removes and returns its
// once listeners. Both slices keep registration order.
func (t *listenerTable) take(key TypeKey) (repeating, once []*Listener) {
	all := t.byEvent[key]
	if !slices.ContainsFunc(all, func(l *Listener) bool { return l.Mode == Once }) {
		return all, nil
	}
	// The table entry gets a fresh backing array, so a dispatch already
	// iterating the old slice is unaffected.
	var kept []*Listener
	for _, l := range all {
		if l.Mode == Once {
			once = append(once, l)
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		delete(t.byEvent, key)
	} else {
		t.byEvent[key] = kept
	}
	return kept, once
}

func (t *listenerTable) count(key TypeKey) int {
	return len(t.byEvent[key])
}

// all returns every listener ordered by ordinal.
func (t *listenerTable) all() []*Listener {
	var out []*Listener
	for _, ls := range t.byEvent {
		out = append(out, ls...)
	}
	slices.SortFunc(out, func(a, b *Listener) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return out
}
