// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import "time"

// Lifecycle events fired by the App. They carry no payload; frame timing
// is in the FrameInfo plugin.
type (
	// Init fires once, before the first frame.
	Init struct{}
	// FrameStart opens each frame.
	FrameStart struct{}
	// Update fires once per frame after FrameStart.
	Update struct{}
	// FrameEnd closes each frame, after the queue has drained.
	FrameEnd struct{}
	// Close fires once when the App shuts down.
	Close struct{}
)

// FrameInfo is registered on every App and refreshed at the start of each
// frame.
type FrameInfo struct {
	// Frame counts frames started, beginning at 1.
	Frame uint64
	// Delta is the time since the previous frame started; zero on the first.
	Delta time.Duration
	// Started is when the current frame started.
	Started time.Time
}

// Exit is registered on every App. Runners that loop check it after each
// frame.
type Exit struct {
	requested bool
	Code      int
	Reason    string
}

// Request asks the runner to stop after the current frame. The first
// request wins.
func (e *Exit) Request(code int, reason string) {
	if e.requested {
		return
	}
	e.requested = true
	e.Code = code
	e.Reason = reason
}

// Requested reports whether an exit has been requested.
func (e *Exit) Requested() bool {
	return e.requested
}

// Emitter is registered on every App. Handlers declare *Emitter to dispatch
// another event immediately; the nested dispatch runs to completion before
// Emit returns.
type Emitter struct {
	app *App
}

// Emit dispatches v immediately. It panics if called before the App is
// built.
func (e *Emitter) Emit(v any) {
	if e.app == nil {
		panic(&WiringError{Code: CodeBuilderState, Detail: "emit before the app is built"})
	}
	e.app.Event(v)
}
