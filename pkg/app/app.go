// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// phase tracks the App lifecycle.
type phase uint8

const (
	phaseConstructed phase = iota
	phaseInitialized
	phaseClosed
)

// Dispatch modes used as metric labels.
const (
	dispatchImmediate = "immediate"
	dispatchQueued    = "queued"
)

// App is an assembled runtime: Storage, the listener table and the runner
// that drives its lifecycle. Builder.BuildApp returns one; Builder.Build
// builds one and runs it.
//
// An App is driven from a single goroutine. None of its methods are safe
// for concurrent use.
type App struct {
	id        ulid.ULID
	storage   *Storage
	listeners *listenerTable
	runner    Runner
	logger    *slog.Logger
	clock     func() time.Time
	phase     phase
	frame     *FrameInfo
	exit      *Exit
	// depth counts dispatches in progress; nested Event calls raise it.
	depth int
}

// ID returns the App's instance identifier.
func (a *App) ID() ulid.ULID {
	return a.id
}

// Storage returns the App's storage.
func (a *App) Storage() *Storage {
	return a.storage
}

// Logger returns the App's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// ListenerCount returns how many listeners are registered for events of
// key's type.
func (a *App) ListenerCount(key TypeKey) int {
	return a.listeners.count(key)
}

// Event dispatches v immediately: repeating listeners for v's type run in
// registration order, then its once listeners are removed and run in
// registration order. A handler may call Event itself; the nested dispatch
// completes before the outer one continues.
func (a *App) Event(v any) {
	key, ptr, ok := cellOf(v)
	if !ok {
		panic(&WiringError{Code: CodeInvalidHandler, Detail: "event must be a non-nil value or pointer"})
	}
	a.dispatch(key, ptr, dispatchImmediate)
}

// Queue defers v until the next drain and returns its envelope ID.
func (a *App) Queue(v any) ulid.ULID {
	return a.storage.queue.Push(v)
}

// Drain dispatches queued events one at a time in FIFO order until the
// queue is empty, including events queued by the handlers it runs. It
// returns the number of events dispatched.
func (a *App) Drain() int {
	n := 0
	for {
		env, ok := a.storage.queue.pop()
		if !ok {
			break
		}
		a.dispatch(env.Key, env.Value, dispatchQueued)
		n++
	}
	if n > 0 {
		a.logger.Debug("drained event queue", "events", n)
	}
	return n
}

// DispatchDepth returns the number of dispatches currently running. It is
// 1 inside a handler called from the runner and grows with each nested
// Event call.
func (a *App) DispatchDepth() int {
	return a.depth
}

func (a *App) dispatch(key TypeKey, ev any, mode string) {
	a.depth++
	defer func() { a.depth-- }()
	repeating, once := a.listeners.take(key)
	eventsDispatched.WithLabelValues(key.String(), mode).Inc()
	for _, l := range repeating {
		l.Handler.invoke(a.storage, ev)
	}
	for _, l := range once {
		l.Handler.invoke(a.storage, ev)
	}
	if n := len(repeating) + len(once); n > 0 {
		handlerInvocations.WithLabelValues(key.String()).Add(float64(n))
	}
}

// Init fires Init and drains the queue. Only the first call has any effect.
func (a *App) Init() {
	if a.phase != phaseConstructed {
		return
	}
	a.phase = phaseInitialized
	a.logger.Info("app initializing", "app_id", a.id.String())
	a.Event(Init{})
	a.Drain()
}

// Frame runs one frame: FrameStart, Update, a queue drain, then FrameEnd.
// It calls Init first if the App has not been initialized, and panics once
// the App is closed.
func (a *App) Frame() {
	if a.phase == phaseClosed {
		panic(&WiringError{Code: CodeBuilderState, Detail: "frame after close"})
	}
	a.Init()

	now := a.clock()
	if a.frame.Frame > 0 {
		a.frame.Delta = now.Sub(a.frame.Started)
	}
	a.frame.Frame++
	a.frame.Started = now

	a.Event(FrameStart{})
	a.Update()
	a.Drain()
	a.Event(FrameEnd{})

	framesTotal.Inc()
	frameDuration.Observe(a.clock().Sub(now).Seconds())
}

// Update fires exactly one Update event.
func (a *App) Update() {
	a.Event(Update{})
}

// Close fires Close and drains the queue. Only the first call has any
// effect.
func (a *App) Close() {
	if a.phase == phaseClosed {
		return
	}
	a.phase = phaseClosed
	a.Event(Close{})
	a.Drain()
	a.logger.Info("app closed", "app_id", a.id.String(), "frames", a.frame.Frame)
}

// Closed reports whether Close has run.
func (a *App) Closed() bool {
	return a.phase == phaseClosed
}

// ExitRequested reports whether a handler asked the runner to stop.
func (a *App) ExitRequested() bool {
	return a.exit.Requested()
}

// Run hands the App to its runner.
func (a *App) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "app.run")
	defer span.End()

	if err := a.runner(ctx, a); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
