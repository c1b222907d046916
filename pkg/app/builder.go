// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Config bundles related builder mutations, for example a plugin together
// with the handlers that drive it.
type Config interface {
	// Apply mutates the builder. An error aborts Build.
	Apply(b *Builder) error
	// LateEvaluation reports whether Apply must wait until Build, after
	// every other config has been added.
	LateEvaluation() bool
}

// ConfigFunc adapts a function to an immediately applied Config.
type ConfigFunc func(b *Builder) error

// Apply calls f(b).
func (f ConfigFunc) Apply(b *Builder) error {
	return f(b)
}

// LateEvaluation returns false.
func (f ConfigFunc) LateEvaluation() bool {
	return false
}

type builderState uint8

const (
	builderInit builderState = iota
	builderConfiguring
	builderResolving
	builderRunning
	builderDone
)

func (s builderState) String() string {
	switch s {
	case builderInit:
		return "init"
	case builderConfiguring:
		return "configuring"
	case builderResolving:
		return "resolving"
	case builderRunning:
		return "running"
	case builderDone:
		return "done"
	default:
		return "unknown"
	}
}

// noState is the state type of builders created with NewBuilder.
type noState struct{}

// Builder accumulates plugins, listeners, configs and a runner, and
// assembles them into an App.
//
// Chained methods record the first error they hit; Build returns it before
// doing any work. A Builder is single use.
type Builder struct {
	state     builderState
	setup     func(*Plugins) (any, error)
	plugins   *Plugins
	listeners *listenerTable
	late      *orderedmap.OrderedMap[TypeKey, Config]
	runner    Runner
	logger    *slog.Logger
	clock     func() time.Time
	frame     *FrameInfo
	exit      *Exit
	emitter   *Emitter
	err       error
}

// New creates a builder whose application state is produced by setup at
// build time. setup runs after every late config has been applied and may
// read plugins with Get or Require. A nil setup yields the zero S.
func New[S any](setup func(p *Plugins) (S, error)) *Builder {
	b := &Builder{
		plugins:   NewPlugins(),
		listeners: newListenerTable(),
		late:      orderedmap.New[TypeKey, Config](),
		runner:    DefaultRunner,
		clock:     time.Now,
		frame:     &FrameInfo{},
		exit:      &Exit{},
		emitter:   &Emitter{},
	}
	b.setup = func(p *Plugins) (any, error) {
		var s S
		if setup != nil {
			var err error
			if s, err = setup(p); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
	// Fresh pointers of distinct types; Insert cannot fail here.
	_ = b.plugins.Insert(b.frame)
	_ = b.plugins.Insert(b.exit)
	_ = b.plugins.Insert(b.emitter)
	return b
}

// NewBuilder creates a builder with no application state.
func NewBuilder() *Builder {
	return New[noState](nil)
}

// WithLogger sets the logger used by the builder and the App.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.mutable()
	b.logger = l
	return b
}

// WithClock replaces the clock used for frame timing.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.mutable()
	b.clock = now
	return b
}

// AddPlugin registers v so handlers can declare it as a parameter. A
// non-pointer value is copied. Registering a second value of the same type
// fails the build with DUPLICATE_PLUGIN.
func (b *Builder) AddPlugin(v any) *Builder {
	b.mutable()
	if err := b.plugins.Insert(v); err != nil {
		b.fail(err)
		return b
	}
	b.log().Debug("plugin added", "type", KeyOfValue(v).String())
	return b
}

// On registers h to run on every occurrence of its event.
func (b *Builder) On(h Handler) *Builder {
	return b.listen(Repeating, h)
}

// Once registers h to run on the first occurrence of its event only.
func (b *Builder) Once(h Handler) *Builder {
	return b.listen(Once, h)
}

func (b *Builder) listen(mode Mode, h Handler) *Builder {
	b.mutable()
	if h.call == nil {
		panic(&WiringError{Code: CodeInvalidHandler, Detail: "zero Handler"})
	}
	l := b.listeners.add(mode, h)
	b.log().Debug("listener added",
		"handler", h.name,
		"event", h.event.String(),
		"mode", mode.String(),
		"ordinal", l.Ordinal)
	return b
}

// SetRunner replaces the runner. The last call wins.
func (b *Builder) SetRunner(r Runner) *Builder {
	b.mutable()
	if r == nil {
		panic(&WiringError{Code: CodeBuilderState, Detail: "nil runner"})
	}
	b.runner = r
	return b
}

// AddConfig applies c now, or defers it to Build when c.LateEvaluation()
// is true. Deferred configs are keyed by their type: adding a second late
// config of the same type replaces the pending one, which keeps the
// position of the first. Late configs are applied in the order their types
// were first added.
//
// An error from an immediate Apply is returned and also fails Build.
func (b *Builder) AddConfig(c Config) (*Builder, error) {
	b.mutable()
	key := KeyOfValue(c)
	if c.LateEvaluation() {
		if b.state == builderResolving {
			err := errLateConfigDeferred(key)
			b.fail(err)
			return b, err
		}
		if _, replaced := b.late.Set(key, c); replaced {
			b.log().Warn("late config replaced; only the last one of a type is applied",
				"config", key.String())
		}
		return b, nil
	}
	if err := c.Apply(b); err != nil {
		err = errConfigApply(key, err)
		b.fail(err)
		return b, err
	}
	return b, nil
}

// Plugins exposes the registry being built, for configs that need to see
// what other configs registered.
func (b *Builder) Plugins() *Plugins {
	return b.plugins
}

// Err returns the first error recorded by a chained call.
func (b *Builder) Err() error {
	return b.err
}

// Build assembles the App and runs it to completion with the configured
// runner.
func (b *Builder) Build(ctx context.Context) error {
	a, err := b.BuildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.Run(ctx); err != nil {
		return errRunner(err)
	}
	b.state = builderDone
	return nil
}

// BuildApp resolves late configs, runs setup and returns the assembled App
// without running it.
func (b *Builder) BuildApp(ctx context.Context) (*App, error) {
	ctx, span := tracer.Start(ctx, "app.build")
	defer span.End()

	if b.state >= builderRunning {
		panic(&WiringError{Code: CodeBuilderState, Detail: "builder already built"})
	}
	if b.err != nil {
		return nil, b.err
	}

	// One pass over the late configs present now. Late configs cannot be
	// added from here on.
	b.state = builderResolving
	pending := b.late
	b.late = orderedmap.New[TypeKey, Config]()
	for pair := pending.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.Apply(b); err != nil {
			err = errConfigApply(pair.Key, err)
			span.RecordError(err)
			return nil, err
		}
		if b.err != nil {
			return nil, b.err
		}
	}

	value, err := b.setup(b.plugins)
	if err != nil {
		return nil, errSetup(err)
	}
	stateKey, state, ok := cellOf(value)
	if !ok {
		return nil, errSetup(ErrInvalidPlugin(value))
	}
	if b.plugins.Has(stateKey) {
		return nil, errStateConflict(stateKey)
	}
	storage := newStorage(stateKey, state, b.plugins, NewQueue())

	for _, l := range b.listeners.all() {
		for _, dep := range l.Handler.deps {
			if _, ok := storage.resolve(dep); !ok {
				return nil, errUnresolved(l.Handler.name, l.Handler.event, dep)
			}
		}
	}

	b.plugins.seal()
	b.state = builderRunning

	a := &App{
		id:        ulid.Make(),
		storage:   storage,
		listeners: b.listeners,
		runner:    b.runner,
		logger:    b.log(),
		clock:     b.clock,
		frame:     b.frame,
		exit:      b.exit,
	}
	b.emitter.app = a
	a.logger.InfoContext(ctx, "app built",
		"app_id", a.id.String(),
		"state", stateKey.String(),
		"plugins", b.plugins.Len(),
		"listeners", len(b.listeners.all()))
	return a, nil
}

func (b *Builder) mutable() {
	switch b.state {
	case builderInit:
		b.state = builderConfiguring
	case builderConfiguring, builderResolving:
	default:
		panic(&WiringError{Code: CodeBuilderState, Detail: "builder used after build (state " + b.state.String() + ")"})
	}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}
