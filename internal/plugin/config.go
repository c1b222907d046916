// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package plugin

import (
	"context"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/hearthrt/hearth/pkg/app"
	"github.com/hearthrt/hearth/pkg/errutil"
)

// Config loads the plugins found in Dir into Host and registers a *Manager
// plugin. For each lifecycle event at least one loaded plugin subscribes
// to, it adds a handler that runs the scripts and queues their messages as
// Message events.
type Config struct {
	Dir            string
	Host           Host
	RuntimeVersion *semver.Version
	Logger         *slog.Logger
}

// Apply implements app.Config.
func (c Config) Apply(b *app.Builder) error {
	opts := []ManagerOption{WithHost(c.Host), WithRuntimeVersion(c.RuntimeVersion)}
	if c.Logger != nil {
		opts = append(opts, WithLogger(c.Logger))
	}
	mgr := NewManager(c.Dir, opts...)
	if _, err := mgr.LoadAll(context.Background()); err != nil {
		return err
	}
	if err := b.Plugins().Insert(mgr); err != nil {
		return err
	}

	subscribe[app.Init](b, mgr, EventInit)
	subscribe[app.FrameStart](b, mgr, EventFrameStart)
	subscribe[app.Update](b, mgr, EventUpdate)
	subscribe[app.FrameEnd](b, mgr, EventFrameEnd)
	subscribe[app.Close](b, mgr, EventClose)

	b.On(app.Handle1(func(_ *app.Close, m *Manager) {
		if err := m.Close(context.Background()); err != nil {
			errutil.LogError(m.logger, "close plugins", err)
		}
	}).Named("plugin.close"))
	return nil
}

// LateEvaluation returns false.
func (Config) LateEvaluation() bool { return false }

func subscribe[E any](b *app.Builder, mgr *Manager, name string) {
	if len(mgr.Subscribers(name)) == 0 {
		return
	}
	b.On(app.Handle3(func(_ *E, m *Manager, info *app.FrameInfo, q *app.Queue) {
		ev := Event{Name: name, Frame: info.Frame, Delta: info.Delta}
		for _, msg := range m.Deliver(context.Background(), ev) {
			q.Push(msg)
		}
	}).Named("plugin." + name))
}
