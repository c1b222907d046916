// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package asset

import (
	"github.com/hearthrt/hearth/pkg/app"
	"github.com/hearthrt/hearth/pkg/errutil"
)

// Config registers a *Loader plugin. Completions and changes are queued at
// the start of each frame, so handlers see them during that frame's drain.
type Config struct {
	Root  string
	Watch bool
	// Options are passed to NewLoader.
	Options []Option
}

// Apply implements app.Config.
func (c Config) Apply(b *app.Builder) error {
	loader := NewLoader(c.Root, c.Options...)
	if err := b.Plugins().Insert(loader); err != nil {
		return err
	}

	if c.Watch {
		b.On(app.Handle1(func(_ *app.Init, l *Loader) {
			if err := l.Watch(); err != nil {
				errutil.LogError(l.logger, "watch assets", err)
			}
		}).Named("asset.watch"))
	}
	b.On(app.Handle2(func(_ *app.FrameStart, l *Loader, q *app.Queue) {
		for _, ev := range l.Collect() {
			q.Push(ev)
		}
	}).Named("asset.collect")).
		On(app.Handle1(func(_ *app.Close, l *Loader) {
			if err := l.Close(); err != nil {
				errutil.LogError(l.logger, "close asset loader", err)
			}
		}).Named("asset.close"))
	return nil
}

// LateEvaluation returns false.
func (Config) LateEvaluation() bool { return false }
