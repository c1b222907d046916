// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package window

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/oops"

	"github.com/hearthrt/hearth/pkg/app"
)

var statusStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)

// Config registers a *Window plugin and makes the window the platform
// runner. It is evaluated late so it can replace any runner set by
// immediate configs, and a second window Config replaces the first.
type Config struct {
	Title string
	// Screen overrides the terminal screen, for tests.
	Screen tcell.Screen
	// Interval is the minimum time between frames.
	Interval time.Duration
	// MaxFrames stops the loop after this many frames. Zero means no limit.
	MaxFrames uint64
	Logger    *slog.Logger
}

// Apply implements app.Config.
func (c Config) Apply(b *app.Builder) error {
	screen := c.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return oops.Code(CodeScreen).Wrapf(err, "create terminal screen")
		}
	}
	w := New(screen, c.Title, c.Logger)
	if err := b.Plugins().Insert(w); err != nil {
		return err
	}

	b.On(app.Handle1(func(_ *CloseRequested, exit *app.Exit) {
		exit.Request(0, "window close requested")
	}).Named("window.close_requested")).
		On(app.Handle1(func(_ *Resized, w *Window) {
			w.screen.Clear()
		}).Named("window.resized")).
		On(app.Handle2(func(_ *app.FrameEnd, w *Window, info *app.FrameInfo) {
			w.DrawText(0, 0, fmt.Sprintf("%s  frame %d", w.title, info.Frame), statusStyle)
			w.DrawText(0, 1, w.status, tcell.StyleDefault)
			w.Show()
		}).Named("window.present")).
		On(app.Handle1(func(_ *app.Close, w *Window) {
			w.Close()
		}).Named("window.close"))

	loop := app.LoopRunner(app.LoopOptions{
		Interval:  c.Interval,
		MaxFrames: c.MaxFrames,
		Source:    w,
	})
	b.SetRunner(func(ctx context.Context, a *app.App) error {
		if err := w.Open(); err != nil {
			return err
		}
		defer w.Close()
		return loop(ctx, a)
	})
	return nil
}

// LateEvaluation returns true.
func (Config) LateEvaluation() bool { return true }
