// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"context"
	"time"
)

// Runner drives an App's lifecycle. It returns when the App should stop.
type Runner func(ctx context.Context, a *App) error

// DefaultRunner runs Init, one frame, and Close.
func DefaultRunner(_ context.Context, a *App) error {
	a.Init()
	a.Frame()
	a.Close()
	return nil
}

// EventSource feeds external events into the App, for example a windowing
// backend. Poll must not block; it returns the events received since the
// previous call.
type EventSource interface {
	Poll(ctx context.Context) ([]any, error)
}

// LoopOptions configures LoopRunner.
type LoopOptions struct {
	// Interval is the minimum time between frame starts. Zero runs frames
	// back to back.
	Interval time.Duration
	// MaxFrames stops the loop after this many frames. Zero means no limit.
	MaxFrames uint64
	// Source, if set, is polled before each frame and every event it
	// returns is dispatched immediately.
	Source EventSource
}

// LoopRunner returns a runner that runs Init, then frames until a handler
// requests Exit, MaxFrames is reached or ctx is done, then Close. The exit
// conditions are checked after each frame; a running handler is never
// interrupted.
//
// Cancellation of ctx is a normal stop and returns nil. An error from the
// event source stops the loop and is returned after Close.
func LoopRunner(opts LoopOptions) Runner {
	return func(ctx context.Context, a *App) error {
		a.Init()
		defer a.Close()

		var ticker *time.Ticker
		if opts.Interval > 0 {
			ticker = time.NewTicker(opts.Interval)
			defer ticker.Stop()
		}

		var frames uint64
		for {
			if ctx.Err() != nil {
				a.logger.Info("context done, stopping loop", "frames", frames)
				return nil
			}
			if opts.Source != nil {
				events, err := opts.Source.Poll(ctx)
				if err != nil {
					return err
				}
				for _, ev := range events {
					a.Event(ev)
				}
			}

			a.Frame()
			frames++

			if a.ExitRequested() {
				a.logger.Info("exit requested",
					"code", a.exit.Code,
					"reason", a.exit.Reason,
					"frames", frames)
				return nil
			}
			if opts.MaxFrames > 0 && frames >= opts.MaxFrames {
				return nil
			}
			if ticker != nil {
				select {
				case <-ctx.Done():
				case <-ticker.C:
				}
			}
		}
	}
}
