// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package app is the Hearth runtime core: a type-keyed plugin registry, a
// handler invoker that resolves one pointer per declared parameter type, an
// event queue with immediate and deferred dispatch, and the builder that
// assembles plugins, handlers and configs into a runnable App.
//
// A minimal program:
//
//	type Counter struct{ N int }
//
//	err := app.NewBuilder().
//		AddPlugin(Counter{}).
//		On(app.Handle1(func(_ *app.Update, c *Counter) { c.N++ })).
//		Build(ctx)
//
// Dispatch is single-threaded. Handlers run to completion on the goroutine
// driving the Runner and must not retain the pointers they receive.
package app
