// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hearthrt/hearth/pkg/app"
	"github.com/hearthrt/hearth/pkg/errutil"
)

// shutdownTimeout bounds the graceful stop run from the Close handler.
const shutdownTimeout = 5 * time.Second

// Config registers a *Server plugin that starts serving when the App
// initialises and stops when it closes. Readiness turns true once Init has
// been dispatched.
type Config struct {
	Addr string
}

// Apply implements app.Config.
func (c Config) Apply(b *app.Builder) error {
	ready := &atomic.Bool{}
	srv := NewServer(c.Addr, nil, ready.Load)

	b.AddPlugin(srv).
		On(app.Handle1(func(_ *app.Init, s *Server) {
			if _, err := s.Start(); err != nil {
				errutil.LogError(s.logger, "start observability server", err)
				return
			}
			ready.Store(true)
		}).Named("observability.start")).
		On(app.Handle1(func(_ *app.Close, s *Server) {
			ready.Store(false)
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Stop(ctx); err != nil {
				errutil.LogError(s.logger, "stop observability server", err)
			}
		}).Named("observability.stop"))
	return nil
}

// LateEvaluation returns false.
func (Config) LateEvaluation() bool {
	return false
}
