// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plugin and event types.
type (
	Counter struct{ N int }
	Label   struct{ Text string }
	Flag    struct{ On bool }

	Ping struct{ N int }
	Pong struct{ N int }

	trace struct{ Seen []string }
)

func (tr *trace) add(s string) { tr.Seen = append(tr.Seen, s) }

// capturePanic runs fn and returns the WiringError it panics with.
func capturePanic(t *testing.T, fn func()) (we *WiringError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		we, ok = r.(*WiringError)
		require.True(t, ok, "expected *WiringError, got %T: %v", r, r)
	}()
	fn()
	return nil
}

func assertWiringPanic(t *testing.T, code string, fn func()) *WiringError {
	t.Helper()
	we := capturePanic(t, fn)
	assert.Equal(t, code, we.Code)
	return we
}

// quietLogger returns a debug-level logger writing to the returned buffer.
func quietLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
