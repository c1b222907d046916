// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hearthrt/hearth/internal/config"
)

// syncBuffer is a bytes.Buffer safe for a logger and a test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func headlessSettings() config.Settings {
	s := config.Defaults()
	s.Headless = true
	s.FrameRate = 0
	s.LogLevel = "debug"
	s.PluginsDir = samplePlugins
	return s
}

func TestRunApp_HeadlessRunsScriptPlugins(t *testing.T) {
	defer goleak.VerifyNone(t)
	logs := new(bytes.Buffer)
	s := headlessSettings()
	s.MaxFrames = 60

	require.NoError(t, runApp(context.Background(), s, &RunDeps{LogWriter: logs}))

	out := logs.String()
	assert.Contains(t, out, "hello from heartbeat")
	assert.Contains(t, out, "beat 2 (frame 60")
	assert.Contains(t, out, "goodbye after 2 beats")
	assert.Contains(t, out, "service=hearth")
}

func TestRunApp_HeadlessWithoutMaxFramesRunsOneFrame(t *testing.T) {
	logs := new(bytes.Buffer)

	require.NoError(t, runApp(context.Background(), headlessSettings(), &RunDeps{LogWriter: logs}))

	assert.Contains(t, logs.String(), "goodbye after 0 beats")
}

func TestRunApp_LoadsBannerAsset(t *testing.T) {
	defer goleak.VerifyNone(t)
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, bannerAsset), []byte("welcome"), 0o600))
	logs := new(bytes.Buffer)
	s := headlessSettings()
	s.AssetsDir = assets
	s.FrameRate = 500
	s.MaxFrames = 200

	require.NoError(t, runApp(context.Background(), s, &RunDeps{LogWriter: logs}))

	assert.Contains(t, logs.String(), "asset loaded")
	assert.Contains(t, logs.String(), "bytes=7")
}

func TestRunApp_DefaultPluginsDirFromXDG(t *testing.T) {
	logs := new(bytes.Buffer)
	s := headlessSettings()
	s.PluginsDir = ""
	var asked bool

	err := runApp(context.Background(), s, &RunDeps{
		LogWriter: logs,
		PluginsDirGetter: func() (string, error) {
			asked = true
			return t.TempDir(), nil
		},
	})

	require.NoError(t, err)
	assert.True(t, asked)
	assert.NotContains(t, logs.String(), "heartbeat")
}

func TestRunApp_WindowedStopsOnEscape(t *testing.T) {
	defer goleak.VerifyNone(t)
	screen := tcell.NewSimulationScreen("")
	logs := &syncBuffer{}
	s := headlessSettings()
	s.Headless = false
	s.FrameRate = 1000
	s.MaxFrames = 10000

	done := make(chan error, 1)
	go func() {
		done <- runApp(context.Background(), s, &RunDeps{Screen: screen, LogWriter: logs})
	}()
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "window opened")
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))

	require.NoError(t, <-done)
	assert.Contains(t, logs.String(), "window close requested")
}

func TestRunApp_WindowedShowsBanner(t *testing.T) {
	defer goleak.VerifyNone(t)
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, bannerAsset), []byte("welcome home\nignored"), 0o600))
	screen := tcell.NewSimulationScreen("")
	logs := &syncBuffer{}
	s := headlessSettings()
	s.Headless = false
	s.PluginsDir = t.TempDir()
	s.AssetsDir = assets
	s.FrameRate = 1000
	s.MaxFrames = 10000

	done := make(chan error, 1)
	go func() {
		done <- runApp(context.Background(), s, &RunDeps{Screen: screen, LogWriter: logs})
	}()
	require.Eventually(t, func() bool {
		return screenRow(screen, 1, len("welcome home")) == "welcome home"
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))

	require.NoError(t, <-done)
}

// screenRow reads n cells of row y.
func screenRow(screen tcell.SimulationScreen, y, n int) string {
	var sb strings.Builder
	for x := range n {
		r, _, _, _ := screen.GetContent(x, y) //nolint:staticcheck // reading back single cells
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "welcome", firstLine([]byte("  welcome \nsecond")))
	assert.Equal(t, "", firstLine(nil))
}

func TestRunApp_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := headlessSettings()
	s.MaxFrames = 1_000_000

	require.NoError(t, runApp(ctx, s, &RunDeps{LogWriter: new(bytes.Buffer)}))
}

func TestRunCommand_InvalidFlagValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, _, err := execute(t, "run", "--headless", "--log-format", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log-format")
}
