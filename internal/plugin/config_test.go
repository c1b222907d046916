// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package plugin_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthrt/hearth/internal/plugin"
	pluginlua "github.com/hearthrt/hearth/internal/plugin/lua"
	"github.com/hearthrt/hearth/pkg/app"
)

func writeScript(t *testing.T, root, name, events, code string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	manifest := manifestYAML(name, "events: "+events+"\ncapabilities: [hearth.emit]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, plugin.ManifestFile), []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(code), 0o600))
}

func TestConfig_ScriptsRunOnLifecycleEvents(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "tracer", "[init, update, close]", `
function on_init(ev) hearth.emit("init") end
function on_update(ev) hearth.emit("update " .. ev.frame) end
function on_close(ev) hearth.emit("close") end
`)
	logger, _ := quietLogger()

	var got []string
	b := app.NewBuilder().WithLogger(logger)
	_, err := b.AddConfig(plugin.Config{
		Dir:            root,
		Host:           pluginlua.NewHost(pluginlua.WithLogger(logger)),
		RuntimeVersion: semver.MustParse("0.1.0"),
		Logger:         logger,
	})
	require.NoError(t, err)
	b.On(app.Handle(func(m *plugin.Message) { got = append(got, m.Plugin+": "+m.Text) }))

	require.NoError(t, b.Build(context.Background()))

	assert.Equal(t, []string{"tracer: init", "tracer: update 1", "tracer: close"}, got)
}

func TestConfig_OnlySubscribedEventsGetHandlers(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "ender", "['frame.end']", `function on_frame_end(ev) end`)
	logger, _ := quietLogger()

	b := app.NewBuilder().WithLogger(logger)
	_, err := b.AddConfig(plugin.Config{Dir: root, Host: pluginlua.NewHost(), Logger: logger})
	require.NoError(t, err)
	a, err := b.BuildApp(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, a.ListenerCount(app.KeyOf[app.FrameEnd]()))
	assert.Equal(t, 0, a.ListenerCount(app.KeyOf[app.Update]()))
	assert.Equal(t, 1, a.ListenerCount(app.KeyOf[app.Close]()), "manager close handler only")
}

func TestConfig_SamplePluginLoads(t *testing.T) {
	logger, _ := quietLogger()
	mgr := plugin.NewManager(filepath.Join("..", "..", "plugins"),
		plugin.WithHost(pluginlua.NewHost(pluginlua.WithLogger(logger))),
		plugin.WithRuntimeVersion(semver.MustParse("0.1.0")),
		plugin.WithLogger(logger))

	names, err := mgr.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Contains(t, names, "heartbeat")
	require.NoError(t, mgr.Close(context.Background()))
}
