// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gdamore/tcell/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/hearthrt/hearth/internal/asset"
	"github.com/hearthrt/hearth/internal/observability"
	"github.com/hearthrt/hearth/internal/plugin"
	"github.com/hearthrt/hearth/internal/plugin/lua"
	"github.com/hearthrt/hearth/internal/rng"
	"github.com/hearthrt/hearth/internal/window"
	"github.com/hearthrt/hearth/pkg/app"
)

const samplePlugins = "../../plugins"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFullBuilder wires every collaborator into one builder.
func newFullBuilder(assets string) *app.Builder {
	logger := quietLogger()
	b := app.NewBuilder().WithLogger(logger)

	_, err := b.AddConfig(rng.Config{Seed: 7})
	Expect(err).NotTo(HaveOccurred())
	random, ok := app.Get[rng.Source](b.Plugins())
	Expect(ok).To(BeTrue())

	_, err = b.AddConfig(plugin.Config{
		Dir:            samplePlugins,
		Host:           lua.NewHost(lua.WithRandom(random), lua.WithLogger(logger)),
		RuntimeVersion: semver.MustParse("0.1.0"),
		Logger:         logger,
	})
	Expect(err).NotTo(HaveOccurred())

	_, err = b.AddConfig(asset.Config{Root: assets, Options: []asset.Option{asset.WithLogger(logger)}})
	Expect(err).NotTo(HaveOccurred())

	_, err = b.AddConfig(observability.Config{Addr: "127.0.0.1:0"})
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("A fully wired App", func() {
	var (
		assets   string
		messages []plugin.Message
		loaded   []asset.Loaded
	)

	BeforeEach(func() {
		assets = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(assets, "level.txt"), []byte("#..#"), 0o600)).To(Succeed())
		messages = nil
		loaded = nil
	})

	collect := func(b *app.Builder) {
		b.On(app.Handle(func(m *plugin.Message) { messages = append(messages, *m) })).
			On(app.Handle(func(ev *asset.Loaded) { loaded = append(loaded, *ev) })).
			On(app.Handle1(func(_ *app.Init, l *asset.Loader) { l.Load("level.txt") }))
	}

	Context("with a headless loop runner", func() {
		It("delivers lifecycle events to scripts and assets to handlers", func() {
			b := newFullBuilder(assets)
			collect(b)
			b.SetRunner(app.LoopRunner(app.LoopOptions{Interval: time.Millisecond, MaxFrames: 90}))

			Expect(b.Build(context.Background())).To(Succeed())

			texts := make([]string, 0, len(messages))
			for _, m := range messages {
				Expect(m.Plugin).To(Equal("heartbeat"))
				texts = append(texts, m.Text)
			}
			Expect(texts).To(HaveLen(5))
			Expect(texts[0]).To(Equal("hello from heartbeat"))
			Expect(texts[1]).To(HavePrefix("beat 1 (frame 30"))
			Expect(texts[3]).To(HavePrefix("beat 3 (frame 90"))
			Expect(texts[4]).To(Equal("goodbye after 3 beats"))

			Expect(loaded).To(HaveLen(1))
			Expect(string(loaded[0].Data)).To(Equal("#..#"))
		})

		It("serves metrics while running", func() {
			b := newFullBuilder(assets)
			var status int
			b.Once(app.Handle1(func(_ *app.Update, srv *observability.Server) {
				resp, err := http.Get("http://" + srv.Addr() + "/metrics")
				Expect(err).NotTo(HaveOccurred())
				status = resp.StatusCode
				_ = resp.Body.Close()
			}))
			b.SetRunner(app.LoopRunner(app.LoopOptions{MaxFrames: 3}))

			a, err := b.BuildApp(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Run(context.Background())).To(Succeed())

			Expect(status).To(Equal(http.StatusOK))
			srv, ok := app.Get[observability.Server](a.Storage().Plugins())
			Expect(ok).To(BeTrue())
			Expect(srv.Running()).To(BeFalse())
		})

		It("replays the same script output for the same seed", func() {
			run := func() []plugin.Message {
				messages = nil
				b := newFullBuilder(assets)
				collect(b)
				b.SetRunner(app.LoopRunner(app.LoopOptions{MaxFrames: 60}))
				Expect(b.Build(context.Background())).To(Succeed())
				return messages
			}
			Expect(run()).To(Equal(run()))
		})
	})

	Context("with the terminal window as platform runner", func() {
		It("stops when the user presses Escape", func() {
			screen := tcell.NewSimulationScreen("")
			b := newFullBuilder(assets)
			collect(b)
			_, err := b.AddConfig(window.Config{
				Title:     "integration",
				Screen:    screen,
				Interval:  time.Millisecond,
				MaxFrames: 100000,
				Logger:    quietLogger(),
			})
			Expect(err).NotTo(HaveOccurred())
			b.Once(app.Handle1(func(_ *app.FrameEnd, w *window.Window) {
				Expect(w.Post(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))).To(Succeed())
			}))

			a, err := b.BuildApp(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Run(context.Background())).To(Succeed())

			Expect(a.ExitRequested()).To(BeTrue())
			Expect(a.Closed()).To(BeTrue())
			Expect(messages).NotTo(BeEmpty())
			Expect(messages[len(messages)-1].Text).To(HavePrefix("goodbye after"))
		})
	})
})
