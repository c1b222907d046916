// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

//go:build integration

package plugin_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/hearthrt/hearth/internal/plugin"
	pluginlua "github.com/hearthrt/hearth/internal/plugin/lua"
	"github.com/hearthrt/hearth/internal/rng"
)

const heartbeatDir = "../../plugins"

var _ = Describe("The heartbeat sample plugin", func() {
	var (
		ctx  context.Context
		host *pluginlua.Host
		mgr  *plugin.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger, _ := quietLogger()
		host = pluginlua.NewHost(pluginlua.WithRandom(rng.New(1)), pluginlua.WithLogger(logger))
		mgr = plugin.NewManager(heartbeatDir,
			plugin.WithHost(host),
			plugin.WithRuntimeVersion(semver.MustParse("0.1.0")),
			plugin.WithLogger(logger))
	})

	AfterEach(func() {
		Expect(mgr.Close(ctx)).To(Succeed())
	})

	It("is discovered with a schema-valid manifest", func() {
		discovered, err := mgr.Discover(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(discovered).To(HaveLen(1))
		Expect(discovered[0].Manifest.Name).To(Equal("heartbeat"))

		data, err := os.ReadFile(filepath.Join(discovered[0].Dir, plugin.ManifestFile))
		Expect(err).NotTo(HaveOccurred())
		Expect(plugin.ValidateSchema(data)).To(Succeed())
	})

	It("subscribes to init, frame.end and close", func() {
		_, err := mgr.LoadAll(ctx)
		Expect(err).NotTo(HaveOccurred())

		for _, event := range []string{plugin.EventInit, plugin.EventFrameEnd, plugin.EventClose} {
			Expect(mgr.Subscribers(event)).To(ConsistOf("heartbeat"), event)
		}
		Expect(mgr.Subscribers(plugin.EventUpdate)).To(BeEmpty())
	})

	It("beats every thirtieth frame with a die roll", func() {
		_, err := mgr.LoadAll(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(mgr.Deliver(ctx, plugin.Event{Name: plugin.EventFrameEnd, Frame: 29})).To(BeEmpty())
		msgs := mgr.Deliver(ctx, plugin.Event{Name: plugin.EventFrameEnd, Frame: 30})
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Text).To(MatchRegexp(`^beat 1 \(frame 30, roll [1-6]\)$`))
	})

	It("cannot emit once its grant is withdrawn", func() {
		root := GinkgoT().TempDir()
		src, err := os.ReadFile(filepath.Join(heartbeatDir, "heartbeat", "plugin.yaml"))
		Expect(err).NotTo(HaveOccurred())
		manifest := strings.Replace(string(src), "  - hearth.emit\n", "", 1)
		Expect(os.MkdirAll(filepath.Join(root, "heartbeat"), 0o750)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "heartbeat", "plugin.yaml"), []byte(manifest), 0o600)).To(Succeed())
		lua, err := os.ReadFile(filepath.Join(heartbeatDir, "heartbeat", "main.lua"))
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(root, "heartbeat", "main.lua"), lua, 0o600)).To(Succeed())

		logger, logs := quietLogger()
		restricted := plugin.NewManager(root,
			plugin.WithHost(pluginlua.NewHost(pluginlua.WithLogger(logger))),
			plugin.WithLogger(logger))
		defer func() { _ = restricted.Close(ctx) }()
		_, err = restricted.LoadAll(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(restricted.Deliver(ctx, plugin.Event{Name: plugin.EventInit})).To(BeEmpty())
		Expect(logs.String()).To(ContainSubstring("hearth.emit"))
	})
})
