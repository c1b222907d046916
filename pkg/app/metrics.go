// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hearth/app")

// Dispatch metrics. Use RegisterMetrics to expose them on a registry.
var (
	eventsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearth_events_dispatched_total",
			Help: "Total number of events dispatched by event type and mode",
		},
		[]string{"event", "mode"},
	)

	handlerInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearth_handler_invocations_total",
			Help: "Total number of handler invocations by event type",
		},
		[]string{"event"},
	)

	// queueDepth sums pending events over every Queue in the process.
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hearth_queue_depth",
			Help: "Number of events waiting in event queues",
		},
	)

	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_frames_total",
			Help: "Total number of frames run",
		},
	)

	frameDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hearth_frame_duration_seconds",
			Help:    "Frame duration in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .0166, .025, .05, .1, .25},
		},
	)
)

// RegisterMetrics registers the runtime metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(eventsDispatched)
	reg.MustRegister(handlerInvocations)
	reg.MustRegister(queueDepth)
	reg.MustRegister(framesTotal)
	reg.MustRegister(frameDuration)
}
