// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Envelope is one deferred event: the event's type tag and a pointer to
// its value.
type Envelope struct {
	ID       ulid.ULID
	Key      TypeKey
	Value    any
	QueuedAt time.Time
}

// Queue is a FIFO of deferred events. Handlers receive it by declaring a
// *Queue parameter.
//
// Queue has no capacity limit. A handler that pushes on every delivery keeps
// a drain running until it stops.
type Queue struct {
	items []Envelope
	head  int
	total uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event and returns its envelope ID. A non-pointer value is
// copied; a pointer is delivered as given.
func (q *Queue) Push(v any) ulid.ULID {
	key, ptr, ok := cellOf(v)
	if !ok {
		panic(&WiringError{Code: CodeInvalidHandler, Detail: "queued event must be a non-nil value or pointer"})
	}
	env := Envelope{
		ID:       ulid.Make(),
		Key:      key,
		Value:    ptr,
		QueuedAt: time.Now(),
	}
	q.items = append(q.items, env)
	q.total++
	queueDepth.Inc()
	return env.ID
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Total returns the number of events pushed over the queue's lifetime.
func (q *Queue) Total() uint64 {
	return q.total
}

// Pending returns a copy of the pending envelopes in delivery order.
func (q *Queue) Pending() []Envelope {
	out := make([]Envelope, q.Len())
	copy(out, q.items[q.head:])
	return out
}

// pop removes and returns the oldest envelope.
func (q *Queue) pop() (Envelope, bool) {
	if q.head >= len(q.items) {
		return Envelope{}, false
	}
	env := q.items[q.head]
	q.items[q.head] = Envelope{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	queueDepth.Dec()
	return env, true
}
