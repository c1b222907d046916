// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildApp assembles an App from b with a test logger.
func buildApp(t *testing.T, b *Builder) *App {
	t.Helper()
	logger, _ := quietLogger()
	a, err := b.WithLogger(logger).BuildApp(context.Background())
	require.NoError(t, err)
	return a
}

func TestApp_ImmediateDispatchOrder(t *testing.T) {
	tr := &trace{}
	b := NewBuilder().AddPlugin(tr)
	b.Once(Handle1(func(_ *Ping, tr *trace) { tr.add("once-1") }))
	b.On(Handle1(func(_ *Ping, tr *trace) { tr.add("rep-1") }))
	b.Once(Handle1(func(_ *Ping, tr *trace) { tr.add("once-2") }))
	b.On(Handle1(func(_ *Ping, tr *trace) { tr.add("rep-2") }))
	b.On(Handle1(func(_ *Pong, tr *trace) { tr.add("pong") }))
	a := buildApp(t, b)

	a.Event(Ping{})

	assert.Equal(t, []string{"rep-1", "rep-2", "once-1", "once-2"}, tr.Seen)
}

func TestApp_OnceFiresExactlyOnce(t *testing.T) {
	tr := &trace{}
	b := NewBuilder().AddPlugin(tr)
	b.Once(Handle1(func(p *Ping, tr *trace) { tr.add(fmt.Sprintf("once-%d", p.N)) }))
	b.On(Handle1(func(p *Ping, tr *trace) { tr.add(fmt.Sprintf("rep-%d", p.N)) }))
	a := buildApp(t, b)

	for i := 1; i <= 5; i++ {
		a.Event(Ping{N: i})
	}
	a.Queue(Ping{N: 6})
	a.Drain()

	assert.Equal(t, []string{"rep-1", "once-1", "rep-2", "rep-3", "rep-4", "rep-5", "rep-6"}, tr.Seen)
	assert.Equal(t, 1, a.ListenerCount(KeyOf[Ping]()))
}

func TestApp_OnceListenerIsRemovedBeforeItRuns(t *testing.T) {
	count := &Counter{}
	b := NewBuilder().AddPlugin(count)
	b.Once(Handle2(func(_ *Ping, c *Counter, e *Emitter) {
		c.N++
		e.Emit(Ping{})
	}))
	a := buildApp(t, b)

	a.Event(Ping{})

	assert.Equal(t, 1, count.N)
}

func TestApp_RecursiveDispatchIsDepthFirst(t *testing.T) {
	tr := &trace{}
	b := NewBuilder().AddPlugin(tr)
	b.On(Handle2(func(_ *Ping, tr *trace, e *Emitter) {
		tr.add("ping-start")
		e.Emit(Pong{})
		tr.add("ping-end")
	}))
	b.On(Handle1(func(_ *Ping, tr *trace) { tr.add("ping-second") }))
	b.On(Handle1(func(_ *Pong, tr *trace) { tr.add("pong") }))
	a := buildApp(t, b)

	a.Event(&Ping{})

	assert.Equal(t, []string{"ping-start", "pong", "ping-end", "ping-second"}, tr.Seen)
}

func TestApp_DispatchDepthTracksNesting(t *testing.T) {
	var (
		a      *App
		depths []int
	)
	b := NewBuilder()
	b.On(Handle1(func(_ *Ping, e *Emitter) {
		depths = append(depths, a.DispatchDepth())
		e.Emit(Pong{})
	}))
	b.On(Handle(func(*Pong) { depths = append(depths, a.DispatchDepth()) }))
	a = buildApp(t, b)

	a.Event(Ping{})

	assert.Equal(t, []int{1, 2}, depths)
	assert.Zero(t, a.DispatchDepth())
}

func TestApp_DrainIsFIFOIncludingEventsQueuedDuringDrain(t *testing.T) {
	tr := &trace{}
	b := NewBuilder().AddPlugin(tr)
	b.On(Handle2(func(p *Ping, tr *trace, q *Queue) {
		tr.add(fmt.Sprintf("e%d", p.N))
		if p.N == 1 {
			q.Push(Ping{N: 4})
		}
	}))
	a := buildApp(t, b)

	a.Queue(Ping{N: 1})
	a.Queue(Ping{N: 2})
	a.Queue(Ping{N: 3})
	assert.Empty(t, tr.Seen, "queued events must not run before a drain")

	n := a.Drain()

	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, tr.Seen)
	assert.Equal(t, 0, a.Storage().Queue().Len())
}

func TestApp_DrainWithoutListenersConsumesEvents(t *testing.T) {
	a := buildApp(t, NewBuilder())

	a.Queue(Ping{})
	a.Queue(Pong{})

	assert.Equal(t, 2, a.Drain())
	assert.Equal(t, 0, a.Drain())
}

func TestApp_LifecycleOrder(t *testing.T) {
	tr := &trace{}
	b := NewBuilder().AddPlugin(tr)
	b.On(Handle1(func(_ *Init, tr *trace) { tr.add("init") }))
	b.On(Handle1(func(_ *FrameStart, tr *trace) { tr.add("frame-start") }))
	b.On(Handle2(func(_ *Update, tr *trace, q *Queue) {
		tr.add("update")
		q.Push(Pong{})
	}))
	b.On(Handle1(func(_ *Pong, tr *trace) { tr.add("queued") }))
	b.On(Handle1(func(_ *FrameEnd, tr *trace) { tr.add("frame-end") }))
	b.On(Handle1(func(_ *Close, tr *trace) { tr.add("close") }))
	a := buildApp(t, b)

	a.Init()
	a.Init()
	a.Frame()
	a.Close()
	a.Close()

	assert.Equal(t, []string{"init", "frame-start", "update", "queued", "frame-end", "close"}, tr.Seen)
	assert.True(t, a.Closed())
}

func TestApp_FrameInitializesFirst(t *testing.T) {
	tr := &trace{}
	b := NewBuilder().AddPlugin(tr)
	b.On(Handle1(func(_ *Init, tr *trace) { tr.add("init") }))
	b.On(Handle1(func(_ *Update, tr *trace) { tr.add("update") }))
	a := buildApp(t, b)

	a.Frame()
	a.Frame()

	assert.Equal(t, []string{"init", "update", "update"}, tr.Seen)
}

func TestApp_EventsQueuedDuringInitAreDrained(t *testing.T) {
	count := &Counter{}
	b := NewBuilder().AddPlugin(count)
	b.On(Handle1(func(_ *Init, q *Queue) { q.Push(Ping{}) }))
	b.On(Handle1(func(_ *Ping, c *Counter) { c.N++ }))
	a := buildApp(t, b)

	a.Init()

	assert.Equal(t, 1, count.N)
}

func TestApp_FrameAfterClosePanics(t *testing.T) {
	a := buildApp(t, NewBuilder())
	a.Close()

	assertWiringPanic(t, CodeBuilderState, func() { a.Frame() })
}

func TestApp_UpdateFiresOneUpdate(t *testing.T) {
	count := &Counter{}
	b := NewBuilder().AddPlugin(count)
	b.On(Handle1(func(_ *Update, c *Counter) { c.N++ }))
	b.On(Handle1(func(_ *FrameStart, c *Counter) { c.N += 100 }))
	a := buildApp(t, b)

	a.Update()

	assert.Equal(t, 1, count.N)
}

func TestApp_FrameInfoTracksFrames(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	clock := func() time.Time { return now }

	var seen []FrameInfo
	b := NewBuilder().WithClock(clock)
	b.On(Handle1(func(_ *FrameStart, fi *FrameInfo) { seen = append(seen, *fi) }))
	a := buildApp(t, b)

	a.Frame()
	now = now.Add(16 * time.Millisecond)
	a.Frame()

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(1), seen[0].Frame)
	assert.Equal(t, time.Duration(0), seen[0].Delta)
	assert.Equal(t, start, seen[0].Started)
	assert.Equal(t, uint64(2), seen[1].Frame)
	assert.Equal(t, 16*time.Millisecond, seen[1].Delta)
}

func TestApp_EventRejectsNil(t *testing.T) {
	a := buildApp(t, NewBuilder())

	assertWiringPanic(t, CodeInvalidHandler, func() { a.Event(nil) })
	assertWiringPanic(t, CodeInvalidHandler, func() { a.Queue(nil) })
}

func TestApp_QueueEnvelopes(t *testing.T) {
	a := buildApp(t, NewBuilder())
	q := a.Storage().Queue()

	id1 := a.Queue(Ping{N: 1})
	id2 := a.Queue(&Pong{N: 2})

	pending := q.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, id1, pending[0].ID)
	assert.Equal(t, KeyOf[Ping](), pending[0].Key)
	assert.Equal(t, id2, pending[1].ID)
	assert.Equal(t, KeyOf[Pong](), pending[1].Key)
	assert.Equal(t, 2, pending[1].Value.(*Pong).N)
	assert.Equal(t, uint64(2), q.Total())

	a.Drain()
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, uint64(2), q.Total())
}

func TestEmitter_BeforeBuildPanics(t *testing.T) {
	assertWiringPanic(t, CodeBuilderState, func() { (&Emitter{}).Emit(Ping{}) })
}

func TestExit_FirstRequestWins(t *testing.T) {
	e := &Exit{}
	assert.False(t, e.Requested())

	e.Request(2, "first")
	e.Request(3, "second")

	assert.True(t, e.Requested())
	assert.Equal(t, 2, e.Code)
	assert.Equal(t, "first", e.Reason)
}
