// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package window provides the terminal platform backend: a tcell screen
// exposed as a plugin, its input translated into App events, and a runner
// that drives frames while the screen is open.
package window

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/oops"
)

// Error codes returned by this package.
const (
	CodeScreen = "WINDOW_SCREEN"
	CodeClosed = "WINDOW_CLOSED"
)

// eventBuffer is the number of terminal events held between polls.
const eventBuffer = 100

// ID identifies a window. The terminal backend has a single window per App.
type ID uint32

// Mods is a set of keyboard modifiers.
type Mods uint8

// Modifier bits.
const (
	ModShift Mods = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Resized is dispatched when the terminal size changes, and once when the
// window opens.
type Resized struct {
	Window ID
	Width  int
	Height int
}

// Key is dispatched for key presses other than the close keys. Rune is zero
// for special keys; Name is tcell's description of the key.
type Key struct {
	Rune rune
	Name string
	Mods Mods
}

// CloseRequested is dispatched when the user presses Escape or Ctrl-C.
type CloseRequested struct {
	Window ID
}

// Window wraps a tcell.Screen. A poller goroutine forwards terminal events
// to a buffered channel that Poll drains on the App's goroutine.
type Window struct {
	id     ID
	title  string
	status string
	screen tcell.Screen
	logger *slog.Logger

	mu     sync.Mutex
	opened bool
	closed bool
	events chan tcell.Event
	quit   chan struct{}
	wg     sync.WaitGroup
}

// New wraps screen. The screen is not initialised until Open.
func New(screen tcell.Screen, title string, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		id:     1,
		title:  title,
		screen: screen,
		logger: logger.With("component", "window"),
		events: make(chan tcell.Event, eventBuffer),
		quit:   make(chan struct{}),
	}
}

// ID returns the window's identifier.
func (w *Window) ID() ID { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// SetStatus sets the line drawn under the title on each frame.
func (w *Window) SetStatus(text string) { w.status = text }

// Open initialises the screen and starts the poller.
func (w *Window) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return oops.Code(CodeClosed).Errorf("window is closed")
	}
	if w.opened {
		return nil
	}
	if err := w.screen.Init(); err != nil {
		return oops.Code(CodeScreen).With("title", w.title).Wrapf(err, "init screen")
	}
	w.screen.SetTitle(w.title)
	w.screen.HideCursor()
	w.screen.Clear()
	w.opened = true

	w.wg.Add(1)
	go w.pollLoop()

	width, height := w.screen.Size()
	w.logger.Info("window opened", "title", w.title, "width", width, "height", height)
	return nil
}

func (w *Window) pollLoop() {
	defer w.wg.Done()
	for {
		ev := w.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case w.events <- ev:
		case <-w.quit:
			return
		}
	}
}

// Poll implements app.EventSource. It never blocks.
func (w *Window) Poll(_ context.Context) ([]any, error) {
	var out []any
	for {
		select {
		case ev := <-w.events:
			if translated, ok := w.translate(ev); ok {
				out = append(out, translated)
			}
		default:
			return out, nil
		}
	}
}

func (w *Window) translate(ev tcell.Event) (any, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		width, height := ev.Size()
		return Resized{Window: w.id, Width: width, Height: height}, true
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return CloseRequested{Window: w.id}, true
		}
		k := Key{Name: ev.Name(), Mods: modsOf(ev.Modifiers())}
		if ev.Key() == tcell.KeyRune {
			k.Rune = ev.Rune()
		}
		return k, true
	default:
		return nil, false
	}
}

func modsOf(m tcell.ModMask) Mods {
	var out Mods
	if m&tcell.ModShift != 0 {
		out |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= ModMeta
	}
	return out
}

// Size returns the current screen size in cells.
func (w *Window) Size() (width, height int) {
	return w.screen.Size()
}

// DrawText writes text starting at column x of row y, clipped to the screen.
func (w *Window) DrawText(x, y int, text string, style tcell.Style) {
	width, height := w.screen.Size()
	if y < 0 || y >= height {
		return
	}
	for _, r := range text {
		if x >= width {
			return
		}
		if x >= 0 {
			w.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}

// Show flushes pending drawing to the terminal.
func (w *Window) Show() {
	w.screen.Show()
}

// Post injects an event as if it came from the terminal.
func (w *Window) Post(ev tcell.Event) error {
	if err := w.screen.PostEvent(ev); err != nil {
		return oops.Code(CodeScreen).Wrapf(err, "post event")
	}
	return nil
}

// Close finalises the screen and stops the poller. It is safe to call more
// than once.
func (w *Window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	opened := w.opened
	w.mu.Unlock()

	close(w.quit)
	if opened {
		w.screen.Fini()
	}
	w.wg.Wait()
	w.logger.Info("window closed", "title", w.title)
}
