// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package asset loads files off the App goroutine and reports completions
// as queued events.
package asset

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/hearthrt/hearth/internal/observability"
)

// Handle identifies one Load call.
type Handle uint64

// Loaded is queued when a load finished.
type Loaded struct {
	Handle Handle
	Path   string
	Data   []byte
}

// Failed is queued when a load gave up.
type Failed struct {
	Handle Handle
	Path   string
	Err    error
}

// Changed is queued when a file under the root was written or created
// while watching.
type Changed struct {
	Path string
}

// ReadFunc reads the file at an absolute path.
type ReadFunc func(path string) ([]byte, error)

// Option configures a Loader.
type Option func(*Loader)

// WithReadFunc replaces os.ReadFile.
func WithReadFunc(fn ReadFunc) Option {
	return func(l *Loader) { l.read = fn }
}

// WithRetry sets the number of attempts and the first backoff delay.
func WithRetry(attempts uint64, base time.Duration) Option {
	return func(l *Loader) {
		l.attempts = attempts
		l.base = base
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// Loader reads files below a root directory in background goroutines.
// Completions accumulate until Collect takes them.
type Loader struct {
	root     string
	read     ReadFunc
	attempts uint64
	base     time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	next     Handle
	inFlight int
	done     []any
	watcher  *fsnotify.Watcher
	closed   bool
}

// NewLoader creates a loader rooted at root.
func NewLoader(root string, opts ...Option) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		root:     root,
		read:     os.ReadFile,
		attempts: 3,
		base:     20 * time.Millisecond,
		logger:   slog.Default(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the root directory.
func (l *Loader) Root() string { return l.root }

// Load schedules a read of path, relative to the root, and returns its
// handle. The result arrives as a Loaded or Failed event.
func (l *Loader) Load(path string) Handle {
	l.mu.Lock()
	l.next++
	h := l.next
	if l.closed {
		l.done = append(l.done, Failed{Handle: h, Path: path, Err: errClosed()})
		l.mu.Unlock()
		return h
	}
	l.inFlight++
	l.mu.Unlock()

	if !filepath.IsLocal(path) {
		l.finish(Failed{Handle: h, Path: path, Err: oops.Code("ASSET_PATH").
			With("path", path).
			Errorf("asset path %q is outside the asset root", path)})
		return h
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		data, err := l.readWithRetry(filepath.Join(l.root, path))
		if err != nil {
			l.finish(Failed{Handle: h, Path: path, Err: err})
			return
		}
		l.finish(Loaded{Handle: h, Path: path, Data: data})
	}()
	return h
}

func (l *Loader) readWithRetry(abs string) ([]byte, error) {
	var data []byte
	attempts := l.attempts
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1, retry.NewExponential(l.base))
	err := retry.Do(l.ctx, backoff, func(_ context.Context) error {
		b, err := l.read(abs)
		switch {
		case err == nil:
			data = b
			return nil
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
			return err
		default:
			l.logger.Debug("asset read failed, retrying", "path", abs, "error", err)
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		return nil, oops.Code("ASSET_READ").With("path", abs).Wrapf(err, "read asset")
	}
	return data, nil
}

func (l *Loader) finish(ev any) {
	result := "loaded"
	if _, failed := ev.(Failed); failed {
		result = "failed"
	}
	observability.RecordAssetLoad(result)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight--
	l.done = append(l.done, ev)
}

// Pending returns the number of loads that have not finished.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Collect takes the completion and change events gathered since the last
// call, oldest first.
func (l *Loader) Collect() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.done
	l.done = nil
	return out
}

// Watch starts reporting writes under the root as Changed events.
func (l *Loader) Watch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errClosed()
	}
	if l.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return oops.Code("ASSET_WATCH").Wrapf(err, "create watcher")
	}
	err = filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return oops.Code("ASSET_WATCH").With("root", l.root).Wrapf(err, "watch asset root")
	}
	l.watcher = w

	l.wg.Add(1)
	go l.watchLoop(w)
	return nil
}

func (l *Loader) watchLoop(w *fsnotify.Watcher) {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			l.handleFSEvent(w, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.logger.Warn("asset watcher error", "error", err)
		}
	}
}

func (l *Loader) handleFSEvent(w *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.Add(ev.Name)
			return
		}
	}
	rel, err := filepath.Rel(l.root, ev.Name)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Editors often write a file in several chunks.
	for _, pending := range l.done {
		if c, ok := pending.(Changed); ok && c.Path == rel {
			return
		}
	}
	l.done = append(l.done, Changed{Path: rel})
}

// Close cancels outstanding retries, stops watching and waits for the
// background goroutines. Loads after Close fail immediately.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	w := l.watcher
	l.mu.Unlock()

	l.cancel()
	var err error
	if w != nil {
		err = w.Close()
	}
	l.wg.Wait()
	if err != nil {
		return oops.Code("ASSET_WATCH").Wrapf(err, "close watcher")
	}
	return nil
}

func errClosed() error {
	return oops.Code("ASSET_CLOSED").Errorf("asset loader is closed")
}
