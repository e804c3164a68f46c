// Package watch runs a handler for every file that appears in a folder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file's size and mtime must stay unchanged
// before it is handed to the handler.
const DefaultSettleDelay = time.Second

// Handler processes one file, given by its name inside the watched folder.
// A non-nil error stops the watcher and is returned by Run.
type Handler func(ctx context.Context, name string) error

// Watcher hands settled files of one folder to a Handler, one at a time.
// Subfolders are not watched.
type Watcher struct {
	dir     string
	handle  Handler
	settle  time.Duration
	accept  func(name string) bool
	outputs func(name string) []string
	logger  *slog.Logger
	now     func() time.Time
	started func() // called once the folder is watched

	mu      sync.Mutex
	pending map[string]*pendingFile
	ignored map[string]time.Time // name -> ignore events until
}

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay sets how long a file must stay unchanged.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithFilter restricts which file names are handled.
func WithFilter(accept func(name string) bool) Option {
	return func(w *Watcher) { w.accept = accept }
}

// WithOutputs declares the files the handler writes into the watched folder
// for a given input. Events for them are ignored while the handler runs and
// for two settle delays after it returns.
func WithOutputs(fn func(name string) []string) Option {
	return func(w *Watcher) { w.outputs = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher for dir.
func New(dir string, handle Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     filepath.Clean(dir),
		handle:  handle,
		settle:  DefaultSettleDelay,
		accept:  func(string) bool { return true },
		outputs: func(string) []string { return nil },
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
		started: func() {},
		pending: make(map[string]*pendingFile),
		ignored: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is canceled or the handler fails.
// It returns ctx's error on cancellation and the handler's error otherwise.
func (w *Watcher) Run(parent context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWatch, w.dir, err)
	}

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	ready := make(chan string)
	var wg sync.WaitGroup
	wg.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case name := <-ready:
				if err := w.process(ctx, name); err != nil {
					cancel(err)
					return
				}
			}
		}
	})

	w.logger.Info("watching folder", "dir", w.dir, "settle", w.settle)
	w.started()
	loopErr := w.loop(ctx, fw, ready)
	cancel(loopErr)
	w.stopTimers()
	wg.Wait()

	switch {
	case loopErr != nil:
		return loopErr
	case parent.Err() != nil:
		w.logger.Info("watcher stopped")
		return parent.Err()
	}
	return context.Cause(ctx)
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, ready chan<- string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handleEvent(ctx, ev, ready)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent starts or restarts settling for created and written files.
func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event, ready chan<- string) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	name := filepath.Base(ev.Name)
	if !w.accept(name) {
		w.logger.Debug("ignoring file", "file", name)
		return
	}
	if w.isIgnored(name) {
		return
	}
	w.startSettling(ctx, name, ready)
}

func (w *Watcher) startSettling(ctx context.Context, name string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[name]; ok {
		p.timer.Stop()
	}

	info, err := os.Stat(filepath.Join(w.dir, name))
	if err != nil || !info.Mode().IsRegular() {
		delete(w.pending, name)
		return
	}

	p := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.settle, func() { w.checkSettled(ctx, name, ready) })
	w.pending[name] = p
}

// checkSettled re-arms the timer while the file keeps changing and hands it
// to the worker once it is stable.
func (w *Watcher) checkSettled(ctx context.Context, name string, ready chan<- string) {
	w.mu.Lock()
	p, ok := w.pending[name]
	if !ok {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(filepath.Join(w.dir, name))
	if err != nil {
		delete(w.pending, name)
		w.mu.Unlock()
		return
	}
	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size, p.modTime = info.Size(), info.ModTime()
		p.timer = time.AfterFunc(w.settle, func() { w.checkSettled(ctx, name, ready) })
		w.mu.Unlock()
		return
	}
	delete(w.pending, name)
	w.mu.Unlock()

	if w.isIgnored(name) {
		return
	}
	w.logger.Info("new file detected", "file", name)
	select {
	case ready <- name:
	case <-ctx.Done():
	}
}

// process runs the handler with the file's outputs marked in flight.
func (w *Watcher) process(ctx context.Context, name string) error {
	outputs := w.outputs(name)

	w.mu.Lock()
	for _, out := range outputs {
		w.ignored[out] = time.Time{}
	}
	w.mu.Unlock()

	defer func() {
		until := w.now().Add(2 * w.settle)
		w.mu.Lock()
		for _, out := range outputs {
			w.ignored[out] = until
		}
		w.mu.Unlock()
	}()

	return w.handle(ctx, name)
}

// isIgnored reports whether name is an output in flight or recently written.
// A zero deadline means the handler is still running.
func (w *Watcher) isIgnored(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	until, ok := w.ignored[name]
	if !ok {
		return false
	}
	if until.IsZero() || w.now().Before(until) {
		return true
	}
	delete(w.ignored, name)
	return false
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
}
