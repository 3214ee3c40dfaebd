// Package watcher watches the vault directory with fsnotify and reports
// note changes, debounced, so callers can mark the index stale or recollect.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a vault root and invokes callbacks on note file changes.
type Watcher struct {
	root       string
	extensions []string
	onChange   func(path string)
	onRemove   func(path string)
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	timers     map[string]*time.Timer
	done       chan struct{}
	started    bool
	stopOnce   sync.Once
	logger     *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the write-coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over the vault at root. onChange fires once per
// changed file after the debounce window; onRemove fires on deletion.
// extensions filter which files count (empty = markdown only, matching the
// collector's default).
func New(root string, extensions []string, onChange, onRemove func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		root:       filepath.Clean(root),
		extensions: extensions,
		onChange:   onChange,
		onRemove:   onRemove,
		debounce:   defaultDebounce,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true
	w.logger.Debug("watcher starting", zap.String("root", w.root), zap.Strings("extensions", w.extensions))
	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		w.watcher = nil
		w.started = false
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		for _, t := range w.timers {
			t.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if w.hidden(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			// Newly created or moved-in directory: watch its subtree too.
			w.mu.Lock()
			if w.watcher != nil {
				if err := w.addTree(path); err != nil {
					w.logger.Debug("watcher add subtree failed", zap.String("path", path), zap.Error(err))
				}
			}
			w.mu.Unlock()
			return
		}
		if w.matchExtension(path) {
			w.debounceChange(path)
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		if w.matchExtension(path) && w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

// addTree watches dir and every non-hidden subdirectory. Must be called with
// w.mu held.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("watcher add failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// hidden reports whether path sits under a dot-directory inside the root,
// mirroring which files the collector skips.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && strings.HasPrefix(part, ".") && len(part) > 1 {
			return true
		}
	}
	return false
}

func (w *Watcher) matchExtension(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if len(w.extensions) == 0 {
		return ext == "md"
	}
	for _, e := range w.extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.logger.Debug("vault file changed (debounced)", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	})
	w.timers[path] = t
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}
