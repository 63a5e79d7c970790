package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures the change watcher.
type WatchOptions struct {
	// DebounceMs groups rapid change bursts into one callback.
	DebounceMs int
	// ExtraPaths are files outside the page set to watch too (token and
	// link graph sources).
	ExtraPaths []string
}

// DefaultWatchOptions returns the default debounce settings.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{DebounceMs: 200}
}

// Watcher watches the site root (and the token/link sources) and invokes a
// callback after changes settle. Changes are debounced per path so editor
// write bursts trigger one run.
type Watcher struct {
	watcher *fsnotify.Watcher
	site    *Site
	logger  *slog.Logger
	options WatchOptions
	onInput func(changed string)

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over the given site. onInput runs on the
// watcher goroutine after each debounced change.
func NewWatcher(s *Site, options WatchOptions, onInput func(changed string), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if options.DebounceMs == 0 {
		options.DebounceMs = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:        fsw,
		site:           s,
		logger:         logger,
		options:        options,
		onInput:        onInput,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start begins watching. Safe to call once.
func (w *Watcher) Start() error {
	root := w.site.Root()
	if err := w.watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Continue on error.
		}
		if info.IsDir() {
			if w.shouldIgnore(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	for _, extra := range w.options.ExtraPaths {
		if extra == "" {
			continue
		}
		// Watch the parent directory so replace-on-save edits are seen.
		if err := w.watcher.Add(filepath.Dir(extra)); err != nil {
			w.logger.Warn("failed to watch source file", "path", extra, "error", err)
		}
	}

	w.logger.Info("watcher started", "root", root)
	go w.eventLoop()
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}
	if !w.isInput(path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.debounce(path)
}

// debounce resets the per-path timer; the callback fires once the burst
// settles.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounceTimers[path]; ok {
		timer.Stop()
	}
	w.debounceTimers[path] = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() {
			w.debounceMu.Lock()
			delete(w.debounceTimers, path)
			w.debounceMu.Unlock()

			w.mu.Lock()
			stopped := w.stopped
			w.mu.Unlock()
			if stopped {
				return
			}
			w.site.cache.Invalidate(path)
			w.onInput(path)
		},
	)
}

// isInput reports whether a changed path is an audit input: a page file or
// one of the extra source files.
func (w *Watcher) isInput(path string) bool {
	for _, extra := range w.options.ExtraPaths {
		if extra != "" && filepath.Clean(path) == filepath.Clean(extra) {
			return true
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// shouldIgnore filters hidden and dependency directories.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch base {
	case ".git", ".sitespec", "node_modules", "dist", "build":
		return true
	}
	return false
}
