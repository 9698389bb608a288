// Package watch reacts to annotated documents appearing in a directory.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/nifrel/internal/worker"
)

// DefaultDebounce is how long a file must stay quiet before it is handed on
const DefaultDebounce = 500 * time.Millisecond

// Handler receives each settled document path
type Handler func(ctx context.Context, path string)

// Watcher watches one directory for created or written .ttl and .nt files
type Watcher struct {
	dir      string
	debounce time.Duration
	handler  Handler
	ignore   func(path string) bool
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]time.Time // path -> last event

	hashes map[string][sha256.Size]byte // only touched by the Run goroutine
}

// New creates a watcher on dir. A non-positive debounce uses DefaultDebounce.
func New(dir string, debounce time.Duration, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		handler:  handler,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]time.Time),
		hashes:   make(map[string][sha256.Size]byte),
	}, nil
}

// Ignore skips paths for which fn returns true, such as files the handler writes
func (w *Watcher) Ignore(fn func(path string) bool) {
	w.ignore = fn
}

// Run processes events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	w.logger.Info("watching for documents", "dir", w.dir, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case now := <-ticker.C:
			w.flushSettled(ctx, now)
		}
	}
}

// Close stops the watcher; Run returns afterwards
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !worker.IsInputFile(event.Name) {
		return
	}
	if w.ignore != nil && w.ignore(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug("document change detected", "path", event.Name, "op", event.Op.String())
}

// flushSettled hands on every pending path that has been quiet for the debounce
// interval and whose content changed since it was last handed on
func (w *Watcher) flushSettled(ctx context.Context, now time.Time) {
	w.pendingMu.Lock()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range settled {
		if ctx.Err() != nil {
			return
		}

		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Debug("skipping unreadable document", "path", path, "error", err)
			continue
		}

		sum := sha256.Sum256(content)
		if prev, ok := w.hashes[path]; ok && prev == sum {
			continue
		}
		w.hashes[path] = sum

		w.handler(ctx, filepath.Clean(path))
	}
}
