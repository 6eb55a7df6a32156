// pattern: Imperative Shell

package catalog

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"linolayout/internal/logging"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultDebounce     = 200 * time.Millisecond
)

// ReloadFunc receives the reloaded catalog, or the error that prevented
// the reload. The previous catalog stays valid after an error.
type ReloadFunc func(*Catalog, error)

// Watcher reloads a catalog when one of its files changes. It watches the
// parent directories so that editors replacing files atomically are seen,
// and polls modification times as a safeguard for mounts without inotify.
type Watcher struct {
	paths    []string
	onReload ReloadFunc
	logger   *logging.ScopedLogger
	watcher  *fsnotify.Watcher

	PollInterval time.Duration
	Debounce     time.Duration

	files  map[string]bool
	dirs   map[string]bool
	stamps map[string]stamp

	mu     sync.Mutex
	closed bool
}

type stamp struct {
	mod  time.Time
	size int64
}

func NewWatcher(paths []string, logger *logging.ScopedLogger, onReload ReloadFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		paths:        paths,
		onReload:     onReload,
		logger:       logger,
		watcher:      fw,
		PollInterval: defaultPollInterval,
		Debounce:     defaultDebounce,
		files:        make(map[string]bool),
		dirs:         make(map[string]bool),
	}, nil
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, p := range w.paths {
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dir = p
			w.dirs[p] = true
		} else {
			w.files[p] = true
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.stamps = w.snapshot()

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug("catalog file changed", "file", event.Name, "op", event.Op.String())
				pending = time.After(w.Debounce)
			}

		case <-pending:
			pending = nil
			w.reload(ctx)

		case <-ticker.C:
			if !maps.Equal(w.stamps, w.snapshot()) {
				w.logger.Debug("catalog change detected by polling")
				w.reload(ctx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	w.stamps = w.snapshot()
	start := time.Now()
	c, err := Load(ctx, w.paths...)
	if err != nil {
		w.logger.Error("catalog reload failed", "error", err)
	} else {
		w.logger.Info("catalog reloaded", "layouts", len(c.entries), "elapsed", time.Since(start))
	}
	w.onReload(c, err)
}

func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && IsCatalogFile(name)
}

// snapshot records size and modification time of every watched file.
func (w *Watcher) snapshot() map[string]stamp {
	stamps := make(map[string]stamp)
	record := func(p string) {
		if info, err := os.Stat(p); err == nil {
			stamps[p] = stamp{mod: info.ModTime(), size: info.Size()}
		}
	}
	for f := range w.files {
		record(f)
	}
	for d := range w.dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && IsCatalogFile(e.Name()) {
				record(filepath.Join(d, e.Name()))
			}
		}
	}
	return stamps
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
