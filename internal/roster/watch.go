package roster

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce is how long the watcher waits after the last change before reloading.
const DefaultReloadDebounce = 500 * time.Millisecond

// Watcher reloads an engine's tables when the table files in a directory change.
// A reload that fails to load or validate keeps the previous tables.
type Watcher struct {
	engine   *Engine
	dir      string
	debounce time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	reloaded chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher watches dir for edits to the table files.
func NewWatcher(engine *Engine, dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	dir = filepath.Clean(dir)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		engine:   engine,
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
		reloaded: make(chan struct{}, 1),
	}, nil
}

// Reloaded receives a value after every successful reload.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Start processes events until ctx is done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.processEvents(ctx)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isTableFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("roster table watcher error", "error", err)
		}
	}
}

// schedule restarts the debounce timer so a burst of writes triggers one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	tables, err := LoadTablesDir(w.dir)
	if err != nil {
		w.logger.Error("roster tables reload failed, keeping previous tables", "dir", w.dir, "error", err)
		return
	}
	w.engine.SetTables(tables)
	w.logger.Info("roster tables reloaded",
		"dir", w.dir,
		"regional", len(tables.Regional),
		"variation", len(tables.Variation),
		"mega", len(tables.Mega),
		"gmax", len(tables.Gmax),
	)

	select {
	case w.reloaded <- struct{}{}:
	default:
	}
}
