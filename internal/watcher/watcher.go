package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jarredhawkins/linestruct/internal/config"
)

// ChangeHandler is called with each debounced batch of file changes
type ChangeHandler func(changed, removed []string)

// Options tunes a Watcher
type Options struct {
	Filter   *config.Filter // nil accepts every file
	Debounce time.Duration  // quiet period before a batch is delivered, default 100ms
	Logger   *zap.Logger
}

// Watcher monitors workspace files for changes using fsnotify
type Watcher struct {
	watcher   *fsnotify.Watcher
	rootPath  string
	handler   ChangeHandler
	filter    *config.Filter
	debouncer *Debouncer
	logger    *zap.Logger

	done      chan struct{}
	loop      sync.WaitGroup
	closeOnce sync.Once
}

// New creates a new file watcher for the root path
func New(rootPath string, handler ChangeHandler, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.Filter == nil {
		opts.Filter = config.NewFilter(nil, nil)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	w := &Watcher{
		watcher:   fsw,
		rootPath:  rootPath,
		handler:   handler,
		filter:    opts.Filter,
		debouncer: NewDebouncer(opts.Debounce),
		logger:    opts.Logger,
		done:      make(chan struct{}),
	}

	return w, nil
}

// Start watches every non-excluded directory under the root and begins
// delivering change batches
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if d.IsDir() {
			if w.skipDir(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.loop.Add(1)
	go w.eventLoop()

	w.logger.Info("file watcher started", zap.String("root", w.rootPath))
	return nil
}

func (w *Watcher) eventLoop() {
	defer w.loop.Done()

	for {
		select {
		case <-w.done:
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
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A new directory is watched too
	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if !w.skipDir(path) {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", zap.String("path", path), zap.Error(err))
				}
			}
			return
		}
	}

	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil || !w.filter.Match(rel) {
		return
	}

	w.debouncer.Add(path, event.Op)
	w.debouncer.Flush(func(changed, removed []string) {
		w.logger.Debug("file changes",
			zap.Int("changed", len(changed)),
			zap.Int("removed", len(removed)))
		w.handler(changed, removed)
	})
}

func (w *Watcher) skipDir(path string) bool {
	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil {
		return true
	}
	return w.filter.SkipDir(rel)
}

// Close stops the watcher and waits for in-flight batches to be handled
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.loop.Wait()
		w.debouncer.Stop()
	})
	return err
}
