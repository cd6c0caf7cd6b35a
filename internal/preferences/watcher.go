package preferences

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"birdsong/internal/providers"

	"github.com/fsnotify/fsnotify"
)

var ErrWatcherClosed = errors.New("preference watcher closed")

// ChangeNotifier reports writes to the preference storage made by other
// processes. onChange runs on the notifier's goroutine.
type ChangeNotifier interface {
	Start(ctx context.Context, onChange func()) error
	Stop()
}

// FileWatcher watches the files backing a WatchableStorage.
type FileWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	files   map[string]struct{}
	logger  providers.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	closed  bool
}

func NewFileWatcher(paths []string, logger providers.Logger) (*FileWatcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]struct{}, len(paths)),
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, p := range paths {
		fw.files[filepath.Clean(p)] = struct{}{}
	}
	return fw, nil
}

// Start watches the parent directories so atomic renames are seen.
// It is non-blocking.
func (fw *FileWatcher) Start(ctx context.Context, onChange func()) error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return ErrWatcherClosed
	}
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	dirs := make(map[string]struct{})
	for f := range fw.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			fw.watcher.Close()
			fw.mu.Lock()
			fw.running = false
			fw.closed = true
			fw.mu.Unlock()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fw.logger.Infof(providers.TypePrefs, "Watching %s for preference changes", dir)
	}

	go fw.run(ctx, onChange)
	return nil
}

func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return
	}
	fw.running = false
	fw.closed = true
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	if err := fw.watcher.Close(); err != nil {
		fw.logger.Errorf(providers.TypePrefs, "Error closing preference watcher: %s", err)
	}
}

func (fw *FileWatcher) run(ctx context.Context, onChange func()) {
	defer close(fw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.relevant(event) {
				onChange()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Errorf(providers.TypePrefs, "Preference watcher error: %s", err)
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if _, ok := fw.files[filepath.Clean(event.Name)]; !ok {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

// NewNotifier returns a watcher for storages backed by files, nil otherwise.
// The store must be created first so that its key is among the watched paths.
func NewNotifier(storage Storage, logger providers.Logger) (ChangeNotifier, error) {
	ws, ok := storage.(WatchableStorage)
	if !ok {
		return nil, nil
	}
	fw, err := NewFileWatcher(ws.WatchPaths(), logger)
	if err != nil {
		return nil, err
	}
	return fw, nil
}
