// Package watcher reports changes to a single file.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wudi/schemadiff/internal/logging"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period required before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one file for changes and passes its new content to the
// registered callbacks.
type Watcher struct {
	watcher   *fsnotify.Watcher
	path      string
	callbacks []func(content []byte)
	mu        sync.RWMutex
	debounce  time.Duration
	last      []byte
	started   bool
	done      chan struct{}
}

// New creates a watcher for path. The file must exist.
func New(path string) (*Watcher, error) {
	initial, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		path:     path,
		debounce: DefaultDebounce,
		last:     initial,
		done:     make(chan struct{}),
	}, nil
}

// OnChange registers a callback for content changes
func (w *Watcher) OnChange(callback func(content []byte)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching the file's directory, so replacing the file by
// rename is also seen.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.started = true
	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	defer close(w.done)

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("file watcher error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

// reload reads the file and notifies callbacks when the content changed.
func (w *Watcher) reload() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		logging.Error("failed to read watched file", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	if string(content) == string(w.last) {
		w.mu.Unlock()
		return
	}
	w.last = content
	callbacks := make([]func([]byte), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	logging.Debug("watched file changed", zap.String("path", w.path), zap.Int("bytes", len(content)))

	for _, cb := range callbacks {
		cb(content)
	}
}

// Content returns the last content seen.
func (w *Watcher) Content() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// Stop stops watching for changes and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.started {
		<-w.done
	}
	return err
}

// SetDebounce sets the debounce duration for file changes
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}
