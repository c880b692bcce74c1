// Package watcher reports debounced changes to a goalplan store on disk:
// the goals directory of a file store or the database file of a SQLite one.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of writes (a save rewrites the file
// several times) into a single notification.
const DefaultDebounce = 100 * time.Millisecond

// Filter selects which changed paths trigger the callback.
type Filter func(path string) bool

// Watcher watches directories and invokes a callback with debouncing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	filter   Filter
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// New creates a Watcher over dirs. filter may be nil to accept every path.
func New(dirs []string, filter Filter, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return &Watcher{
		fsw:      fsw,
		filter:   filter,
		delay:    DefaultDebounce,
		callback: callback,
	}, nil
}

// ForGoalsDir watches the markdown goal files of a file store.
func ForGoalsDir(dir string, callback func()) (*Watcher, error) {
	return New([]string{dir}, func(p string) bool {
		return strings.HasSuffix(p, ".md")
	}, callback)
}

// ForDatabase watches a SQLite database file and its journal files.
// The parent directory is watched since SQLite replaces journals.
func ForDatabase(path string, callback func()) (*Watcher, error) {
	base := filepath.Base(path)
	return New([]string{filepath.Dir(path)}, func(p string) bool {
		return strings.HasPrefix(filepath.Base(p), base)
	}, callback)
}

// SetDebounce changes the quiet period before the callback fires.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delay = d
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.filter != nil && !w.filter(event.Name) {
				continue
			}
			zap.L().Debug("store changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
