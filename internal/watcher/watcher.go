// Package watcher reports debounced changes to C sources under a directory.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 500 * time.Millisecond

// Filter decides which files and directories are watched.
// *discovery.Discovery satisfies it.
type Filter interface {
	// Matches reports whether a changed file should be reported.
	Matches(path string) bool
	// SkipDir reports whether a directory should not be watched.
	SkipDir(path string) bool
}

// SourceWatcher monitors a directory tree and calls back with the set of
// changed sources once no event arrived for the debounce period.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	filter   Filter
	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]struct{}

	timerMu sync.Mutex
	timer   *time.Timer

	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for root and every directory below it that the
// filter does not skip. A non-positive debounce selects DefaultDebounce.
func New(root string, filter Filter, debounce time.Duration) (*SourceWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &SourceWatcher{
		watcher:  fsw,
		filter:   filter,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Start runs the event loop until ctx is cancelled or Stop is called.
// The callback runs on the event loop, so a slow callback delays the next
// batch instead of overlapping with it.
func (w *SourceWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return errors.New("watcher: nil callback")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx, callback)
	return nil
}

// Stop ends the event loop and releases the fsnotify watcher. It is safe to
// call more than once.
func (w *SourceWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

func (w *SourceWatcher) loop(ctx context.Context, callback func(files []string)) {
	defer close(w.doneCh)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.filter.SkipDir(event.Name) {
						continue
					}
					if err := w.addTree(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !w.relevant(event) {
				continue
			}

			w.pendingMu.Lock()
			w.pending[event.Name] = struct{}{}
			w.pendingMu.Unlock()

			w.resetTimer(fire)

		case <-fire:
			if files := w.drain(); len(files) > 0 {
				callback(files)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// drain returns the pending files in lexical order and clears them.
func (w *SourceWatcher) drain() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	files := make([]string, 0, len(w.pending))
	for file := range w.pending {
		files = append(files, file)
	}
	w.pending = make(map[string]struct{})

	sort.Strings(files)
	return files
}

func (w *SourceWatcher) resetTimer(fire chan<- struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *SourceWatcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// relevant keeps writes, creates, renames and removes of matching files.
// Editors that save through a rename show up as Rename or Remove followed
// by Create.
func (w *SourceWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return w.filter.Matches(event.Name)
}

// addTree adds root and every non-skipped directory below it.
func (w *SourceWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !entry.IsDir() {
			return nil
		}
		if path != root && w.filter.SkipDir(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
