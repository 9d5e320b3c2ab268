package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals edits to a config file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher for the given config file. It watches the
// parent directory so editors that replace the file on save are seen.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		path:     path,
		debounce: 100 * time.Millisecond,
		onChange: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	go watcher.loop()
	return watcher, nil
}

// Changes returns a channel that receives a signal when the file changes.
func (w *Watcher) Changes() <-chan struct{} {
	return w.onChange
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: editors write in bursts.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case w.onChange <- struct{}{}:
				default: // already signaled
				}
			})
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
