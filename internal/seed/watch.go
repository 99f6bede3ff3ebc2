package seed

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls OnChange, debounced, whenever a seed file is written, created
// or renamed inside one of the watched directories.
type Watcher struct {
	Patterns []string
	Debounce time.Duration
	OnChange func()
	// OnError receives watcher errors; nil drops them.
	OnError func(error)

	mu    sync.Mutex
	timer *time.Timer
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	files, err := Expand(w.Patterns)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for _, file := range files {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isSeedFile(event.Name) {
				continue
			}
			w.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

func isSeedFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".xlsx", ".xlsm":
		return filepath.Base(name)[0] != '~'
	}
	return false
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	delay := w.Debounce
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	w.timer = time.AfterFunc(delay, w.OnChange)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
