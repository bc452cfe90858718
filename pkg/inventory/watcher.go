package inventory

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a connection when its inventory file changes on disk.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	onChange func(Result)

	byPath map[string][]string // cleaned path -> connection IDs

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWatcher watches the directories holding the loader's inventory files.
// onChange, if set, runs after every reload.
func NewWatcher(loader *Loader, onChange func(Result)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		loader:   loader,
		watcher:  fw,
		onChange: onChange,
		byPath:   make(map[string][]string),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for id, p := range loader.Paths() {
		clean := filepath.Clean(p)
		w.byPath[clean] = append(w.byPath[clean], id)
		dirs[filepath.Dir(clean)] = true
	}
	// Watch directories, not files: editors replace files by rename.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			loader.log.Warn().Err(err).Str("dir", dir).Msg("Cannot watch inventory directory")
		}
	}
	return w, nil
}

// Start begins processing file events.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop shuts the watcher down. Stop is idempotent.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.cancel()
		w.watcher.Close()
	})
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			for _, id := range w.byPath[filepath.Clean(event.Name)] {
				res := w.loader.Load(id)
				if w.onChange != nil {
					w.onChange(res)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.loader.log.Warn().Err(err).Msg("Inventory watcher error")
		}
	}
}
