package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-mix/engine/animator"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a file must stay quiet before its change is reported.
const debounce = 100 * time.Millisecond

// Watcher reports changes to YAML files in a set of directories.
// Editors often emit several writes per save; a file is reported once it has
// seen no events for the debounce window, so a burst of writes yields one
// event after the last of them.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dirs.
//
// Parameters:
//   - dirs: the directories to watch
//
// Returns:
//   - *Watcher: the running watcher; Close it to release the OS handles
//   - error: error if a directory cannot be watched
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// pending holds the time of the latest event per file not yet reported.
	pending := make(map[string]time.Time)
	settle := time.NewTimer(debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isSpecFile(event.Name) {
				continue
			}
			if len(pending) == 0 {
				settle.Reset(debounce)
			}
			pending[event.Name] = time.Now()
		case <-settle.C:
			now := time.Now()
			var wait time.Duration
			for name, last := range pending {
				if quiet := now.Sub(last); quiet < debounce {
					if wait == 0 || debounce-quiet < wait {
						wait = debounce - quiet
					}
					continue
				}
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			if len(pending) > 0 {
				settle.Reset(wait)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Reload keeps table in sync with the mix file at path until ctx is done or
// the watcher closes. The watcher reports the file only after it has been
// quiet for the debounce window, so a save caught mid-write is not loaded.
// A file that fails to load or resolve is logged and the table keeps its
// previous contents.
//
// Parameters:
//   - ctx: cancels the reload loop
//   - w: a watcher covering path's directory
//   - path: the mix file
//   - table: the table to keep in sync
//   - lookup: resolves animation names
//   - log: receives reload outcomes
func Reload(ctx context.Context, w *Watcher, path string, table animator.MixTable, lookup Lookup, log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("mix watcher error", "err", err)
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(name) != target {
				continue
			}
			spec, err := LoadMixSpec(path)
			if err == nil {
				err = spec.Apply(table, lookup)
			}
			if err != nil {
				log.Warn("mix reload failed, keeping previous table", "path", path, "err", err)
				continue
			}
			log.Info("mixes reloaded", "path", path, "entries", table.Len())
		}
	}
}
