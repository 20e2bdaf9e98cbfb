// Package watch reruns generation when input files change.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/logger"
)

// ChangeFunc is called with the changed paths after the debounce period.
// An error is logged and watching continues.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches a set of files for changes. The parent directories are
// watched instead of the files so that editors replacing a file through a
// rename are still seen.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.SugaredLogger

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]bool
	fire    chan struct{}
}

// New creates a watcher for files.
func New(files []string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.NewInvalidConfigError("nothing to watch")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		watcher:  fw,
		debounce: debounce,
		log:      log,
		pending:  make(map[string]bool),
		fire:     make(chan struct{}, 1),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", f)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	return w, nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run delivers debounced change batches to onChange until ctx is done. It
// closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)

		case <-w.fire:
			changed := w.drain()
			if len(changed) == 0 {
				continue
			}
			if err := onChange(ctx, changed); err != nil {
				w.log.Errorw("Regeneration failed", logger.FieldError, err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// schedule debounces rapid changes into one batch
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, _ := filepath.Abs(path)
	w.pending[abs] = true

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	sort.Strings(out)
	w.pending = make(map[string]bool)
	return out
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
