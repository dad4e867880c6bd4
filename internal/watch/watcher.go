// Package watch observes the data directory for writes made by other
// process instances and reports which collection changed, so in-memory
// mirrors can be refreshed. Last writer wins across instances; the
// watcher narrows the staleness window, it does not merge.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opdeck/opdeck/internal/storage"
)

const debounce = 200 * time.Millisecond

// Callback is invoked once per settled change, with the storage key of
// the entry that changed.
type Callback func(key string)

// Run starts an fsnotify watcher on dir and processes change events
// until ctx is cancelled. Rapid successive writes to the same entry are
// coalesced into one callback.
func Run(ctx context.Context, dir string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	// One pending timer per key debounces write bursts. Atomic writes
	// arrive as a rename of a temp file onto the target, so the final
	// event carries the real entry name.
	pending := make(map[string]*time.Timer)
	fired := make(chan string, 64)

	for {
		select {
		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case key := <-fired:
			delete(pending, key)
			logger.Debug("watcher: entry changed", slog.String("key", key))
			if cb != nil {
				cb(key)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			key := storage.KeyForFile(filepath.Base(ev.Name))
			if key == "" {
				continue
			}
			if t, exists := pending[key]; exists {
				t.Reset(debounce)
				continue
			}
			k := key
			pending[key] = time.AfterFunc(debounce, func() {
				select {
				case fired <- k:
				case <-ctx.Done():
				}
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
