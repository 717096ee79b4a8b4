package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/config"
	"github.com/Confuzu/ExifData-Seach-and-Move/internal/indexer"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scan"
)

// debounceInterval batches filesystem events so a burst of writes to
// the same directory becomes one indexing pass.
const debounceInterval = 2 * time.Second

// Watcher keeps the index fresh by incrementally indexing image files
// as they appear under the watched directories.
type Watcher struct {
	cfg     *config.BaseConfig
	indexer *indexer.Indexer
	walker  *scan.Walker
	log     log.LoggerService
}

func NewWatcher(cfg *config.BaseConfig, ix *indexer.Indexer, walker *scan.Walker, logger log.LoggerService) *Watcher {
	return &Watcher{
		cfg:     cfg,
		indexer: ix,
		walker:  walker,
		log:     logger,
	}
}

// Serve watches dirs until the context is cancelled or an interrupt is
// received, then flushes pending work within the shutdown timeout.
func (w *Watcher) Serve(ctx context.Context, dirs []string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addRecursive(watcher, dir); err != nil {
			return err
		}
	}

	w.log.Info("Watching %d directories for new images", len(dirs))

	pending := make(map[string]bool)
	ticker := time.NewTicker(debounceInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				// New subdirectory, watch it too
				if err := addRecursive(watcher, event.Name); err != nil {
					w.log.Warn("Failed to watch %s: %v", event.Name, err)
				}
				continue
			}
			if w.walker.Match(event.Name) {
				pending[event.Name] = true
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("Watcher error: %v", err)

		case <-ticker.C:
			w.flush(ctx, pending)

		case <-ctx.Done():
			timeout, err := time.ParseDuration(w.cfg.ShutdownTimeout)
			if err != nil {
				// Set default of 60 seconds if error
				timeout = 60 * time.Second
			}

			shutdown, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			w.flush(shutdown, pending)
			return nil
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]bool) {
	if len(pending) == 0 {
		return
	}

	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	clear(pending)

	summary, err := w.indexer.IndexPaths(ctx, paths)
	if err != nil {
		w.log.Error("Incremental indexing failed: %v", err)
		return
	}
	w.log.Info("Indexed %d new files (%d skipped)", summary.Indexed, summary.Skipped)
}

func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
		return nil
	})
}
