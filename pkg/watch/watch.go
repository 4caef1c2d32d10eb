// Package watch re-runs reconciliation whenever the config file changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/logging"
)

// DefaultDebounce is how long to wait for a burst of writes to settle
const DefaultDebounce = 200 * time.Millisecond

// ApplyFunc performs one reconciliation run
type ApplyFunc func(ctx context.Context) error

// Watcher watches a single file
type Watcher struct {
	file     string
	debounce time.Duration
	logger   zerolog.Logger
}

// New creates a Watcher for file. A zero debounce uses DefaultDebounce.
func New(file string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		file:     filepath.Clean(file),
		debounce: debounce,
		logger:   logging.GetLogger("watch"),
	}
}

// Run calls apply once, then again after each change to the file, until ctx
// is cancelled, and then returns ctx.Err(). Runs happen one at a time on the calling goroutine; changes
// made during a run trigger one more run afterwards. A failed run is logged
// and watching continues.
func (w *Watcher) Run(ctx context.Context, apply ApplyFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to start file watcher")
	}
	defer func() { _ = fsw.Close() }()

	// Editors often replace the file by renaming over it, which drops a
	// watch on the file itself; watch the directory instead.
	dir := filepath.Dir(w.file)
	if err := fsw.Add(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to watch %s", dir)
	}
	w.logger.Info().Str("file", w.file).Msg("Watching for changes")

	w.run(ctx, apply)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.file || event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("Config changed")
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-timer.C:
			w.run(ctx, apply)
		}
	}
}

func (w *Watcher) run(ctx context.Context, apply ApplyFunc) {
	if ctx.Err() != nil {
		return
	}
	if err := apply(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Run failed; waiting for the next change")
	}
}
