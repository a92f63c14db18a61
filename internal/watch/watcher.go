// Package watch reports image files that appear in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"ocrfix/internal/imagefile"
	"ocrfix/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is handed out.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one new image. Errors are logged and watching continues.
type Handler func(ctx context.Context, path string) error

// Watcher calls a Handler for every supported image created in Dir. Files are
// handled one at a time, in name order when several settle together.
type Watcher struct {
	Dir string

	// Settle is the quiet period after the last create or write event; zero means DefaultSettle.
	Settle time.Duration

	log zerolog.Logger
}

// New creates a Watcher for dir.
func New(dir string) *Watcher {
	return &Watcher{
		Dir:    dir,
		Settle: DefaultSettle,
		log:    logger.WithComponent("watch"),
	}
}

// Run blocks until ctx is done or the underlying watcher fails.
// Cancellation is a normal stop and returns nil.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}

	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	w.log.Info().
		Str("dir", w.Dir).
		Dur("settle", settle).
		Msg("Watching for new images")

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !imagefile.IsSupported(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("File watcher error")

		case now := <-ticker.C:
			for _, path := range settled(pending, now, settle) {
				delete(pending, path)
				if err := imagefile.Validate(path); err != nil {
					w.log.Debug().Err(err).Str("file", path).Msg("Skipping file")
					continue
				}
				if err := handle(ctx, path); err != nil {
					w.log.Warn().Err(err).Str("file", path).Msg("Failed to process new image")
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		}
	}
}

// settled returns the pending paths that have been quiet for at least settle,
// sorted by path.
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Abs returns the absolute form of dir for display and logging.
func Abs(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
