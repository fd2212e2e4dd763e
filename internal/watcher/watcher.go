// Package watcher observes the inbound directory for new photos and hands
// them to the post lifecycle manager once they have settled on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/edgard/breadbot/internal/config"
	"github.com/edgard/breadbot/internal/post"
)

// Ingestor receives settled media files. Satisfied by post.Manager.
type Ingestor interface {
	Ingest(ctx context.Context, mediaPath string) (*post.Record, error)
}

// Watcher debounces file events from the inbound directory and invokes the
// ingestor exactly once per file. A settle delay between the last write
// event and the handoff avoids reading partially-written files. Hidden
// files and non-image extensions are ignored. Ingestion failures are logged
// and the file is left in place; there is no automatic retry.
type Watcher struct {
	dir      string
	allowed  map[string]bool
	settle   time.Duration
	ingestor Ingestor
	log      *slog.Logger

	mu        sync.Mutex
	pending   map[string]*time.Timer
	attempted map[string]bool
}

// New creates a watcher over dir handing settled files to the ingestor.
func New(cfg config.WatcherConfig, dir string, ingestor Ingestor, log *slog.Logger) *Watcher {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}

	return &Watcher{
		dir:       dir,
		allowed:   allowed,
		settle:    cfg.SettleDelay,
		ingestor:  ingestor,
		log:       log.With("component", "watcher"),
		pending:   make(map[string]*time.Timer),
		attempted: make(map[string]bool),
	}
}

// Accepts reports whether a file name is a candidate for ingestion: not a
// dotfile, and carrying an allowed image extension (case-insensitive).
func (w *Watcher) Accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.allowed[strings.ToLower(filepath.Ext(base))]
}

// Run watches the inbound directory until the context is cancelled. Files
// already present at startup are swept through the same settle path as
// fresh arrivals.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.log.InfoContext(ctx, "Watching inbound directory", "dir", w.dir)

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			w.log.InfoContext(ctx, "Watcher stopped")
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.ErrorContext(ctx, "Watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.attempted, event.Name)
		if timer, ok := w.pending[event.Name]; ok {
			timer.Stop()
			delete(w.pending, event.Name)
		}
		w.mu.Unlock()
		return
	}

	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !w.Accepts(event.Name) {
		return
	}
	w.schedule(ctx, event.Name)
}

// schedule arms (or re-arms) the settle timer for a path. Each write event
// pushes the handoff out by the settle delay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempted[path] {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}

	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.handoff(ctx, path)
	})
}

func (w *Watcher) handoff(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.pending, path)
	if w.attempted[path] {
		w.mu.Unlock()
		return
	}
	w.attempted[path] = true
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	if _, err := w.ingestor.Ingest(ctx, path); err != nil {
		// The file stays in inbound for manual inspection.
		w.log.ErrorContext(ctx, "Ingestion failed, leaving file in inbound",
			"path", path, "error", err)
	}
}

// sweep schedules every acceptable file already sitting in the inbound
// directory, so photos dropped while the process was down are not lost.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := filepath.Glob(filepath.Join(w.dir, "*"))
	if err != nil {
		w.log.ErrorContext(ctx, "Failed to scan inbound directory", "error", err)
		return
	}
	for _, path := range entries {
		if w.Accepts(path) {
			w.schedule(ctx, path)
		}
	}
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
