package indexer

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher live-updates an Indexer's backing facts as files change, so the
// hybrid search index stays current between full Walk passes.
type Watcher struct {
	ix      *Indexer
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a Watcher rooted at ix.cfg.Root.
func NewWatcher(ix *Indexer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(ix.cfg.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{ix: ix, fsw: fsw, done: make(chan struct{})}, nil
}

// Run processes fsnotify events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("indexer watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	switch {
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		if err := w.ix.IndexFile(ctx, ev.Name); err != nil {
			slog.Warn("indexer watcher: re-index failed", "path", ev.Name, "error", err)
		}
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if err := w.ix.RemoveFile(ctx, ev.Name); err != nil {
			slog.Warn("indexer watcher: removal failed", "path", ev.Name, "error", err)
		}
	}
}

// Close stops the watcher and releases its OS-level resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
