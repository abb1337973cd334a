package vfs

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// Watcher observes on-disk changes to files the editor has not opened as
// overlays, translating them into Change values the caller can feed back
// into a Vfs. This backs the fallback path for
// workspace/didChangeWatchedFiles on editors that don't send the
// notification themselves, and for files outside any open buffer
// (library sources pulled in via remappings).
type Watcher struct {
	log     *slog.Logger
	fsw     *fsnotify.Watcher
	changes chan Change
}

// NewWatcher starts an fsnotify watcher. Call Close when done.
func NewWatcher(log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{log: log, fsw: fsw, changes: make(chan Change, 64)}
	go w.run()
	return w, nil
}

// Add starts watching dir (non-recursively; callers add each directory
// they care about, matching fsnotify's shallow-watch model).
func (w *Watcher) Add(dir string) error { return w.fsw.Add(dir) }

// Changes streams normalized Change values derived from disk events.
// Renamed/removed files are surfaced as Delete changes; writes are left
// for the caller to re-read via Snapshot.ReadDisk and Set.
func (w *Watcher) Changes() <-chan Change { return w.changes }

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				close(w.changes)
				return
			}
			path := intern.Normalize(ev.Name)
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.changes <- Change{Path: path, Delete: true}
			case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
				// Signal a re-read; the caller owns reading bytes off disk
				// through the Vfs snapshot's delegate.
				w.changes <- Change{Path: path}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warn("fsnotify error", slog.Any("err", err))
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
