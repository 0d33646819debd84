// Package watcher reacts to out-of-band filesystem changes by evicting
// affected notes from the store cache and notifying listeners.
//
// The store's lazy staleness check remains authoritative; the watcher only
// tightens the window in which a stale render could be served and feeds the
// SSE event stream. Missing an event is therefore harmless.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const (
	noteExt     = ".md"
	assetSuffix = ".assets"
)

// Invalidator evicts a note from a render cache.
type Invalidator interface {
	Invalidate(id string)
}

// ChangeCallback is called after a watcher-driven eviction.
// kind is "updated" or "removed".
type ChangeCallback func(kind, id string)

// Watch starts an fsnotify watcher on the notes root and processes change
// events until ctx is cancelled. It calls cb (if non-nil) after each
// eviction.
//
// Asset directories created at runtime are added to the watch list so that
// attachment changes also refresh their note.
func Watch(ctx context.Context, store Invalidator, root string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories (typically <id>.assets) join the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			id, kind := classify(absPath, ev.Op)
			if id == "" {
				continue
			}

			store.Invalidate(id)
			logger.Debug("watcher: invalidated",
				slog.String("id", id), slog.String("op", kind))
			if cb != nil {
				cb(kind, id)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// classify maps a filesystem event to the affected note id and change kind.
// Events on files inside an asset directory count as updates to the owning
// note; everything else outside *.md files is ignored.
func classify(path string, op fsnotify.Op) (id, kind string) {
	parent := filepath.Base(filepath.Dir(path))
	if strings.HasSuffix(parent, assetSuffix) {
		return strings.TrimSuffix(parent, assetSuffix), "updated"
	}

	name := filepath.Base(path)
	if !strings.HasSuffix(name, noteExt) {
		return "", ""
	}
	id = strings.TrimSuffix(name, noteExt)

	// Rename fires on the old path only; treat it like a removal. The new
	// path arrives as a separate Create event.
	if op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return id, "removed"
	}
	if op&(fsnotify.Create|fsnotify.Write) != 0 {
		return id, "updated"
	}
	return "", ""
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
