// Package watch wires fsnotify project watching to the refresh scheduler.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Trigger is the debounced refresh hook the watcher drives.
type Trigger interface {
	Trigger()
}

// Watch starts an fsnotify watcher on contentRoot and requests a refresh for
// every relevant change until ctx is cancelled. Every refresh is a full
// rescan, so the watcher only needs to know that something changed, not
// what.
//
// New directories created at runtime are added to the watch list. skipDirs
// (absolute paths, e.g. the card store) are never watched: card writes made
// by the reconciler must not feed back into new refreshes.
func Watch(ctx context.Context, contentRoot string, skipDirs []string, trig Trigger, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	skip := func(path string) bool {
		for _, d := range skipDirs {
			if path == d || strings.HasPrefix(path, d+string(os.PathSeparator)) {
				return true
			}
		}
		return false
	}

	if err := addDirsRecursive(w, contentRoot, skip); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", contentRoot))

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
			if skip(absPath) {
				continue
			}

			// New directories: start watching them too.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath, skip); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					trig.Trigger()
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("watcher: change",
					slog.String("path", absPath),
					slog.String("op", ev.Op.String()))
				trig.Trigger()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping excluded trees.
func addDirsRecursive(w *fsnotify.Watcher, root string, skip func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skip(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
