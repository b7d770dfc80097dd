package adapter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// CorpusWatcher reports paths that changed under a corpus root.
type CorpusWatcher interface {
	// Watch starts watching root and every directory below it except those
	// named in skipDirs. Both channels are closed once ctx is done.
	Watch(ctx context.Context, root m.Path, skipDirs []string) (<-chan m.Path, <-chan error, error)
}

// FSNotifyWatcher implements CorpusWatcher with fsnotify.
type FSNotifyWatcher struct{}

// NewCorpusWatcher constructs the fsnotify backed watcher.
func NewCorpusWatcher() *FSNotifyWatcher {
	return &FSNotifyWatcher{}
}

// Watch implements CorpusWatcher.
func (w *FSNotifyWatcher) Watch(ctx context.Context, root m.Path, skipDirs []string) (<-chan m.Path, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := addTree(watcher, string(root), skipDirs); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	changes := make(chan m.Path)
	errs := make(chan error, 1)

	go func() {
		defer close(changes)
		defer close(errs)
		defer func() {
			_ = watcher.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op.Has(fsnotify.Create) {
					if info, statErr := os.Lstat(event.Name); statErr == nil && info.IsDir() {
						if addErr := addTree(watcher, event.Name, skipDirs); addErr != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", addErr)
						}
					}
				}

				if event.Op == fsnotify.Chmod {
					continue
				}

				select {
				case changes <- m.Path(event.Name):
				case <-ctx.Done():
					return
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				select {
				case errs <- watchErr:
				default:
					slog.Warn("dropping watcher error", "error", watchErr)
				}
			}
		}
	}()

	return changes, errs, nil
}

func addTree(watcher *fsnotify.Watcher, root string, skipDirs []string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}

			slog.Warn("skipping unreadable directory", "path", path, "error", err)

			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && slices.Contains(skipDirs, d.Name()) {
			return filepath.SkipDir
		}

		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		return nil
	})
}
