package fsstorage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reports the keys changed below root, no matter which process changed them.
// The returned channel is closed when ctx is done. Events are at-least-once: one
// write may be reported more than once, and removed directories are reported
// under their path as well (they read as absent).
//
// New directories are watched as soon as they appear; keys written into them
// before the watch was added are reported when the directory is picked up.
func Watch(ctx context.Context, root string) (<-chan string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &dirWatcher{
		root:    absRoot,
		watcher: watcher,
		out:     make(chan string, 64),
	}
	if err := w.addTree(ctx, absRoot, false); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go w.run(ctx)
	return w.out, nil
}

type dirWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	out     chan string
}

func (w *dirWatcher) run(ctx context.Context) {
	defer close(w.out)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			Logger.Warningf("watching %s: %v", w.root, err)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		}
	}
}

func (w *dirWatcher) handle(ctx context.Context, event fsnotify.Event) {
	// temporary files and foreign dot entries
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(ctx, event.Name, true); err != nil {
				Logger.Warningf("could not watch %s: %v", event.Name, err)
			}
			return
		}
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.emit(ctx, event.Name)
	}
}

// addTree watches dir and every directory below it. With report set, the keys
// already present are emitted.
func (w *dirWatcher) addTree(ctx context.Context, dir string, report bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// vanished while walking
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		if report && d.Type().IsRegular() {
			w.emit(ctx, path)
		}
		return nil
	})
}

func (w *dirWatcher) emit(ctx context.Context, path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	select {
	case w.out <- filepath.ToSlash(rel):
	case <-ctx.Done():
	}
}
