// Package watchfs streams file-deletion events for a directory tree.
package watchfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/Olenjan/makelist/core"
)

var skipDirs = map[string]bool{
	".git":         true,
	"build":        true,
	"node_modules": true,
}

// Source wraps fsnotify, registering the root and every subdirectory and
// forwarding Remove/Rename events as core.DeleteEvent values. Extension
// filtering is the watcher's job, not ours.
type Source struct {
	logger  logr.Logger
	watcher *fsnotify.Watcher
	events  chan core.DeleteEvent
}

func New(logger logr.Logger, root string) (*Source, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating filesystem watcher: %w", err)
	}
	s := &Source{
		logger:  logger,
		watcher: watcher,
		events:  make(chan core.DeleteEvent, 64),
	}
	if err := s.addTree(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return s, nil
}

func (s *Source) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			return fmt.Errorf("error watching %s: %w", path, err)
		}
		s.logger.V(1).Info("Watching directory", "path", path)
		return nil
	})
}

func (s *Source) Events() <-chan core.DeleteEvent {
	return s.events
}

// Run pumps fsnotify events until the context ends. Newly created
// directories are added to the watch; deletions and renames are forwarded.
func (s *Source) Run(ctx context.Context) {
	defer close(s.events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(ev)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error(err, "Watcher error")
		}
	}
}

func (s *Source) handle(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		s.events <- core.DeleteEvent{Path: ev.Name}
	case ev.Op.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.IsDir() || skipDirs[filepath.Base(ev.Name)] {
			return
		}
		if err := s.watcher.Add(ev.Name); err != nil {
			s.logger.Error(err, "Failed to watch new directory", "path", ev.Name)
		}
	}
}

func (s *Source) Close() error {
	return s.watcher.Close()
}
