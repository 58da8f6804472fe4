package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
)

// DeleteEvent reports one tracked-file deletion from the watch surface.
type DeleteEvent struct {
	Path string
}

const defaultDebounceWindow = 500 * time.Millisecond

// ChangeWatcher coalesces bursts of file deletions (a removed directory
// produces one event per file) into a single confirmation prompt and drives
// batch entry removal through the engine.
type ChangeWatcher struct {
	logger     logr.Logger
	engine     *BlockEngine
	locator    *ManifestLocator
	interactor Interactor
	workspace  string
	window     time.Duration

	mu      sync.Mutex
	pattern string
	pending map[string]struct{}
	flush   *Debouncer
}

func NewChangeWatcher(logger logr.Logger, engine *BlockEngine, locator *ManifestLocator,
	interactor Interactor, workspaceRoot string, extensions []string,
) *ChangeWatcher {
	w := &ChangeWatcher{
		logger:     logger,
		engine:     engine,
		locator:    locator,
		interactor: interactor,
		workspace:  workspaceRoot,
		window:     defaultDebounceWindow,
		pending:    make(map[string]struct{}),
	}
	w.SetExtensions(extensions)
	w.flush = NewDebouncer(w.window, w.flushPending)
	return w
}

// WithDebounce overrides the trailing coalescing window.
func (w *ChangeWatcher) WithDebounce(window time.Duration) *ChangeWatcher {
	w.window = window
	w.flush = NewDebouncer(window, w.flushPending)
	return w
}

// SetExtensions rebuilds the managed-extension filter. Called again whenever
// the configuration changes.
func (w *ChangeWatcher) SetExtensions(extensions []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pattern = GlobForExtensions(extensions)
	w.logger.V(1).Info("Watch pattern rebuilt", "pattern", w.pattern)
}

// GlobForExtensions builds the watch glob for a managed-extension list,
// e.g. [".cpp", ".h"] -> "**/*{.cpp,.h}".
func GlobForExtensions(extensions []string) string {
	if len(extensions) == 0 {
		return ""
	}
	return "**/*{" + strings.Join(extensions, ",") + "}"
}

// Run consumes delete events until the context ends. The pending window is
// cleared on shutdown; an in-flight flush completes first.
func (w *ChangeWatcher) Run(ctx context.Context, events <-chan DeleteEvent) {
	defer w.flush.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.observe(ev)
		}
	}
}

func (w *ChangeWatcher) observe(ev DeleteEvent) {
	w.mu.Lock()
	pattern := w.pattern
	w.mu.Unlock()
	if pattern == "" {
		return
	}
	match, err := doublestar.Match(pattern, filepath.ToSlash(ev.Path))
	if err != nil || !match {
		return
	}
	w.logger.V(1).Info("Tracked file deleted", "path", ev.Path)

	w.mu.Lock()
	w.pending[ev.Path] = struct{}{}
	w.mu.Unlock()
	w.flush.Trigger()
}

func (w *ChangeWatcher) flushPending() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	question := fmt.Sprintf("%d tracked file(s) were deleted. Remove their entries from the manifest?", len(paths))
	if w.interactor.Confirm(question, "Yes", "No") != "Yes" {
		w.logger.Info("Deletion cleanup declined", "files", len(paths))
		return
	}

	candidates, err := w.locator.FindManifests(paths[0], w.workspace)
	if err != nil {
		w.logger.Error(err, "Manifest lookup failed")
		return
	}
	if len(candidates) == 0 {
		w.logger.Info("No manifest found for deleted files", "start", paths[0])
		return
	}

	var tally BatchResult
	remaining := paths
	for i, manifest := range candidates {
		result := w.engine.RemoveFiles(manifest, remaining)
		remaining = result.NotFound
		result.NotFound = nil
		tally.merge(result)
		if len(remaining) == 0 {
			break
		}
		if i+1 == len(candidates) {
			tally.NotFound = remaining
			break
		}
		retry := fmt.Sprintf("%d entr(y/ies) not found in %s. Try %s?",
			len(remaining), manifest, candidates[i+1])
		if w.interactor.Confirm(retry, "Try next manifest", "Skip") != "Try next manifest" {
			tally.NotFound = remaining
			break
		}
	}
	w.logger.Info("Deletion cleanup finished", "summary", tally.Summary())
}
