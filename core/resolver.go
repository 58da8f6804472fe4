package core

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
)

// Reference links one quoted filename token inside a manifest to matching
// workspace files. The span covers the token content only, quotes excluded.
// A single target is a direct reference; multiple targets are kept for
// interactive disambiguation when the reference is activated.
type Reference struct {
	Token   string
	Offset  int
	Length  int
	Targets []string
}

// ReferenceResolver scans manifest text for filename tokens inside
// declaration blocks. It re-scans only when the content snapshot changed and
// applies the same debounce discipline as the deletion watcher so repeated
// edits do not trigger a scan per keystroke.
type ReferenceResolver struct {
	logger  logr.Logger
	root    string
	exclude map[string]bool
	strict  bool

	mu          sync.Mutex
	lastContent string
	lastRefs    []Reference
	cached      bool
	debounce    *Debouncer
	deferred    func()
}

func NewReferenceResolver(logger logr.Logger, workspaceRoot string) *ReferenceResolver {
	r := &ReferenceResolver{
		logger: logger,
		root:   workspaceRoot,
		exclude: map[string]bool{
			".git":         true,
			"build":        true,
			"node_modules": true,
		},
	}
	r.debounce = NewDebouncer(defaultDebounceWindow, r.runDeferred)
	return r
}

func (r *ReferenceResolver) WithStrictNesting(strict bool) *ReferenceResolver {
	r.strict = strict
	return r
}

// WithDebounce overrides the quiet window applied by Schedule.
func (r *ReferenceResolver) WithDebounce(window time.Duration) *ReferenceResolver {
	r.debounce = NewDebouncer(window, r.runDeferred)
	return r
}

// Resolve returns references for the given manifest content, serving the
// cached result while the content snapshot is unchanged.
func (r *ReferenceResolver) Resolve(content string) ([]Reference, error) {
	r.mu.Lock()
	if r.cached && content == r.lastContent {
		refs := r.lastRefs
		r.mu.Unlock()
		r.logger.V(1).Info("Serving cached references", "count", len(refs))
		return refs, nil
	}
	r.mu.Unlock()

	refs, err := r.scan(content)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.lastContent = content
	r.lastRefs = refs
	r.cached = true
	r.mu.Unlock()
	return refs, nil
}

// Schedule queues a debounced Resolve; a newer call supersedes a pending one.
// deliver runs on the timer goroutine once the quiet window elapses.
func (r *ReferenceResolver) Schedule(content string, deliver func([]Reference, error)) {
	r.mu.Lock()
	r.deferred = func() { deliver(r.Resolve(content)) }
	r.mu.Unlock()
	r.debounce.Trigger()
}

// Stop cancels any pending scheduled scan.
func (r *ReferenceResolver) Stop() {
	r.debounce.Stop()
}

func (r *ReferenceResolver) runDeferred() {
	r.mu.Lock()
	fn := r.deferred
	r.deferred = nil
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *ReferenceResolver) scan(content string) ([]Reference, error) {
	index, err := r.indexWorkspace()
	if err != nil {
		return nil, err
	}

	var refs []Reference
	for _, block := range scanNamedBlocks(content, r.strict) {
		for _, token := range quotedTokens(block.Inner, block.InnerStart) {
			targets := r.match(index, token.text)
			if len(targets) == 0 {
				continue
			}
			refs = append(refs, Reference{
				Token:   token.text,
				Offset:  token.offset,
				Length:  len(token.text),
				Targets: targets,
			})
		}
	}
	r.logger.V(1).Info("Scanned manifest content", "references", len(refs))
	return refs, nil
}

// indexWorkspace maps base filenames to workspace-relative paths.
func (r *ReferenceResolver) indexWorkspace() (map[string][]string, error) {
	index := make(map[string][]string)
	err := filepath.WalkDir(r.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if r.exclude[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		index[path.Base(rel)] = append(index[path.Base(rel)], rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error indexing workspace %s: %w", r.root, err)
	}
	return index, nil
}

// match narrows same-named candidates by the token's own path suffix when the
// token carries directories.
func (r *ReferenceResolver) match(index map[string][]string, token string) []string {
	normalized := filepath.ToSlash(token)
	candidates := index[path.Base(normalized)]
	if !strings.Contains(normalized, "/") {
		return candidates
	}
	var targets []string
	for _, c := range candidates {
		if ok, err := doublestar.Match("**/"+normalized, c); err == nil && (ok || c == normalized) {
			targets = append(targets, c)
		}
	}
	return targets
}

type token struct {
	text   string
	offset int
}

// quotedTokens extracts "..." contents from block inner text with their
// absolute document offsets. Tokens without an extension are skipped; they
// are flags or variables, not filenames.
func quotedTokens(inner string, innerStart int) []token {
	var tokens []token
	for i := 0; i < len(inner); {
		open := strings.IndexByte(inner[i:], '"')
		if open < 0 {
			break
		}
		start := i + open + 1
		closeRel := strings.IndexByte(inner[start:], '"')
		if closeRel < 0 {
			break
		}
		text := inner[start : start+closeRel]
		if path.Ext(text) != "" {
			tokens = append(tokens, token{text: text, offset: innerStart + start})
		}
		i = start + closeRel + 1
	}
	return tokens
}
