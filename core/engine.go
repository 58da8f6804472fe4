package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// Outcome classifies the result of a single block mutation. Negative results
// are ordinary values, never errors.
type Outcome int

const (
	OutcomeAdded Outcome = iota
	OutcomeRemoved
	OutcomeAlreadyPresent
	OutcomeNotPresent
	OutcomeBlockMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeRemoved:
		return "removed"
	case OutcomeAlreadyPresent:
		return "already present"
	case OutcomeNotPresent:
		return "not present"
	case OutcomeBlockMissing:
		return "block missing"
	}
	return "unknown"
}

// BlockEngine edits declaration blocks inside one manifest at a time. It owns
// no state between calls; every operation re-reads the manifest from disk and
// rewrites it in full, leaving all text outside the edited block untouched.
type BlockEngine struct {
	logger  logr.Logger
	mapping ExtensionMapping
	strict  bool
	preview io.Writer
}

func NewBlockEngine(logger logr.Logger, mapping ExtensionMapping) *BlockEngine {
	return &BlockEngine{logger: logger, mapping: mapping}
}

// WithStrictNesting makes the scanner balance nested parentheses instead of
// ending blocks at the first closing parenthesis.
func (e *BlockEngine) WithStrictNesting(strict bool) *BlockEngine {
	e.strict = strict
	return e
}

// WithPreview diverts every write into a unified diff printed to w. No file
// is modified while a preview writer is set.
func (e *BlockEngine) WithPreview(w io.Writer) *BlockEngine {
	e.preview = w
	return e
}

// RelativeEntry computes the canonical quoted entry for a file: its path
// relative to the manifest's directory, forward slashes, double-quoted.
func RelativeEntry(manifestPath, filePath string) (string, error) {
	rel, err := relativeToManifest(manifestPath, filePath)
	if err != nil {
		return "", err
	}
	return `"` + rel + `"`, nil
}

// GroupFor resolves the declaration group for a file. An unmapped extension
// is a configuration error naming the extension.
func (e *BlockEngine) GroupFor(filePath string) (string, error) {
	group, ok := MapExtension(filePath, e.mapping)
	if !ok {
		return "", fmt.Errorf("no group mapped for extension %q of %s (check extension_mapping)",
			strings.ToLower(filepath.Ext(filePath)), filePath)
	}
	return group, nil
}

// AddFile inserts the file's entry into its group's set() block.
// Idempotent: an entry already present leaves the manifest bytes untouched.
// A missing block is reported as OutcomeBlockMissing without creating one;
// block synthesis is the caller's explicit, confirmed step (CreateBlocks).
func (e *BlockEngine) AddFile(manifestPath, filePath string) (Outcome, error) {
	group, err := e.GroupFor(filePath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	entry, err := RelativeEntry(manifestPath, filePath)
	if err != nil {
		return OutcomeBlockMissing, err
	}

	text, err := e.read(manifestPath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	block, found := findNamedBlock(text, SetKeyword, group, e.strict)
	if !found {
		e.logger.V(1).Info("Block missing", "manifest", manifestPath, "group", group)
		return OutcomeBlockMissing, nil
	}

	entries := block.Entries()
	for _, existing := range entries {
		if existing == entry {
			e.logger.V(1).Info("Entry already present", "manifest", manifestPath, "entry", entry)
			return OutcomeAlreadyPresent, nil
		}
	}

	entries = append(entries, entry)
	doc := splice(text, block.Start, block.End, renderBlock(SetKeyword, group, entries))
	if err := e.write(manifestPath, text, doc); err != nil {
		return OutcomeBlockMissing, err
	}
	e.logger.V(1).Info("Entry added", "manifest", manifestPath, "group", group, "entry", entry)
	return OutcomeAdded, nil
}

// RemoveFile deletes the file's entry from its group's set() block. The block
// shell survives even when its last entry is removed.
func (e *BlockEngine) RemoveFile(manifestPath, filePath string) (Outcome, error) {
	group, err := e.GroupFor(filePath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	entry, err := RelativeEntry(manifestPath, filePath)
	if err != nil {
		return OutcomeBlockMissing, err
	}

	text, err := e.read(manifestPath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	block, found := findNamedBlock(text, SetKeyword, group, e.strict)
	if !found {
		return OutcomeBlockMissing, nil
	}

	entries := block.Entries()
	kept := entries[:0]
	present := false
	for _, existing := range entries {
		if existing == entry {
			present = true
			continue
		}
		kept = append(kept, existing)
	}
	if !present {
		return OutcomeNotPresent, nil
	}

	doc := splice(text, block.Start, block.End, renderBlock(SetKeyword, group, kept))
	if err := e.write(manifestPath, text, doc); err != nil {
		return OutcomeNotPresent, err
	}
	e.logger.V(1).Info("Entry removed", "manifest", manifestPath, "group", group, "entry", entry)
	return OutcomeRemoved, nil
}

// CreateBlocks inserts one empty set() block per group, all at a single
// insertion point chosen by priority: after the last existing set() block,
// else after project(), else at the top of the file.
func (e *BlockEngine) CreateBlocks(manifestPath string, groups []string) error {
	if len(groups) == 0 {
		return nil
	}
	text, err := e.read(manifestPath)
	if err != nil {
		return err
	}

	rendered := make([]string, 0, len(groups))
	for _, group := range groups {
		rendered = append(rendered, renderBlock(SetKeyword, group, nil))
	}
	combined := strings.Join(rendered, "\n\n")

	doc := insertAnchored(text, combined, e.strict, true)
	if err := e.write(manifestPath, text, doc); err != nil {
		return err
	}
	e.logger.V(1).Info("Blocks created", "manifest", manifestPath, "groups", groups)
	return nil
}

// AddIncludeDirectory inserts a ${CMAKE_CURRENT_SOURCE_DIR}-anchored entry
// into the include_directories block. Unlike AddFile, a missing block is
// created inline without confirmation, anchored after project() else at the
// top of the file.
func (e *BlockEngine) AddIncludeDirectory(manifestPath, dirPath string) (Outcome, error) {
	entry, err := includeEntry(manifestPath, dirPath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	text, err := e.read(manifestPath)
	if err != nil {
		return OutcomeBlockMissing, err
	}

	block, found := findUnnamedBlock(text, IncludeDirectoriesKeyword, e.strict)
	if !found {
		rendered := renderUnnamedBlock(IncludeDirectoriesKeyword, []string{entry})
		doc := insertAnchored(text, rendered, e.strict, false)
		if err := e.write(manifestPath, text, doc); err != nil {
			return OutcomeBlockMissing, err
		}
		e.logger.V(1).Info("Include block created", "manifest", manifestPath, "entry", entry)
		return OutcomeAdded, nil
	}

	entries := block.Entries()
	for _, existing := range entries {
		if existing == entry {
			return OutcomeAlreadyPresent, nil
		}
	}
	entries = append(entries, entry)
	doc := splice(text, block.Start, block.End, renderUnnamedBlock(IncludeDirectoriesKeyword, entries))
	if err := e.write(manifestPath, text, doc); err != nil {
		return OutcomeBlockMissing, err
	}
	return OutcomeAdded, nil
}

// RemoveIncludeDirectory deletes a directory entry; the block shell is kept
// even when emptied.
func (e *BlockEngine) RemoveIncludeDirectory(manifestPath, dirPath string) (Outcome, error) {
	entry, err := includeEntry(manifestPath, dirPath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	text, err := e.read(manifestPath)
	if err != nil {
		return OutcomeBlockMissing, err
	}
	block, found := findUnnamedBlock(text, IncludeDirectoriesKeyword, e.strict)
	if !found {
		return OutcomeBlockMissing, nil
	}

	entries := block.Entries()
	kept := entries[:0]
	present := false
	for _, existing := range entries {
		if existing == entry {
			present = true
			continue
		}
		kept = append(kept, existing)
	}
	if !present {
		return OutcomeNotPresent, nil
	}
	doc := splice(text, block.Start, block.End, renderUnnamedBlock(IncludeDirectoriesKeyword, kept))
	if err := e.write(manifestPath, text, doc); err != nil {
		return OutcomeNotPresent, err
	}
	return OutcomeRemoved, nil
}

// insertAnchored places rendered block text at the documented priority point.
// anchorSets controls whether existing set() blocks are considered anchors
// (file blocks) or only project() is (the include-directories path).
func insertAnchored(text, rendered string, strict, anchorSets bool) string {
	if anchorSets {
		if sets := scanKeywordBlocks(text, SetKeyword, strict, 0); len(sets) > 0 {
			at := sets[len(sets)-1].End
			return text[:at] + "\n\n" + rendered + "\n" + text[at:]
		}
	}
	if project, found := findUnnamedBlock(text, ProjectKeyword, strict); found {
		at := project.End
		return text[:at] + "\n\n" + rendered + "\n" + text[at:]
	}
	return rendered + "\n\n" + text
}

func includeEntry(manifestPath, dirPath string) (string, error) {
	rel, err := relativeToManifest(manifestPath, dirPath)
	if err != nil {
		return "", err
	}
	return SourceDirPlaceholder + "/" + rel, nil
}

func relativeToManifest(manifestPath, targetPath string) (string, error) {
	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return "", fmt.Errorf("error resolving manifest path %s: %w", manifestPath, err)
	}
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("error resolving target path %s: %w", targetPath, err)
	}
	rel, err := filepath.Rel(filepath.Dir(absManifest), absTarget)
	if err != nil {
		return "", fmt.Errorf("error relativizing %s against %s: %w", targetPath, manifestPath, err)
	}
	return filepath.ToSlash(rel), nil
}

func (e *BlockEngine) read(manifestPath string) (string, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("error reading manifest %s: %w", manifestPath, err)
	}
	return string(data), nil
}

func (e *BlockEngine) write(manifestPath, before, after string) error {
	if e.preview != nil {
		diff, err := UnifiedPreview(manifestPath, before, after)
		if err != nil {
			return err
		}
		fmt.Fprint(e.preview, diff)
		return nil
	}
	if err := os.WriteFile(manifestPath, []byte(after), 0o644); err != nil {
		return fmt.Errorf("error writing manifest %s: %w", manifestPath, err)
	}
	return nil
}
