package core

import (
	"fmt"
	"strings"
)

// BatchResult tallies a multi-file operation. Each file is independent; an
// idempotent no-op on one file never aborts the rest.
type BatchResult struct {
	Added          []string
	Removed        []string
	AlreadyPresent []string
	NotFound       []string
	Failed         []string
}

func (r *BatchResult) merge(other BatchResult) {
	r.Added = append(r.Added, other.Added...)
	r.Removed = append(r.Removed, other.Removed...)
	r.AlreadyPresent = append(r.AlreadyPresent, other.AlreadyPresent...)
	r.NotFound = append(r.NotFound, other.NotFound...)
	r.Failed = append(r.Failed, other.Failed...)
}

// Summary renders the per-category counts, skipping empty ones.
func (r BatchResult) Summary() string {
	var parts []string
	add := func(label string, items []string) {
		if len(items) > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", len(items), label))
		}
	}
	add("added", r.Added)
	add("removed", r.Removed)
	add("already present", r.AlreadyPresent)
	add("not found", r.NotFound)
	add("failed", r.Failed)
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// AddFiles inserts each file's entry into the manifest. Files whose group
// block is missing are returned keyed by group so the caller can confirm
// block synthesis and retry them.
func (e *BlockEngine) AddFiles(manifestPath string, files []string) (BatchResult, map[string][]string) {
	var result BatchResult
	missing := make(map[string][]string)
	for _, file := range files {
		outcome, err := e.AddFile(manifestPath, file)
		if err != nil {
			e.logger.Error(err, "Failed to add entry", "file", file)
			result.Failed = append(result.Failed, file)
			continue
		}
		switch outcome {
		case OutcomeAdded:
			result.Added = append(result.Added, file)
		case OutcomeAlreadyPresent:
			result.AlreadyPresent = append(result.AlreadyPresent, file)
		case OutcomeBlockMissing:
			group, _ := e.GroupFor(file)
			missing[group] = append(missing[group], file)
		}
	}
	return result, missing
}

// RemoveFiles deletes each file's entry from the manifest. Files whose entry
// or block is absent are tallied as not found.
func (e *BlockEngine) RemoveFiles(manifestPath string, files []string) BatchResult {
	var result BatchResult
	for _, file := range files {
		outcome, err := e.RemoveFile(manifestPath, file)
		if err != nil {
			e.logger.Error(err, "Failed to remove entry", "file", file)
			result.Failed = append(result.Failed, file)
			continue
		}
		switch outcome {
		case OutcomeRemoved:
			result.Removed = append(result.Removed, file)
		case OutcomeNotPresent, OutcomeBlockMissing:
			result.NotFound = append(result.NotFound, file)
		}
	}
	return result
}
