package core

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedPreview renders the pending manifest change as a classic unified
// diff without touching the file.
func UnifiedPreview(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("error rendering diff for %s: %w", path, err)
	}
	return s, nil
}
