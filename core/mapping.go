package core

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ExtensionMapping maps a lowercase file extension (leading dot included) to
// the declaration group name its files belong to, e.g. ".cpp" -> "SOURCES".
// An extension absent from the mapping means the file is not managed.
type ExtensionMapping map[string]string

// MapExtension resolves the declaration group for a file path.
func MapExtension(path string, mapping ExtensionMapping) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	group, ok := mapping[ext]
	return group, ok
}

// FilterManaged keeps only paths whose extension is mapped. An empty result
// is an error so the caller surfaces it instead of silently doing nothing.
func FilterManaged(paths []string, mapping ExtensionMapping) ([]string, error) {
	var managed []string
	for _, p := range paths {
		if _, ok := MapExtension(p, mapping); ok {
			managed = append(managed, p)
		}
	}
	if len(managed) == 0 {
		return nil, fmt.Errorf("none of the selected files have a managed extension (mapped: %s)", mappingKeys(mapping))
	}
	return managed, nil
}

func mappingKeys(mapping ExtensionMapping) string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
