package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// ManifestLocator walks ancestor directories collecting manifest files,
// nearest first. The walk never leaves the workspace root.
type ManifestLocator struct {
	logger       logr.Logger
	manifestName string
}

func NewManifestLocator(logger logr.Logger, manifestName string) *ManifestLocator {
	return &ManifestLocator{logger: logger, manifestName: manifestName}
}

// FindManifests returns manifest paths from the directory of startPath up to
// workspaceRoot, nearest ancestor first. A start path outside the workspace
// yields an empty list and no error; "nothing found" is a normal outcome.
func (l *ManifestLocator) FindManifests(startPath, workspaceRoot string) ([]string, error) {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("error resolving workspace root %s: %w", workspaceRoot, err)
	}
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf("error resolving start path %s: %w", startPath, err)
	}

	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	var manifests []string
	for {
		if !withinRoot(root, dir) {
			l.logger.V(1).Info("Left workspace boundary, stopping", "dir", dir, "root", root)
			break
		}
		candidate := filepath.Join(dir, l.manifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			l.logger.V(1).Info("Found manifest", "path", candidate)
			manifests = append(manifests, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return manifests, nil
}

func withinRoot(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
