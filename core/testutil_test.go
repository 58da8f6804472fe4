package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap/zaptest"
	"golang.org/x/tools/txtar"
)

func testLogger(t *testing.T) logr.Logger {
	return zapr.NewLogger(zaptest.NewLogger(t))
}

// extractTxtar lays out a txtar archive under dir, creating parent
// directories as needed.
func extractTxtar(t *testing.T, dir, archive string) {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", f.Name, err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
