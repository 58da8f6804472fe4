package core

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const engineWorkspace = `-- CMakeLists.txt --
cmake_minimum_required(VERSION 3.10)
project(demo)

set(SOURCES
    "main.cpp"
)
-- main.cpp --
int main() { return 0; }
-- src/util.cpp --
void util() {}
-- src/util.h --
void util();
`

func newTestEngine(t *testing.T) *BlockEngine {
	return NewBlockEngine(testLogger(t), testMapping)
}

func setupEngineWorkspace(t *testing.T) (dir, manifest string) {
	t.Helper()
	dir = t.TempDir()
	extractTxtar(t, dir, engineWorkspace)
	return dir, filepath.Join(dir, "CMakeLists.txt")
}

func TestAddFileAppendsEntry(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)

	outcome, err := engine.AddFile(manifest, filepath.Join(dir, "src", "util.cpp"))
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Fatalf("outcome = %v, want added", outcome)
	}

	content := readFile(t, manifest)
	wantBlock := "set(SOURCES\n    \"main.cpp\"\n    \"src/util.cpp\"\n)"
	if !strings.Contains(content, wantBlock) {
		t.Errorf("manifest missing rebuilt block:\n%s", content)
	}
}

func TestAddFileIdempotent(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)
	file := filepath.Join(dir, "src", "util.cpp")

	if _, err := engine.AddFile(manifest, file); err != nil {
		t.Fatalf("first AddFile: %v", err)
	}
	after := readFile(t, manifest)

	outcome, err := engine.AddFile(manifest, file)
	if err != nil {
		t.Fatalf("second AddFile: %v", err)
	}
	if outcome != OutcomeAlreadyPresent {
		t.Errorf("outcome = %v, want already present", outcome)
	}
	if got := readFile(t, manifest); got != after {
		t.Error("second add modified the file")
	}
}

func TestAddFileSpanIsolation(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)

	before := readFile(t, manifest)
	blockBefore, _ := findNamedBlock(before, SetKeyword, "SOURCES", false)
	prefix, suffix := before[:blockBefore.Start], before[blockBefore.End:]

	if _, err := engine.AddFile(manifest, filepath.Join(dir, "src", "util.cpp")); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	after := readFile(t, manifest)
	blockAfter, _ := findNamedBlock(after, SetKeyword, "SOURCES", false)
	if after[:blockAfter.Start] != prefix {
		t.Error("text before the block changed")
	}
	if after[blockAfter.End:] != suffix {
		t.Error("text after the block changed")
	}
}

func TestAddFileOrderPreserved(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	writeFile(t, manifest, "set(SOURCES\n    \"z.cpp\"\n    \"a.cpp\"\n    \"m.cpp\"\n)\n")
	engine := newTestEngine(t)

	writeFile(t, filepath.Join(dir, "new.cpp"), "")
	if _, err := engine.AddFile(manifest, filepath.Join(dir, "new.cpp")); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	block, _ := findNamedBlock(readFile(t, manifest), SetKeyword, "SOURCES", false)
	want := []string{`"z.cpp"`, `"a.cpp"`, `"m.cpp"`, `"new.cpp"`}
	if got := block.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v (existing order kept, new entry last)", got, want)
	}
}

func TestAddFileBlockMissing(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)
	before := readFile(t, manifest)

	outcome, err := engine.AddFile(manifest, filepath.Join(dir, "src", "util.h"))
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if outcome != OutcomeBlockMissing {
		t.Fatalf("outcome = %v, want block missing", outcome)
	}
	if got := readFile(t, manifest); got != before {
		t.Error("block-missing add must not write")
	}
}

func TestCreateBlocksThenAdd(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)

	if err := engine.CreateBlocks(manifest, []string{"HEADERS"}); err != nil {
		t.Fatalf("CreateBlocks: %v", err)
	}

	content := readFile(t, manifest)
	if !strings.Contains(content, "set(HEADERS\n)") {
		t.Fatalf("missing empty HEADERS shell:\n%s", content)
	}
	// Anchored after the last existing set() block.
	if strings.Index(content, "set(HEADERS") < strings.Index(content, "set(SOURCES") {
		t.Error("HEADERS block should come after the existing SOURCES block")
	}

	outcome, err := engine.AddFile(manifest, filepath.Join(dir, "src", "util.h"))
	if err != nil {
		t.Fatalf("AddFile after create: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Errorf("outcome = %v, want added", outcome)
	}
	block, _ := findNamedBlock(readFile(t, manifest), SetKeyword, "HEADERS", false)
	if got := block.Entries(); !reflect.DeepEqual(got, []string{`"src/util.h"`}) {
		t.Errorf("HEADERS entries = %v", got)
	}
}

func TestCreateBlocksAnchorPriority(t *testing.T) {
	testCases := []struct {
		name     string
		manifest string
		above    string // text expected to precede the new block
	}{
		{
			name:     "After last set block",
			manifest: "project(demo)\n\nset(SOURCES\n    \"a.cpp\"\n)\n\nadd_executable(demo \"a.cpp\")\n",
			above:    "set(SOURCES",
		},
		{
			name:     "After project when no set block",
			manifest: "cmake_minimum_required(VERSION 3.10)\nproject(demo)\n\nadd_executable(demo \"a.cpp\")\n",
			above:    "project(demo)",
		},
		{
			name:     "Top of file when nothing anchors",
			manifest: "# plain comment\n",
			above:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			manifest := filepath.Join(dir, "CMakeLists.txt")
			writeFile(t, manifest, tc.manifest)
			engine := newTestEngine(t)

			if err := engine.CreateBlocks(manifest, []string{"HEADERS"}); err != nil {
				t.Fatalf("CreateBlocks: %v", err)
			}
			content := readFile(t, manifest)
			at := strings.Index(content, "set(HEADERS")
			if at < 0 {
				t.Fatalf("no HEADERS block:\n%s", content)
			}
			if tc.above == "" {
				if at != 0 {
					t.Errorf("expected block at top of file, found at offset %d", at)
				}
				return
			}
			anchor := strings.Index(content, tc.above)
			if anchor < 0 || anchor > at {
				t.Errorf("block at %d not anchored after %q (at %d):\n%s", at, tc.above, anchor, content)
			}
		})
	}
}

func TestCreateBlocksMultipleTogether(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "CMakeLists.txt")
	writeFile(t, manifest, "project(demo)\n")
	engine := newTestEngine(t)

	if err := engine.CreateBlocks(manifest, []string{"SOURCES", "HEADERS"}); err != nil {
		t.Fatalf("CreateBlocks: %v", err)
	}
	content := readFile(t, manifest)
	src, hdr := strings.Index(content, "set(SOURCES"), strings.Index(content, "set(HEADERS")
	if src < 0 || hdr < 0 {
		t.Fatalf("missing blocks:\n%s", content)
	}
	if src > hdr {
		t.Error("queued blocks must keep their relative order")
	}
}

func TestRemoveFileRoundTrip(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)
	file := filepath.Join(dir, "src", "util.cpp")

	blockBefore, _ := findNamedBlock(readFile(t, manifest), SetKeyword, "SOURCES", false)
	entriesBefore := blockBefore.Entries()

	if _, err := engine.AddFile(manifest, file); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	outcome, err := engine.RemoveFile(manifest, file)
	if err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if outcome != OutcomeRemoved {
		t.Fatalf("outcome = %v, want removed", outcome)
	}

	blockAfter, _ := findNamedBlock(readFile(t, manifest), SetKeyword, "SOURCES", false)
	if got := blockAfter.Entries(); !reflect.DeepEqual(got, entriesBefore) {
		t.Errorf("entries after round trip = %v, want %v", got, entriesBefore)
	}
}

func TestRemoveLastEntryKeepsShell(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "CMakeLists.txt")
	writeFile(t, manifest, "set(SOURCES\n    \"a.cpp\"\n)\n")
	writeFile(t, filepath.Join(dir, "a.cpp"), "")
	engine := newTestEngine(t)

	outcome, err := engine.RemoveFile(manifest, filepath.Join(dir, "a.cpp"))
	if err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if outcome != OutcomeRemoved {
		t.Fatalf("outcome = %v, want removed", outcome)
	}
	content := readFile(t, manifest)
	if !strings.Contains(content, "set(SOURCES\n)") {
		t.Errorf("emptied block must keep its shell:\n%s", content)
	}
}

func TestRemoveFileNotPresent(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)
	before := readFile(t, manifest)

	outcome, err := engine.RemoveFile(manifest, filepath.Join(dir, "src", "util.cpp"))
	if err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if outcome != OutcomeNotPresent {
		t.Errorf("outcome = %v, want not present", outcome)
	}
	if got := readFile(t, manifest); got != before {
		t.Error("not-present remove must not write")
	}
}

func TestUnmappedExtensionIsConfigurationError(t *testing.T) {
	_, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)

	_, err := engine.AddFile(manifest, "notes.md")
	if err == nil {
		t.Fatal("expected configuration error for unmapped extension")
	}
	if !strings.Contains(err.Error(), ".md") {
		t.Errorf("error should name the extension, got: %v", err)
	}
}

func TestMissingManifestIsIOError(t *testing.T) {
	engine := newTestEngine(t)
	missing := filepath.Join(t.TempDir(), "CMakeLists.txt")
	_, err := engine.AddFile(missing, "a.cpp")
	if err == nil {
		t.Fatal("expected I/O error")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error should carry the offending path, got: %v", err)
	}
}

func TestIncludeDirectoryLifecycle(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "CMakeLists.txt")
	writeFile(t, manifest, "project(demo)\n")
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	engine := newTestEngine(t)
	target := filepath.Join(dir, "src")

	// Absent block is created inline, no confirmation step.
	outcome, err := engine.AddIncludeDirectory(manifest, target)
	if err != nil {
		t.Fatalf("AddIncludeDirectory: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Fatalf("outcome = %v, want added", outcome)
	}
	content := readFile(t, manifest)
	wantEntry := SourceDirPlaceholder + "/src"
	if !strings.Contains(content, "include_directories(\n    "+wantEntry+"\n)") {
		t.Fatalf("include block not created:\n%s", content)
	}
	// Anchored after project().
	if strings.Index(content, "include_directories(") < strings.Index(content, "project(demo)") {
		t.Error("include block should follow project()")
	}

	if outcome, _ = engine.AddIncludeDirectory(manifest, target); outcome != OutcomeAlreadyPresent {
		t.Errorf("second add outcome = %v, want already present", outcome)
	}

	if outcome, _ = engine.RemoveIncludeDirectory(manifest, target); outcome != OutcomeRemoved {
		t.Errorf("remove outcome = %v, want removed", outcome)
	}
	if !strings.Contains(readFile(t, manifest), "include_directories(\n)") {
		t.Error("emptied include block must keep its shell")
	}

	if outcome, _ = engine.RemoveIncludeDirectory(manifest, target); outcome != OutcomeNotPresent {
		t.Errorf("second remove outcome = %v, want not present", outcome)
	}
}

func TestPreviewLeavesFileUntouched(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	before := readFile(t, manifest)

	var buf bytes.Buffer
	engine := newTestEngine(t).WithPreview(&buf)

	outcome, err := engine.AddFile(manifest, filepath.Join(dir, "src", "util.cpp"))
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Fatalf("outcome = %v, want added", outcome)
	}
	if got := readFile(t, manifest); got != before {
		t.Error("preview mode must not write the manifest")
	}
	if !strings.Contains(buf.String(), `+    "src/util.cpp"`) {
		t.Errorf("diff missing added line:\n%s", buf.String())
	}
}

func TestAddFilesBatchTally(t *testing.T) {
	dir, manifest := setupEngineWorkspace(t)
	engine := newTestEngine(t)

	files := []string{
		filepath.Join(dir, "main.cpp"),       // already present
		filepath.Join(dir, "src", "util.cpp"), // added
		filepath.Join(dir, "src", "util.h"),  // block missing
	}
	result, missing := engine.AddFiles(manifest, files)

	if len(result.Added) != 1 || len(result.AlreadyPresent) != 1 {
		t.Errorf("tally = %+v", result)
	}
	if got := missing["HEADERS"]; len(got) != 1 {
		t.Errorf("missing = %v, want util.h under HEADERS", missing)
	}
	if got := result.Summary(); !strings.Contains(got, "1 added") || !strings.Contains(got, "1 already present") {
		t.Errorf("summary = %q", got)
	}
}
