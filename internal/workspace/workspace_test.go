package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"mx/internal/tracelog"
)

// writeFile creates a file under root with parent directories as needed.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestContext(t *testing.T, root string, additionalRoots []string) *Context {
	t.Helper()
	return NewContext(root, additionalRoots, t.TempDir())
}

func filePaths(files []FileData) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.File)
	}
	return paths
}

func assertSortedNoDuplicates(t *testing.T, files []FileData) {
	t.Helper()
	for i := 1; i < len(files); i++ {
		if files[i-1].File > files[i].File {
			t.Fatalf("files not sorted: %q before %q", files[i-1].File, files[i].File)
		}
		if files[i-1].File == files[i].File {
			t.Fatalf("duplicate path %q", files[i].File)
		}
	}
}

var testLog = tracelog.Nop()
