package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteDownload creates path, and any missing parents, as a small stand-in
// for a downloaded course file. The content names the file so moved copies
// can be told apart.
func WriteDownload(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	body := []byte("%PDF-1.4\n% " + filepath.Base(path) + "\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
