package mkfs

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates the files with the given project relative paths in dir.
func writeTree(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(f), 0666); err != nil {
			t.Fatal(err)
		}
	}
}
