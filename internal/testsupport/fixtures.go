package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tracer/internal/archive"
	"tracer/internal/config"
)

// WriteCSV writes an export fixture to dir/name and returns its path.
func WriteCSV(t testing.TB, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// MustOpenArchive opens cfg's archive and closes it when the test ends.
func MustOpenArchive(t testing.TB, cfg *config.Config) *archive.Store {
	t.Helper()
	store, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
