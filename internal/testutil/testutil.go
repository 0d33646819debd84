// Package testutil provides shared test helpers for setting up note
// directories and stores.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/okvist/miniref/internal/notestore"
)

// NewStore creates a store over a temporary notes directory.
func NewStore(t *testing.T) (*notestore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := notestore.New(dir)
	if err != nil {
		t.Fatalf("notestore.New: %v", err)
	}
	return store, dir
}

// WriteNote writes a canonical note file <id>.md into dir and returns its path.
func WriteNote(t *testing.T, dir, id, title, body string) string {
	t.Helper()
	content := fmt.Sprintf("---\nid: %q\ntitle: %q\n---\n%s\n", id, title, body)
	path := filepath.Join(dir, id+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write note %s: %v", id, err)
	}
	return path
}

// WriteAsset places a file in the asset directory belonging to note id.
func WriteAsset(t *testing.T, dir, id, name string, data []byte) string {
	t.Helper()
	assetDir := filepath.Join(dir, id+".assets")
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(assetDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write asset %s: %v", name, err)
	}
	return path
}
