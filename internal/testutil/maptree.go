package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// MapTree is an on-disk map working tree laid out as <Root>/<Map>/... for
// integration tests.
type MapTree struct {
	// Root is the directory holding one subdirectory per map.
	Root string
	// Map is the map's base name.
	Map string
	t   *testing.T
}

// NewMapTree creates an empty map directory under a fresh temp root.
//
// Precondition: mapName must be non-empty.
// Postcondition: Returns a MapTree whose map directory exists, or fails the test.
func NewMapTree(t *testing.T, mapName string) *MapTree {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, mapName), 0755); err != nil {
		t.Fatalf("creating map directory: %v", err)
	}
	return &MapTree{Root: root, Map: mapName, t: t}
}

// Dir returns the absolute map directory.
func (m *MapTree) Dir() string {
	return filepath.Join(m.Root, m.Map)
}

// Path returns the absolute path of a slash-separated map-relative name.
func (m *MapTree) Path(rel string) string {
	return filepath.Join(m.Dir(), filepath.FromSlash(rel))
}

// Write creates rel with content, creating parent directories.
//
// Postcondition: rel exists with exactly content, or the test fails.
func (m *MapTree) Write(rel, content string) {
	m.t.Helper()
	p := m.Path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		m.t.Fatalf("creating directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		m.t.Fatalf("writing %s: %v", rel, err)
	}
}

// Touch creates rel with no content.
func (m *MapTree) Touch(rel ...string) {
	m.t.Helper()
	for _, r := range rel {
		m.Write(r, "")
	}
}

// Mkdir creates an empty map-relative directory.
func (m *MapTree) Mkdir(rel string) {
	m.t.Helper()
	if err := os.MkdirAll(m.Path(rel), 0755); err != nil {
		m.t.Fatalf("creating %s: %v", rel, err)
	}
}

// Remove deletes rel.
func (m *MapTree) Remove(rel string) {
	m.t.Helper()
	if err := os.Remove(m.Path(rel)); err != nil {
		m.t.Fatalf("removing %s: %v", rel, err)
	}
}

// Fs returns a filesystem rooted at the map directory.
func (m *MapTree) Fs() afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), m.Dir())
}
