package fingerprint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexinfra/snap/internal/fingerprint"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestBuild_IndexesRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "landing.html", []byte("hello world"))
	writeFile(t, root, "sub/page.html", []byte("nested"))

	tree, err := fingerprint.Build(root)
	require.NoError(t, err)
	require.Equal(t, 2, tree.Size())
}

func TestBuild_ExcludesVideosSubstring(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "videos/movie.mp4", []byte("binary"))
	writeFile(t, root, "landing.html", []byte("hello"))

	tree, err := fingerprint.Build(root)
	require.NoError(t, err)
	require.Equal(t, 1, tree.Size())

	abs, _ := filepath.Abs(filepath.Join(root, "videos/movie.mp4"))
	_, ok := tree.Lookup(abs)
	require.False(t, ok, "videos/ entries must never be indexed")
}

func TestLookup_MissForUnknownPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("a"))

	tree, err := fingerprint.Build(root)
	require.NoError(t, err)

	_, ok := tree.Lookup(filepath.Join(root, "missing.txt"))
	require.False(t, ok)
}

func TestLookup_ReturnsFingerprintForIndexedFile(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", []byte("hello"))
	abs, _ := filepath.Abs(path)

	tree, err := fingerprint.Build(root)
	require.NoError(t, err)

	entry, ok := tree.Lookup(abs)
	require.True(t, ok)
	require.NotZero(t, entry.ContentHash)
	require.NotEmpty(t, entry.LastModified)
}

func TestFree_ClearsEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("a"))

	tree, err := fingerprint.Build(root)
	require.NoError(t, err)
	require.Equal(t, 1, tree.Size())

	tree.Free()
	require.Equal(t, 0, tree.Size())
}
