package fsport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFS_WriteReadRoundTrip(t *testing.T) {
	fsys := NewMem()
	require.NoError(t, fsys.WriteFile("a/b.go", []byte("package a")))

	got, err := fsys.ReadFile("a/b.go")
	require.NoError(t, err)
	assert.Equal(t, "package a", string(got))
}

func TestMemFS_ReadDirListsChildren(t *testing.T) {
	fsys := NewMem()
	require.NoError(t, fsys.WriteFile("src/a.go", []byte("a")))
	require.NoError(t, fsys.WriteFile("src/sub/b.go", []byte("b")))

	entries, err := fsys.ReadDir("src")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestMemFS_DeleteThenReadFails(t *testing.T) {
	fsys := NewMem()
	require.NoError(t, fsys.WriteFile("a.go", []byte("x")))
	require.NoError(t, fsys.DeleteFile("a.go"))
	_, err := fsys.ReadFile("a.go")
	assert.Error(t, err)
}

func TestOSFileSystem_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	fsys := NewOS()
	target := filepath.Join(dir, "nested", "file.txt")

	require.NoError(t, fsys.WriteFile(target, []byte("hello")))
	got, err := fsys.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	// No leftover temp files in the directory.
	entries, err := fsys.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.txt", entries[0].Name)
}
