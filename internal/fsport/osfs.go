package fsport

import (
	"fmt"
	"os"
	"path/filepath"
)

// OSFileSystem is the real-disk FS implementation. WriteFile always writes
// to a sibling temp file and renames it into place, the same temp+rename
// pattern the teacher uses for its config writers and spec.md §4.1/§4.8/§4.9
// all require for every persistent-store write.
type OSFileSystem struct{}

// NewOS constructs an OSFileSystem.
func NewOS() *OSFileSystem { return &OSFileSystem{} }

var _ FS = (*OSFileSystem)(nil)

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file into %s: %w", path, err)
	}
	return nil
}

func (OSFileSystem) Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Size: fi.Size(), Mtime: fi.ModTime(), IsDir: fi.IsDir()}, nil
}

func (OSFileSystem) ReadDir(path string) ([]Entry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) CreateDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSFileSystem) DeleteFile(path string) error {
	return os.Remove(path)
}
