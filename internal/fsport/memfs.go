package fsport

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS is an in-memory FS used by tests across the indexer, search, and
// edit packages, per spec.md §6 ("An in-memory implementation supports
// tests."). Paths are stored using forward slashes regardless of host OS.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	mtime map[string]time.Time
	now   func() time.Time
}

// NewMem constructs an empty in-memory file system.
func NewMem() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		mtime: make(map[string]time.Time),
		now:   time.Now,
	}
}

var _ FS = (*MemFS)(nil)

func clean(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func (m *MemFS) ReadFile(p string) ([]byte, error) {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemFS) WriteFile(p string, content []byte) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(content))
	copy(buf, content)
	m.files[p] = buf
	m.mtime[p] = m.now()
	return nil
}

func (m *MemFS) Stat(p string) (Info, error) {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if content, ok := m.files[p]; ok {
		return Info{Size: int64(len(content)), Mtime: m.mtime[p], IsDir: false}, nil
	}
	if m.isDir(p) {
		return Info{IsDir: true}, nil
	}
	return Info{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func (m *MemFS) isDir(p string) bool {
	prefix := p
	if prefix != "." && prefix != "" {
		prefix += "/"
	} else {
		prefix = ""
	}
	for fp := range m.files {
		if strings.HasPrefix(fp, prefix) && fp != p {
			return true
		}
	}
	return false
}

func (m *MemFS) ReadDir(p string) ([]Entry, error) {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := p
	if prefix != "." {
		prefix += "/"
	} else {
		prefix = ""
	}

	seen := make(map[string]bool)
	var entries []Entry
	for fp := range m.files {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rest := strings.TrimPrefix(fp, prefix)
		if rest == "" {
			continue
		}
		parts := strings.SplitN(rest, "/", 2)
		name := parts[0]
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, IsDir: len(parts) > 1})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemFS) Exists(p string) bool {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[p]; ok {
		return true
	}
	return m.isDir(p)
}

func (m *MemFS) CreateDir(p string) error {
	// Directories are implicit in MemFS (derived from file paths); nothing
	// to persist, matching the "directories exist iff a file under them
	// exists" model used throughout.
	return nil
}

func (m *MemFS) DeleteFile(p string) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(m.files, p)
	delete(m.mtime, p)
	return nil
}
