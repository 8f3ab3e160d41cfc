// Package pathutil implements the Path Normalizer (spec.md §4, "Project-root–
// relative canonicalization, symlink resolution, containment check").
//
// Grounded on the teacher's pkg/pathutil (ToRelative) and
// internal/core/file_service.go path handling, generalized into the single
// normalization seam spec.md §8 (P8) requires: every input path either
// yields a root-relative path or raises SecurityViolation — it must never
// silently return an absolute path outside root.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
)

// Normalizer canonicalizes paths relative to a fixed project root.
type Normalizer struct {
	root string // absolute, symlink-resolved
}

// New builds a Normalizer for root. root is resolved to an absolute,
// symlink-free form once at construction so every subsequent call is a pure
// string operation.
func New(root string) (*Normalizer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindFatal, "resolve project root", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Root may not exist yet (e.g. fresh project) — fall back to the
		// cleaned absolute form rather than failing normalizer construction.
		resolved = filepath.Clean(abs)
	}
	return &Normalizer{root: resolved}, nil
}

// Root returns the normalizer's canonical root directory.
func (n *Normalizer) Root() string { return n.root }

// ToCanonical converts an absolute or relative path to the project-root–
// relative canonical form (forward-slash separators). Any path that
// resolves outside the root — including via symlink or ".." traversal —
// raises SecurityViolation rather than being returned verbatim.
func (n *Normalizer) ToCanonical(path string) (string, error) {
	if path == "" {
		return "", coreerrors.SecurityViolation(path)
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(n.root, path))
	}

	// Resolve symlinks when the target exists; a not-yet-created file (as
	// during a pending write) is normalized on its cleaned form instead.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	rel, err := filepath.Rel(n.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", coreerrors.SecurityViolation(path)
	}
	if rel == "." {
		rel = ""
	}

	return filepath.ToSlash(rel), nil
}

// ToAbsolute converts a canonical root-relative path back to an absolute
// filesystem path for handing to the file system port.
func (n *Normalizer) ToAbsolute(canonical string) string {
	return filepath.Join(n.root, filepath.FromSlash(canonical))
}

// Contains reports whether the resolved absolute form of path falls within
// the root, without raising an error — used by callers that want a bool
// rather than a SecurityViolation, e.g. glob filtering.
func (n *Normalizer) Contains(path string) bool {
	_, err := n.ToCanonical(path)
	return err == nil
}

// EnsureExists creates root if it does not already exist, matching the
// teacher's pattern of lazily creating nested data directories on first use.
func (n *Normalizer) EnsureExists() error {
	return os.MkdirAll(n.root, 0o755)
}
