// Package resolver is the Module Resolver (spec.md §4.3): it maps an
// import specifier relative to a source file to a canonical target path,
// trying in order: the exact path, configured alias prefixes, extension
// candidates in a configured order, and index.<ext> within a resolved
// directory. Unresolved imports are recorded but produce no edge.
//
// Grounded on the teacher's internal/symbollinker/go_resolver.go and
// js_resolver.go (relative-path resolution against the real file system,
// extension-candidate lists, package/index fallthrough), generalized to
// spec.md's single language-agnostic pipeline and the project's
// internal/fsport.FS seam rather than os.Stat/os.ReadFile calls.
package resolver

import (
	"path"
	"strings"

	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/fsport"
)

// Resolution is the outcome of resolving one import specifier.
type Resolution struct {
	Specifier string
	Target    string // canonical path, empty when unresolved
	Resolved  bool
}

// Resolver maps import specifiers to canonical file paths within a project
// root, per the configured alias prefixes and extension order.
type Resolver struct {
	fs   fsport.FS
	root string
	cfg  config.Resolver
}

// New constructs a Resolver rooted at root, using cfg for alias prefixes
// and extension-candidate ordering.
func New(fs fsport.FS, root string, cfg config.Resolver) *Resolver {
	return &Resolver{fs: fs, root: root, cfg: cfg}
}

// Resolve maps specifier (as written in sourceFile) to a canonical path
// relative to the resolver's root. Relative specifiers ("./x", "../x")
// resolve against sourceFile's directory; everything else is tried against
// the configured alias prefixes, then as a root-relative path. Bare
// package-style specifiers that match none of these are left unresolved
// rather than guessed at.
func (r *Resolver) Resolve(sourceFile, specifier string) Resolution {
	res := Resolution{Specifier: specifier}

	candidates := r.baseCandidates(sourceFile, specifier)
	for _, base := range candidates {
		if target, ok := r.tryPath(base); ok {
			res.Target = target
			res.Resolved = true
			return res
		}
	}
	return res
}

// baseCandidates returns the base path(s) worth trying before extension/
// index fallback: the relative-to-source path for relative specifiers, one
// path per matching alias prefix, and the specifier itself as a
// root-relative path (covers absolute-style "/src/x" and bare specifiers
// that happen to sit under root, e.g. "pkg/util").
func (r *Resolver) baseCandidates(sourceFile, specifier string) []string {
	if isRelative(specifier) {
		dir := path.Dir(toSlash(sourceFile))
		return []string{path.Clean(path.Join(dir, specifier))}
	}

	var out []string
	for prefix, target := range r.cfg.AliasPrefixes {
		if strings.HasPrefix(specifier, prefix) {
			rest := strings.TrimPrefix(specifier, prefix)
			out = append(out, path.Clean(path.Join(target, rest)))
		}
	}
	out = append(out, path.Clean(strings.TrimPrefix(specifier, "/")))
	return out
}

// tryPath attempts: the exact path, then each configured extension
// appended to it, then index.<ext> within it if it is a directory.
func (r *Resolver) tryPath(base string) (string, bool) {
	full := r.abs(base)
	if info, err := r.fs.Stat(full); err == nil {
		if !info.IsDir {
			return base, true
		}
		if target, ok := r.tryIndex(base); ok {
			return target, true
		}
		return "", false
	}

	for _, ext := range r.cfg.ExtensionOrder {
		candidate := base + ext
		if info, err := r.fs.Stat(r.abs(candidate)); err == nil && !info.IsDir {
			return candidate, true
		}
	}
	return "", false
}

// tryIndex looks for index.<ext> (in configured order) within the
// directory dir, per spec.md §4.3's "index.<ext> within a directory".
func (r *Resolver) tryIndex(dir string) (string, bool) {
	for _, name := range r.cfg.IndexBasenames {
		candidate := path.Join(dir, name)
		if info, err := r.fs.Stat(r.abs(candidate)); err == nil && !info.IsDir {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) abs(relative string) string {
	return path.Join(toSlash(r.root), relative)
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || specifier == "." || specifier == ".."
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
