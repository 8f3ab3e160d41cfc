package ucg

import "github.com/standardbeagle/smart-context/internal/fsport"

// indexerInvalidationSource is the seam the Indexer exposes for the UCG's
// watcher adapter: spec.md §4.9's "a file-watcher adapter ties the
// Indexer's invalidation bus to invalidate/removeNode." A narrow
// consumer-defined interface (rather than importing *indexing.Indexer
// directly) keeps this package free of a hard dependency on the indexer's
// fsnotify/debounce plumbing.
type indexerInvalidationSource interface {
	OnInvalidate(fn func(paths []string))
}

// AttachToIndexer registers a callback on src so every batch of paths the
// Indexer reports as changed demotes (or removes, when the path no longer
// exists) the corresponding UCG nodes. Removal vs. cascade-invalidation is
// distinguished by an existence check against fs, since the Indexer's
// invalidation bus does not currently distinguish "changed" from
// "removed" in its callback payload.
func (g *Graph) AttachToIndexer(src indexerInvalidationSource, fs fsport.FS) {
	src.OnInvalidate(func(paths []string) {
		for _, p := range paths {
			if fs.Exists(g.abs(p)) {
				g.Invalidate(p, true)
			} else {
				g.RemoveNode(p)
			}
		}
	})
}
