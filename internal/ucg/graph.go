// Package ucg is the Unified Context Graph (spec.md §4.9): a process-wide,
// LRU-bounded map of per-file nodes, each at a level of detail from 0
// (unknown) through 3 (full AST), with cascade invalidation along import
// edges and a debounced JSON checkpoint.
//
// Grounded on the teacher's internal/core/universal_graph.go (LRU-bounded
// node map, dependents/dependencies sets, cascade-invalidation counter —
// captured in SPEC_FULL.md §4.9 before that file's deletion in the mass
// trim of internal/core) scaled down to spec.md's four discrete LOD
// levels. All node access is serialized by one Graph-wide mutex. Debounced checkpoint persistence is
// grounded on internal/indexing/debounced_rebuilder.go's time.AfterFunc
// coalescing pattern (same file, also captured in SPEC_FULL.md before
// deletion), reapplied to a ucg.json write instead of a reference-graph
// rebuild — internal/indexing/indexer.go's own scheduleFlush/flush pair,
// still in the tree, uses the identical AfterFunc-reset idiom.
package ucg

import (
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/model"
	"github.com/standardbeagle/smart-context/internal/parser"
	"github.com/standardbeagle/smart-context/internal/resolver"
	"github.com/standardbeagle/smart-context/internal/symbol"
)

// LOD is a node's level of detail, spec.md §4.9 / GLOSSARY: 0 unknown, 1
// topology, 2 skeleton, 3 full AST.
type LOD int

const (
	LODUnknown  LOD = 0
	LODTopology LOD = 1
	LODSkeleton LOD = 2
	LODFullAST  LOD = 3
)

// Node is one file's entry in the graph. Dependencies/Dependents are sets
// of canonical paths, populated at LOD >= 1. Skeleton and Symbols are
// populated at LOD >= 2. At LOD 3 the node's AST lives in the Graph's doc
// cache, keyed by Path — the node itself carries only a HasDoc flag, per
// spec.md §4.9: "store only the document id; the AST lives in the
// parser's cache."
type Node struct {
	Path         string
	LOD          LOD
	Dependencies map[string]bool
	Dependents   map[string]bool
	Skeleton     string
	Symbols      []model.Symbol
	HasDoc       bool
}

func newNode(path string) *Node {
	return &Node{
		Path:         path,
		Dependencies: make(map[string]bool),
		Dependents:   make(map[string]bool),
	}
}

// Graph is the Unified Context Graph. One Graph is process-wide; callers
// reach it through a single shared instance.
type Graph struct {
	fs        fsport.FS
	root      string
	extractor *symbol.Extractor
	resolver  *resolver.Resolver
	parser    parser.Port
	maxNodes  int

	mu       sync.Mutex
	nodes    *lru.Cache[string, *Node]
	docs     map[string]*parser.Document // path -> live AST, the "parser's cache"
	cascades uint64

	checkpoint *checkpointer
}

// New constructs a Graph bounded at maxNodes (spec.md §6 default 5000).
// checkpointPath is where the debounced JSON snapshot is written; an empty
// path disables persistence.
func New(fs fsport.FS, root string, extractor *symbol.Extractor, res *resolver.Resolver, p parser.Port, maxNodes int, checkpointPath string, debounce time.Duration) *Graph {
	if maxNodes <= 0 {
		maxNodes = 5000
	}
	g := &Graph{
		fs:        fs,
		root:      root,
		extractor: extractor,
		resolver:  res,
		parser:    p,
		maxNodes:  maxNodes,
		docs:      make(map[string]*parser.Document),
	}
	cache, _ := lru.NewWithEvict[string, *Node](maxNodes, g.onEvict)
	g.nodes = cache
	if checkpointPath != "" {
		g.checkpoint = newCheckpointer(fs, checkpointPath, debounce, g.snapshot)
		g.reload(checkpointPath)
	}
	return g
}

// onEvict runs when the LRU drops the least-recently-used node and
// disposes that node's live AST document, if any. It does not remove the
// evicted path from neighboring nodes' Dependencies/Dependents sets.
func (g *Graph) onEvict(path string, _ *Node) {
	if doc, ok := g.docs[path]; ok {
		doc.Dispose()
		delete(g.docs, path)
	}
	// Neighbors keep dangling path strings in their sets; the next access
	// to them simply finds a stale entry that no longer resolves to a
	// live node, which ensureLOD/invalidate already tolerate via Peek's
	// ok-check.
}

// abs resolves a canonical (root-relative) path to the filesystem path the
// FS port expects, matching internal/indexing/indexer.go's
// filepath.Join(ix.root, rel) convention.
func (g *Graph) abs(path string) string {
	return filepath.Join(g.root, path)
}

// getOrCreate returns path's node, marking it most recently used, or
// creates and adds an empty LOD-0 node if absent. Callers must hold g.mu.
func (g *Graph) getOrCreate(path string) *Node {
	if n, ok := g.nodes.Get(path); ok {
		return n
	}
	n := newNode(path)
	g.nodes.Add(path, n)
	return n
}

// peek returns path's node without affecting LRU recency, or nil.
func (g *Graph) peek(path string) *Node {
	n, ok := g.nodes.Peek(path)
	if !ok {
		return nil
	}
	return n
}

// EnsureLOD promotes path's node to at least minLOD, per spec.md §4.9's
// staged promotion (0→1 topology scan, 1→2 skeleton, 2→3 full AST). force
// re-runs every stage up to minLOD even if already satisfied, for callers
// that know the underlying file changed without an invalidate() call
// having been made yet.
func (g *Graph) EnsureLOD(path string, minLOD LOD, force bool) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.getOrCreate(path)
	if !force && node.LOD >= minLOD {
		return node, nil
	}

	content, err := g.fs.ReadFile(g.abs(path))
	if err != nil {
		return nil, err
	}

	start := node.LOD
	if force {
		start = LODUnknown
	}

	if start < LODTopology && minLOD >= LODTopology {
		if err := g.promoteToTopology(node, content); err != nil {
			return nil, err
		}
		node.LOD = LODTopology
	}
	if node.LOD < LODSkeleton && minLOD >= LODSkeleton {
		if err := g.promoteToSkeleton(node, content); err != nil {
			return nil, err
		}
		node.LOD = LODSkeleton
	}
	if node.LOD < LODFullAST && minLOD >= LODFullAST {
		if err := g.promoteToFullAST(node, path, content); err != nil {
			return nil, err
		}
		node.LOD = LODFullAST
	}

	g.checkpoint.markDirty()
	return node, nil
}

// promoteToTopology runs the extractor (the teacher's architecture has no
// lighter imports-only pass, so this reuses the same tree-sitter query set
// the full extractor uses and keeps only the import edges — see
// DESIGN.md's internal/ucg entry) and resolves each import against the
// Module Resolver, replacing the node's outgoing dependency set and fixing
// up reverse dependents edges on the targets, mirroring
// internal/indexing/indexer.go's updateEdges.
func (g *Graph) promoteToTopology(node *Node, content []byte) error {
	symbols, err := g.extractor.Extract(node.Path, content)
	if err != nil {
		return err
	}
	for dep := range node.Dependencies {
		if target := g.peek(dep); target != nil {
			delete(target.Dependents, node.Path)
		}
	}
	node.Dependencies = make(map[string]bool)
	for _, sym := range symbols {
		if sym.Tag != model.TagImport || sym.Imp == nil {
			continue
		}
		res := g.resolver.Resolve(node.Path, sym.Imp.Source)
		if !res.Resolved {
			continue
		}
		node.Dependencies[res.Target] = true
		target := g.getOrCreate(res.Target)
		target.Dependents[node.Path] = true
	}
	return nil
}

func (g *Graph) promoteToSkeleton(node *Node, content []byte) error {
	symbols, err := g.extractor.Extract(node.Path, content)
	if err != nil {
		return err
	}
	node.Symbols = symbols
	node.Skeleton = symbol.Skeleton(content, symbols)
	return nil
}

func (g *Graph) promoteToFullAST(node *Node, path string, content []byte) error {
	doc, err := g.parser.ParseFile(path, content)
	if err != nil {
		return err
	}
	if old, ok := g.docs[path]; ok {
		old.Dispose()
	}
	g.docs[path] = doc
	node.HasDoc = true
	return nil
}

// Document returns the live AST document for path if it is currently at
// LOD 3, or nil otherwise.
func (g *Graph) Document(path string) *parser.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.docs[path]
}

// Invalidate demotes path to LOD 0 and, when cascade is true, demotes
// every node that depends on path (i.e. every file that imports it, not
// necessarily transitively) from LOD >= 2 down to LOD 1, per spec.md
// §4.9. Each call that finds path increments the cascade counter once,
// however many dependents it demotes.
func (g *Graph) Invalidate(path string, cascade bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.peek(path)
	if node == nil {
		return
	}
	g.demoteToUnknown(node)
	g.cascades++

	if !cascade {
		g.checkpoint.markDirty()
		return
	}
	for dependent := range node.Dependents {
		depNode := g.peek(dependent)
		if depNode != nil && depNode.LOD >= LODSkeleton {
			g.demoteToTopology(depNode)
		}
	}
	g.checkpoint.markDirty()
}

func (g *Graph) demoteToUnknown(node *Node) {
	node.LOD = LODUnknown
	node.Skeleton = ""
	node.Symbols = nil
	if doc, ok := g.docs[node.Path]; ok {
		doc.Dispose()
		delete(g.docs, node.Path)
	}
	node.HasDoc = false
}

func (g *Graph) demoteToTopology(node *Node) {
	node.LOD = LODTopology
	node.Skeleton = ""
	node.Symbols = nil
	if doc, ok := g.docs[node.Path]; ok {
		doc.Dispose()
		delete(g.docs, node.Path)
	}
	node.HasDoc = false
}

// RemoveNode fully drops path from the graph: its node, its edges into
// neighbors, and any live AST document. Used when a file is deleted, via
// the watcher adapter's hook into the Indexer's invalidation bus.
func (g *Graph) RemoveNode(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.peek(path)
	if node != nil {
		for dep := range node.Dependencies {
			if target := g.peek(dep); target != nil {
				delete(target.Dependents, path)
			}
		}
		for dependent := range node.Dependents {
			if src := g.peek(dependent); src != nil {
				delete(src.Dependencies, path)
			}
		}
	}
	if doc, ok := g.docs[path]; ok {
		doc.Dispose()
		delete(g.docs, path)
	}
	g.nodes.Remove(path)
	g.checkpoint.markDirty()
}

// CascadeCount returns the number of invalidations recorded so far,
// primarily for tests and diagnostics.
func (g *Graph) CascadeCount() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cascades
}

// Len returns the number of nodes currently held.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes.Len()
}

// Close stops the checkpoint debounce timer and flushes any pending
// checkpoint synchronously.
func (g *Graph) Close() error {
	if g.checkpoint == nil {
		return nil
	}
	return g.checkpoint.flushNow()
}
