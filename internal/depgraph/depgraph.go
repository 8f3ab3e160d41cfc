// Package depgraph is the Dependency Graph (spec.md §4.3): a directed
// file-to-file import graph maintaining outgoing and incoming adjacency
// sets per file, with getDependencies, getTransitiveDependencies (BFS with
// a visited set), and a full build() from a flat edge list.
//
// Grounded on the teacher's internal/analysis/dependency_tracker.go
// (traverseDependencies/traverseDependents: visited-map BFS/DFS over a
// symbol graph, FileGraphNode adjacency shape) generalized from its
// symbol-level call graph down to spec.md's simpler file-level import
// graph, and internal/core/import_resolver.go's BuildImportGraph for the
// "rebuild from scratch on demand" entry point shape.
package depgraph

import "sort"

// Direction selects which adjacency set getDependencies/
// getTransitiveDependencies traverses.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

// Edge is one resolved import: source imports target.
type Edge struct {
	Source string
	Target string
}

// Graph holds outgoing and incoming adjacency sets per file.
type Graph struct {
	out map[string]map[string]bool
	in  map[string]map[string]bool
}

// New constructs an empty graph.
func New() *Graph {
	return &Graph{
		out: make(map[string]map[string]bool),
		in:  make(map[string]map[string]bool),
	}
}

// Build performs a full rebuild from edges, discarding all prior state, per
// spec.md §4.3's build() "invoked on initial scan and on explicit reindex".
func (g *Graph) Build(edges []Edge) {
	g.out = make(map[string]map[string]bool, len(edges))
	g.in = make(map[string]map[string]bool, len(edges))
	for _, e := range edges {
		g.addEdge(e.Source, e.Target)
	}
}

// AddEdge records source → target, used for incremental updates between
// full rebuilds (a single file's imports changed).
func (g *Graph) AddEdge(source, target string) {
	g.addEdge(source, target)
}

func (g *Graph) addEdge(source, target string) {
	if g.out[source] == nil {
		g.out[source] = make(map[string]bool)
	}
	g.out[source][target] = true
	if g.in[target] == nil {
		g.in[target] = make(map[string]bool)
	}
	g.in[target][source] = true
	// Ensure every node appears even with zero edges in the other set.
	if g.in[source] == nil {
		g.in[source] = make(map[string]bool)
	}
	if g.out[target] == nil {
		g.out[target] = make(map[string]bool)
	}
}

// ClearOutgoing drops file's outgoing edges only, leaving incoming edges
// (other files' imports of file) untouched. Used when re-deriving one
// file's own import list without disturbing the rest of the graph.
func (g *Graph) ClearOutgoing(file string) {
	for target := range g.out[file] {
		delete(g.in[target], file)
	}
	g.out[file] = make(map[string]bool)
}

// RemoveFile drops file and every edge touching it, used when a file is
// deleted or its imports are about to be re-derived.
func (g *Graph) RemoveFile(file string) {
	for target := range g.out[file] {
		delete(g.in[target], file)
	}
	for source := range g.in[file] {
		delete(g.out[source], file)
	}
	delete(g.out, file)
	delete(g.in, file)
}

// GetDependencies returns the direct edges for file in the requested
// direction, sorted for deterministic output.
func (g *Graph) GetDependencies(file string, direction Direction) []string {
	var set map[string]bool
	switch direction {
	case Outgoing:
		set = g.out[file]
	case Incoming:
		set = g.in[file]
	case Both:
		merged := make(map[string]bool)
		for k := range g.out[file] {
			merged[k] = true
		}
		for k := range g.in[file] {
			merged[k] = true
		}
		set = merged
	}
	return sortedKeys(set)
}

// GetTransitiveDependencies performs a BFS over direction's adjacency sets
// starting from file, excluding file itself from the result. Cycles are
// handled by the visited set, per spec.md §4.3's P3 invariant.
func (g *Graph) GetTransitiveDependencies(file string, direction Direction) []string {
	visited := map[string]bool{file: true}
	queue := g.GetDependencies(file, direction)
	for _, n := range queue {
		visited[n] = true
	}

	var result []string
	for i := 0; i < len(queue); i++ {
		node := queue[i]
		result = append(result, node)
		for _, next := range g.GetDependencies(node, direction) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	sort.Strings(result)
	return result
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
