package ucg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/parser"
	"github.com/standardbeagle/smart-context/internal/resolver"
	"github.com/standardbeagle/smart-context/internal/symbol"
)

func newTestGraph(t *testing.T, root string, maxNodes int) *Graph {
	t.Helper()
	cfg := config.Default(root)
	port := parser.NewTreeSitterPort()
	ex := symbol.NewExtractor(port)
	res := resolver.New(fsport.NewOS(), root, cfg.Resolver)
	return New(fsport.NewOS(), root, ex, res, port, maxNodes, "", 0)
}

func TestEnsureLOD_TopologyPopulatesDependencies(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.go"), []byte("package main\nfunc Helper() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(`package main

import "./util.go"

func main() { Helper() }
`), 0o644))

	g := newTestGraph(t, root, 100)
	node, err := g.EnsureLOD("main.go", LODTopology, false)
	require.NoError(t, err)
	assert.Equal(t, LODTopology, node.LOD)
	assert.True(t, node.Dependencies["util.go"])
}

func TestEnsureLOD_SkeletonPopulatesSymbols(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package main\nfunc Run() {}\n"), 0o644))

	g := newTestGraph(t, root, 100)
	node, err := g.EnsureLOD("app.go", LODSkeleton, false)
	require.NoError(t, err)
	assert.Equal(t, LODSkeleton, node.LOD)
	assert.NotEmpty(t, node.Symbols)
	assert.NotEmpty(t, node.Skeleton)
}

func TestEnsureLOD_FullASTStoresDocumentOutOfNode(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package main\nfunc Run() {}\n"), 0o644))

	g := newTestGraph(t, root, 100)
	node, err := g.EnsureLOD("app.go", LODFullAST, false)
	require.NoError(t, err)
	assert.Equal(t, LODFullAST, node.LOD)
	assert.True(t, node.HasDoc)
	assert.NotNil(t, g.Document("app.go"))
}

func TestEnsureLOD_AlreadySatisfiedSkipsWork(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package main\nfunc Run() {}\n"), 0o644))

	g := newTestGraph(t, root, 100)
	_, err := g.EnsureLOD("app.go", LODSkeleton, false)
	require.NoError(t, err)

	node, err := g.EnsureLOD("app.go", LODTopology, false)
	require.NoError(t, err)
	assert.Equal(t, LODSkeleton, node.LOD, "already at a higher LOD than requested, should not be demoted")
}

func TestInvalidate_DemotesNodeToUnknown(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package main\nfunc Run() {}\n"), 0o644))

	g := newTestGraph(t, root, 100)
	_, err := g.EnsureLOD("app.go", LODFullAST, false)
	require.NoError(t, err)

	g.Invalidate("app.go", true)
	node := g.peek("app.go")
	require.NotNil(t, node)
	assert.Equal(t, LODUnknown, node.LOD)
	assert.Nil(t, g.Document("app.go"))
}

func TestInvalidate_CascadesToDependentsDownToTopology(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.go"), []byte("package main\nfunc Helper() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(`package main

import "./util.go"

func main() { Helper() }
`), 0o644))

	g := newTestGraph(t, root, 100)
	_, err := g.EnsureLOD("main.go", LODSkeleton, false)
	require.NoError(t, err)
	_, err = g.EnsureLOD("util.go", LODFullAST, false)
	require.NoError(t, err)

	g.Invalidate("util.go", true)

	dependent := g.peek("main.go")
	require.NotNil(t, dependent)
	assert.Equal(t, LODTopology, dependent.LOD)

	invalidated := g.peek("util.go")
	require.NotNil(t, invalidated)
	assert.Equal(t, LODUnknown, invalidated.LOD)
}

func TestRemoveNode_DropsEdgesFromNeighbors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.go"), []byte("package main\nfunc Helper() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(`package main

import "./util.go"

func main() { Helper() }
`), 0o644))

	g := newTestGraph(t, root, 100)
	_, err := g.EnsureLOD("main.go", LODTopology, false)
	require.NoError(t, err)

	g.RemoveNode("util.go")
	assert.Nil(t, g.peek("util.go"))

	dependent := g.peek("main.go")
	require.NotNil(t, dependent)
	assert.False(t, dependent.Dependencies["util.go"])
}

type fakeIndexer struct {
	fn func(paths []string)
}

func (f *fakeIndexer) OnInvalidate(fn func(paths []string)) {
	f.fn = fn
}

func TestAttachToIndexer_InvalidatesExistingRemovesMissing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte("package main\nfunc Run() {}\n"), 0o644))

	g := newTestGraph(t, root, 100)
	_, err := g.EnsureLOD("app.go", LODFullAST, false)
	require.NoError(t, err)

	fs := fsport.NewOS()
	idx := &fakeIndexer{}
	g.AttachToIndexer(idx, fs)

	idx.fn([]string{"app.go", "gone.go"})

	node := g.peek("app.go")
	require.NotNil(t, node)
	assert.Equal(t, LODUnknown, node.LOD)
	assert.Nil(t, g.peek("gone.go"))
}
