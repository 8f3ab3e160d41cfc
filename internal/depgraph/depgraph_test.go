package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_DirectDependencies(t *testing.T) {
	g := New()
	g.Build([]Edge{
		{Source: "a.go", Target: "b.go"},
		{Source: "a.go", Target: "c.go"},
		{Source: "b.go", Target: "c.go"},
	})

	assert.Equal(t, []string{"b.go", "c.go"}, g.GetDependencies("a.go", Outgoing))
	assert.Equal(t, []string{"a.go", "b.go"}, g.GetDependencies("c.go", Incoming))
}

func TestTransitiveDependencies_ExcludesStartAndHandlesCycles(t *testing.T) {
	g := New()
	g.Build([]Edge{
		{Source: "a.go", Target: "b.go"},
		{Source: "b.go", Target: "c.go"},
		{Source: "c.go", Target: "a.go"}, // cycle back to start
	})

	deps := g.GetTransitiveDependencies("a.go", Outgoing)
	assert.Equal(t, []string{"b.go", "c.go"}, deps)
	assert.NotContains(t, deps, "a.go")
}

func TestRemoveFile_DropsEdgesBothDirections(t *testing.T) {
	g := New()
	g.Build([]Edge{
		{Source: "a.go", Target: "b.go"},
		{Source: "b.go", Target: "c.go"},
	})
	g.RemoveFile("b.go")

	assert.Empty(t, g.GetDependencies("a.go", Outgoing))
	assert.Empty(t, g.GetDependencies("c.go", Incoming))
}

func TestClearOutgoing_LeavesIncomingIntact(t *testing.T) {
	g := New()
	g.Build([]Edge{
		{Source: "a.go", Target: "b.go"},
		{Source: "b.go", Target: "c.go"},
	})
	g.ClearOutgoing("b.go")

	assert.Empty(t, g.GetDependencies("b.go", Outgoing))
	assert.Equal(t, []string{"a.go"}, g.GetDependencies("b.go", Incoming))
	assert.Empty(t, g.GetDependencies("c.go", Incoming))
}

func TestGetDependencies_BothDirectionMerges(t *testing.T) {
	g := New()
	g.Build([]Edge{
		{Source: "a.go", Target: "b.go"},
		{Source: "c.go", Target: "b.go"},
	})
	assert.ElementsMatch(t, []string{"a.go", "c.go"}, g.GetDependencies("b.go", Both))
}
