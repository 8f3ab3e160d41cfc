package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/fsport"
)

func newTestFS() fsport.FS {
	fs := fsport.NewMem()
	_ = fs.WriteFile("src/app.ts", []byte("// app"))
	_ = fs.WriteFile("src/util/helpers.ts", []byte("// helpers"))
	_ = fs.WriteFile("src/util/index.ts", []byte("// index"))
	_ = fs.WriteFile("src/exact.js", []byte("// exact"))
	return fs
}

func TestResolve_ExactPath(t *testing.T) {
	r := New(newTestFS(), ".", config.Default(".").Resolver)
	res := r.Resolve("src/app.ts", "./exact.js")
	require.True(t, res.Resolved)
	assert.Equal(t, "src/exact.js", res.Target)
}

func TestResolve_ExtensionCandidate(t *testing.T) {
	r := New(newTestFS(), ".", config.Default(".").Resolver)
	res := r.Resolve("src/app.ts", "./util/helpers")
	require.True(t, res.Resolved)
	assert.Equal(t, "src/util/helpers.ts", res.Target)
}

func TestResolve_IndexFallback(t *testing.T) {
	r := New(newTestFS(), ".", config.Default(".").Resolver)
	res := r.Resolve("src/app.ts", "./util")
	require.True(t, res.Resolved)
	assert.Equal(t, "src/util/index.ts", res.Target)
}

func TestResolve_AliasPrefix(t *testing.T) {
	cfg := config.Default(".").Resolver
	cfg.AliasPrefixes = map[string]string{"@/": "src/"}
	r := New(newTestFS(), ".", cfg)
	res := r.Resolve("src/app.ts", "@/util/helpers")
	require.True(t, res.Resolved)
	assert.Equal(t, "src/util/helpers.ts", res.Target)
}

func TestResolve_Unresolved(t *testing.T) {
	r := New(newTestFS(), ".", config.Default(".").Resolver)
	res := r.Resolve("src/app.ts", "./missing")
	assert.False(t, res.Resolved)
	assert.Empty(t, res.Target)
}

func TestResolve_BarePackageSpecifierUnresolved(t *testing.T) {
	r := New(newTestFS(), ".", config.Default(".").Resolver)
	res := r.Resolve("src/app.ts", "react")
	assert.False(t, res.Resolved)
}
