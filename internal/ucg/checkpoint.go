package ucg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/logging"
)

var log = logging.Component("ucg")

// checkpointNode is the persisted shape of one Node: topology only
// (Dependencies/Dependents), never Skeleton/Symbols/HasDoc — those are
// cheap to re-derive from content and expensive to keep fresh in a
// snapshot, so a reload always comes back in at LOD 1 at best, per
// spec.md §4.9's "best-effort reload on startup."
type checkpointNode struct {
	Path         string   `json:"path"`
	LOD          LOD      `json:"lod"`
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
}

type checkpointFile struct {
	Nodes []checkpointNode `json:"nodes"`
}

// checkpointer debounces writes of the graph's topology to a JSON file,
// coalescing bursts of invalidation the same way
// internal/indexing/indexer.go's scheduleFlush/flush pair coalesces
// reparse events: every markDirty call resets a single timer rather than
// writing once per mutation.
type checkpointer struct {
	fs       fsport.FS
	path     string
	debounce time.Duration
	snapshot func() checkpointFile

	mu    sync.Mutex
	timer *time.Timer
}

func newCheckpointer(fs fsport.FS, path string, debounce time.Duration, snapshot func() checkpointFile) *checkpointer {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &checkpointer{fs: fs, path: path, debounce: debounce, snapshot: snapshot}
}

func (c *checkpointer) markDirty() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.write)
}

func (c *checkpointer) write() {
	data, err := json.MarshalIndent(c.snapshot(), "", "  ")
	if err != nil {
		log.Error("marshal checkpoint failed", "error", err)
		return
	}
	if err := c.fs.CreateDir(filepath.Dir(c.path)); err != nil {
		log.Error("create checkpoint dir failed", "error", err)
		return
	}
	if err := c.fs.WriteFile(c.path, data); err != nil {
		log.Error("write checkpoint failed", "error", err)
	}
}

// flushNow cancels any pending debounce timer and writes immediately,
// used on graceful shutdown so the last burst of edits is not lost.
func (c *checkpointer) flushNow() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	c.write()
	return nil
}

// snapshot builds the persisted shape from the live node set. It takes
// g.mu itself, so callers must not hold it; it is invoked by the
// checkpointer from its debounce timer or from a flush at Close.
func (g *Graph) snapshot() checkpointFile {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out checkpointFile
	for _, key := range g.nodes.Keys() {
		n, ok := g.nodes.Peek(key)
		if !ok {
			continue
		}
		out.Nodes = append(out.Nodes, checkpointNode{
			Path:         n.Path,
			LOD:          n.LOD,
			Dependencies: keys(n.Dependencies),
			Dependents:   keys(n.Dependents),
		})
	}
	return out
}

func keys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// reload best-effort restores topology-only node state from a prior
// checkpoint. Any read/parse failure is treated as "no checkpoint" rather
// than fatal, matching spec.md §4.9.
func (g *Graph) reload(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var f checkpointFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error("discarding unreadable checkpoint", "error", err)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, cn := range f.Nodes {
		n := newNode(cn.Path)
		lod := cn.LOD
		if lod > LODTopology {
			lod = LODTopology // skeleton/AST are not persisted, so cap the restore
		}
		n.LOD = lod
		for _, d := range cn.Dependencies {
			n.Dependencies[d] = true
		}
		for _, d := range cn.Dependents {
			n.Dependents[d] = true
		}
		g.nodes.Add(cn.Path, n)
	}
}
