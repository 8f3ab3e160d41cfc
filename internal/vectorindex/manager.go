package vectorindex

import (
	"context"
	"sync"
	"time"

	"github.com/standardbeagle/smart-context/internal/config"
)

// Result is one ranked match from Search. Whether the results came from
// a degraded path (auto mode's bruteforce fallback after hnsw failed, or
// hnsw unavailable at all) is reported by Search's second return value,
// not per Result.
type Result struct {
	ChunkID  string
	FilePath string
	Score    float64
}

// Metrics are the observability fields spec.md §4.5 asks the Vector Index
// Manager to expose.
type Metrics struct {
	BuildMs int64
	QueryMs int64
	Size    int
	Backend string
}

// Manager owns one (providerId, modelId) vector index: upsert/remove of
// embedded chunks, k-NN search across the configured backend, and a
// root-fingerprint-driven rebuild policy.
type Manager struct {
	mu sync.RWMutex

	mode    config.VectorIndexMode
	rebuild config.VectorIndexRebuild

	providerID string
	modelID    string
	dims       int

	chunks map[string]Chunk // chunkID -> chunk, for FilePath lookups and re-upsert on reindex

	bruteforce *bruteforceBackend
	hnsw       *hnswBackend // nil until first use when mode is hnsw/auto

	fingerprint uint64 // stored root-fingerprint this index was built against
	degraded    bool
	lastMetrics Metrics
}

// New constructs a Manager for one provider/model pair.
func New(cfg config.VectorIndex, providerID, modelID string, dims int) *Manager {
	return &Manager{
		mode:       cfg.Mode,
		rebuild:    cfg.Rebuild,
		providerID: providerID,
		modelID:    modelID,
		dims:       dims,
		chunks:     make(map[string]Chunk),
		bruteforce: newBruteforceBackend(),
	}
}

// UpsertEmbedding indexes or replaces one chunk's embedding, per spec.md
// §4.5's upsertEmbedding operation.
func (m *Manager) UpsertEmbedding(c Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == config.VectorModeOff {
		return
	}
	m.chunks[c.ChunkID] = c
	m.bruteforce.Upsert(c.ChunkID, c.Vector)
	if m.mode == config.VectorModeHNSW || m.mode == config.VectorModeAuto {
		m.hnswBackendLocked().Upsert(c.ChunkID, c.Vector)
	}
}

// RemoveChunk drops one embedded chunk, per spec.md §4.5's removeChunk.
func (m *Manager) RemoveChunk(chunkID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, chunkID)
	m.bruteforce.Remove(chunkID)
	if m.hnsw != nil {
		m.hnsw.Remove(chunkID)
	}
}

// RemoveFile drops every chunk belonging to path, used when the
// Incremental Indexer invalidates a file.
func (m *Manager) RemoveFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.FilePath == path {
			delete(m.chunks, id)
			m.bruteforce.Remove(id)
			if m.hnsw != nil {
				m.hnsw.Remove(id)
			}
		}
	}
}

func (m *Manager) hnswBackendLocked() *hnswBackend {
	if m.hnsw == nil {
		m.hnsw = newHNSWBackend()
		for id, c := range m.chunks {
			m.hnsw.Upsert(id, c.Vector)
		}
	}
	return m.hnsw
}

// Search runs k-NN per the configured mode. `off` returns nil. `hnsw`
// searches hnsw only. `bruteforce` always scans every vector. `auto`
// prefers hnsw, falling back to bruteforce (and reporting degraded=true)
// when hnsw returns no usable backend, per spec.md §4.5: "Search failures
// fall back to bruteforce under auto; otherwise surface a degraded=true
// result."
func (m *Manager) Search(_ context.Context, query []float32, k int) (results []Result, degraded bool) {
	start := time.Now()
	m.mu.Lock()
	defer func() {
		m.lastMetrics.QueryMs = time.Since(start).Milliseconds()
		m.mu.Unlock()
	}()

	var raw []scored
	switch m.mode {
	case config.VectorModeOff:
		return nil, false
	case config.VectorModeBruteforce:
		raw = m.bruteforce.Search(query, k)
		m.lastMetrics.Backend = "bruteforce"
	case config.VectorModeHNSW:
		raw = m.hnswBackendLocked().Search(query, k)
		degraded = len(raw) == 0 && len(m.chunks) > 0
		m.lastMetrics.Backend = "hnsw"
	case config.VectorModeAuto:
		raw = m.hnswBackendLocked().Search(query, k)
		m.lastMetrics.Backend = "hnsw"
		if len(raw) == 0 && len(m.chunks) > 0 {
			raw = m.bruteforce.Search(query, k)
			m.lastMetrics.Backend = "bruteforce"
			degraded = true
		}
	}

	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		c, ok := m.chunks[r.ChunkID]
		if !ok {
			continue
		}
		out = append(out, Result{ChunkID: r.ChunkID, FilePath: c.FilePath, Score: r.Score})
	}
	m.degraded = degraded
	m.lastMetrics.Size = len(m.chunks)
	return out, degraded
}

// NeedsRebuild reports whether the stored fingerprint mismatches
// currentFingerprint, per spec.md §4.5's `auto` rebuild policy ("rebuild
// when the stored root-fingerprint hash mismatches the current
// workspace"). `manual` and `on_start` ignore the fingerprint: `manual`
// never auto-rebuilds, `on_start` always rebuilds once at startup
// (the caller is expected to call Rebuild unconditionally in that case).
func (m *Manager) NeedsRebuild(currentFingerprint uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rebuild != config.VectorRebuildAuto {
		return false
	}
	return m.fingerprint != currentFingerprint
}

// SetFingerprint records the root-fingerprint an index build was run
// against, so a future NeedsRebuild call can compare against it.
func (m *Manager) SetFingerprint(fp uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fingerprint = fp
}

// Rebuild discards the hnsw backend and re-adds every known chunk,
// recording how long the rebuild took in Metrics.BuildMs.
func (m *Manager) Rebuild() {
	start := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hnsw = nil
	if m.mode == config.VectorModeHNSW || m.mode == config.VectorModeAuto {
		m.hnswBackendLocked()
	}
	m.lastMetrics.BuildMs = time.Since(start).Milliseconds()
}

// Metrics returns the most recently recorded observability snapshot.
func (m *Manager) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastMetrics
}

// Degraded reports whether the most recent Search fell back from its
// preferred backend.
func (m *Manager) Degraded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.degraded
}

// Len returns the number of chunks currently indexed.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}
