package vectorindex

import (
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"
)

// scored pairs a chunk ID with a distance/score from a backend search.
type scored struct {
	ChunkID string
	Score   float64
}

// backend is the minimal ANN contract the Manager drives; bruteforce and
// hnsw both implement it so Manager.search can swap between them without
// caring which is active.
type backend interface {
	Upsert(id string, vec []float32)
	Remove(id string)
	Search(query []float32, k int) []scored
	Len() int
}

// bruteforceBackend scans every stored vector and ranks by cosine
// similarity. Always correct, used as the `bruteforce` mode and as
// `auto`'s fallback when hnsw search fails.
type bruteforceBackend struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

func newBruteforceBackend() *bruteforceBackend {
	return &bruteforceBackend{vectors: make(map[string][]float32)}
}

func (b *bruteforceBackend) Upsert(id string, vec []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vectors[id] = vec
}

func (b *bruteforceBackend) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.vectors, id)
}

func (b *bruteforceBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.vectors)
}

func (b *bruteforceBackend) Search(query []float32, k int) []scored {
	b.mu.RLock()
	defer b.mu.RUnlock()

	results := make([]scored, 0, len(b.vectors))
	for id, vec := range b.vectors {
		results = append(results, scored{ChunkID: id, Score: cosineSimilarity(query, vec)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// hnswBackend wraps github.com/coder/hnsw behind string IDs. Grounded
// directly on Aman-CERP-amanmcp's internal/store/hnsw.go: string<->uint64
// ID mapping, and lazy deletion (orphan the mapping rather than calling
// graph.Delete) to avoid that library's documented bug deleting the last
// remaining node corrupts the graph.
type hnswBackend struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[uint64]
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

func newHNSWBackend() *hnswBackend {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 20
	g.Ml = 0.25
	return &hnswBackend{
		graph:  g,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}
}

func (h *hnswBackend) Upsert(id string, vec []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.idMap[id]; ok {
		delete(h.keyMap, existing)
		delete(h.idMap, id)
	}
	key := h.nextKey
	h.nextKey++
	h.graph.Add(hnsw.MakeNode(key, vec))
	h.idMap[id] = key
	h.keyMap[key] = id
}

func (h *hnswBackend) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if key, ok := h.idMap[id]; ok {
		delete(h.keyMap, key)
		delete(h.idMap, id)
	}
}

func (h *hnswBackend) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idMap)
}

func (h *hnswBackend) Search(query []float32, k int) []scored {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.graph.Len() == 0 {
		return nil
	}
	nodes := h.graph.Search(query, k)
	out := make([]scored, 0, len(nodes))
	for _, node := range nodes {
		id, ok := h.keyMap[node.Key]
		if !ok {
			continue // orphaned (lazily deleted) node
		}
		dist := h.graph.Distance(query, node.Value)
		out = append(out, scored{ChunkID: id, Score: 1 - dist})
	}
	return out
}
