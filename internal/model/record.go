package model

import "time"

// SymbolRecord is the per-file persisted unit the Symbol Store owns,
// grounded on the teacher's symbol-record-per-file shape in
// internal/core/symbol.go, generalized to the spec's explicit fields.
type SymbolRecord struct {
	Path        string    `json:"path"`
	ContentHash string    `json:"contentHash"`
	ParsedAt    time.Time `json:"parsedAt"`
	Symbols     []Symbol  `json:"symbols"`
}

// GhostSymbol is a tombstone for a symbol removed by a file change or
// deletion, retained for a bounded window to improve retrieval across
// edits (spec.md glossary: "Ghost symbol").
type GhostSymbol struct {
	Name          string    `json:"name"`
	LastKnownPath string    `json:"lastKnownPath"`
	RemovedAt     time.Time `json:"removedAt"`
	TTL           time.Duration `json:"ttl"`
}

// Expired reports whether the ghost has aged past its retention window.
func (g GhostSymbol) Expired(now time.Time) bool {
	return now.Sub(g.RemovedAt) > g.TTL
}

// DependencyEdge is a directed file->file import edge.
type DependencyEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// VectorChunk is an embedded code chunk stored in the vector index.
type VectorChunk struct {
	ChunkID    string    `json:"chunkId"`
	FilePath   string    `json:"filePath"`
	ByteRange  Range     `json:"byteRange"`
	ProviderID string    `json:"providerId"`
	ModelID    string    `json:"modelId"`
	Dims       int       `json:"dims"`
	Vector     []float32 `json:"vector"`
}
