// Package vectorindex is the Vector Index Manager (spec.md §4.5): an
// optional ANN index over embedded code chunks, keyed per
// (providerId, modelId), with a bruteforce fallback and a configurable
// rebuild policy.
//
// Not present in the teacher (lci ships no vector mode at all); grounded
// on the sibling pack repos that do: Aman-CERP-amanmcp's
// internal/store/hnsw.go (github.com/coder/hnsw wrapping, lazy deletion
// to dodge a last-node-delete bug in that library, gob-encoded ID-mapping
// metadata alongside the library's own Export/Import graph payload, both
// written through temp+rename).
package vectorindex

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/smart-context/internal/model"
)

// Chunk is one embedded span of a file, per spec.md §3's Vector chunk.
type Chunk struct {
	ChunkID    string
	FilePath   string
	ByteRange  model.Range
	ProviderID string
	ModelID    string
	Dims       int
	Vector     []float32
}

// ChunkID computes H(filePath||byteRange||providerId||modelId), the
// stable identity spec.md §3 assigns a vector chunk, as an xxhash digest
// (the teacher's own non-cryptographic fast-hash choice, reused here for
// the same kind of identity-hash concern it serves in
// internal/store.Record.FastHash).
func ChunkID(filePath string, r model.Range, providerID, modelID string) string {
	h := xxhash.New()
	_, _ = h.WriteString(filePath)
	_, _ = h.WriteString("|")
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.StartByte))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(r.EndByte))
	_, _ = h.Write(buf[:])
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(providerID)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(modelID)
	return hexDigest(h.Sum64())
}

func hexDigest(v uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}
