package vectorindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/model"
)

func testChunk(path string, vec []float32) Chunk {
	r := model.Range{StartByte: 0, EndByte: len(vec)}
	return Chunk{
		ChunkID:    ChunkID(path, r, "static", "static-v1"),
		FilePath:   path,
		ByteRange:  r,
		ProviderID: "static",
		ModelID:    "static-v1",
		Dims:       len(vec),
		Vector:     vec,
	}
}

func TestSearch_OffModeReturnsNothing(t *testing.T) {
	m := New(config.VectorIndex{Mode: config.VectorModeOff}, "static", "static-v1", 3)
	m.UpsertEmbedding(testChunk("a.go", []float32{1, 0, 0}))

	results, degraded := m.Search(context.Background(), []float32{1, 0, 0}, 5)
	if results != nil || degraded {
		t.Fatalf("expected no results in off mode, got %+v degraded=%v", results, degraded)
	}
}

func TestSearch_BruteforceRanksByCosineSimilarity(t *testing.T) {
	m := New(config.VectorIndex{Mode: config.VectorModeBruteforce}, "static", "static-v1", 2)
	m.UpsertEmbedding(testChunk("same.go", []float32{1, 0}))
	m.UpsertEmbedding(testChunk("orthogonal.go", []float32{0, 1}))

	results, degraded := m.Search(context.Background(), []float32{1, 0}, 5)
	if degraded {
		t.Fatalf("bruteforce mode should never report degraded")
	}
	if len(results) != 2 || results[0].FilePath != "same.go" {
		t.Fatalf("expected same.go ranked first, got %+v", results)
	}
}

func TestSearch_HNSWMode(t *testing.T) {
	m := New(config.VectorIndex{Mode: config.VectorModeHNSW}, "static", "static-v1", 2)
	m.UpsertEmbedding(testChunk("a.go", []float32{1, 0}))
	m.UpsertEmbedding(testChunk("b.go", []float32{0, 1}))

	results, _ := m.Search(context.Background(), []float32{1, 0}, 5)
	if len(results) == 0 {
		t.Fatalf("expected hnsw search to return matches")
	}
}

func TestRemoveChunk_NoLongerMatches(t *testing.T) {
	m := New(config.VectorIndex{Mode: config.VectorModeBruteforce}, "static", "static-v1", 2)
	c := testChunk("a.go", []float32{1, 0})
	m.UpsertEmbedding(c)
	m.RemoveChunk(c.ChunkID)

	results, _ := m.Search(context.Background(), []float32{1, 0}, 5)
	if len(results) != 0 {
		t.Fatalf("expected no results after removal, got %+v", results)
	}
}

func TestNeedsRebuild_OnlyUnderAutoPolicy(t *testing.T) {
	m := New(config.VectorIndex{Mode: config.VectorModeBruteforce, Rebuild: config.VectorRebuildManual}, "static", "static-v1", 2)
	if m.NeedsRebuild(42) {
		t.Fatalf("manual rebuild policy should never report NeedsRebuild")
	}

	m2 := New(config.VectorIndex{Mode: config.VectorModeBruteforce, Rebuild: config.VectorRebuildAuto}, "static", "static-v1", 2)
	m2.SetFingerprint(1)
	if !m2.NeedsRebuild(2) {
		t.Fatalf("expected mismatch fingerprint to trigger rebuild under auto policy")
	}
	if m2.NeedsRebuild(1) {
		t.Fatalf("expected matching fingerprint to not trigger rebuild")
	}
}

func TestSaveLoad_RoundTripsChunksAndGraph(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "vectors.meta")
	indexPath := filepath.Join(dir, "vectors.hnsw")

	m := New(config.VectorIndex{Mode: config.VectorModeHNSW}, "static", "static-v1", 2)
	m.UpsertEmbedding(testChunk("a.go", []float32{1, 0}))
	if err := m.Save(metaPath, indexPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := New(config.VectorIndex{Mode: config.VectorModeHNSW}, "", "", 0)
	if err := loaded.Load(metaPath, indexPath); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected 1 chunk after load, got %d", loaded.Len())
	}

	results, _ := loaded.Search(context.Background(), []float32{1, 0}, 5)
	if len(results) != 1 || results[0].FilePath != "a.go" {
		t.Fatalf("expected a.go to round-trip through save/load, got %+v", results)
	}
}
