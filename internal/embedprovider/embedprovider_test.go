package embedprovider

import (
	"context"
	"math"
	"testing"
)

func TestStaticProvider_DeterministicAcrossCalls(t *testing.T) {
	p := NewStaticProvider()
	a, err := p.EmbedBatch(context.Background(), []string{"func getUserById() {}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.EmbedBatch(context.Background(), []string{"func getUserById() {}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("expected identical embeddings for identical text, diverged at index %d", i)
		}
	}
}

func TestStaticProvider_NormalizedUnitLength(t *testing.T) {
	p := NewStaticProvider()
	vecs, err := p.EmbedBatch(context.Background(), []string{"widgetFactory build method"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sumSq float64
	for _, f := range vecs[0] {
		sumSq += float64(f) * float64(f)
	}
	mag := math.Sqrt(sumSq)
	if mag < 0.99 || mag > 1.01 {
		t.Fatalf("expected unit-length vector, got magnitude %f", mag)
	}
}

func TestStaticProvider_EmptyTextYieldsZeroVector(t *testing.T) {
	p := NewStaticProvider()
	vecs, err := p.EmbedBatch(context.Background(), []string{"   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range vecs[0] {
		if f != 0 {
			t.Fatalf("expected zero vector for blank text, got %v", vecs[0])
		}
	}
}

func TestStaticProvider_Metadata(t *testing.T) {
	p := NewStaticProvider()
	if p.Dims() != staticDims {
		t.Fatalf("expected dims %d, got %d", staticDims, p.Dims())
	}
	if !p.Normalized() {
		t.Fatalf("expected static provider to declare normalized output")
	}
	if !p.Available(context.Background()) {
		t.Fatalf("expected static provider to always be available")
	}
}
