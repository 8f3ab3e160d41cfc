// Package embedprovider is the Embedding Provider Port (spec.md §6): a
// small seam the Vector Index Manager and Search Engine call through to
// turn code text into vectors, without either caring whether the
// embeddings come from a real model or a deterministic stand-in.
//
// Grounded on Aman-CERP-amanmcp's internal/embed package: its Embedder
// interface shape (Embed/EmbedBatch/Dimensions/ModelName/Available/Close)
// and its StaticEmbedder (hash-based pseudo-embedding: tokenize with
// camelCase/snake_case splitting, weight tokens and character n-grams,
// hash each into a fixed-width vector via FNV-64, L2-normalize).
// Simplified to this module's narrower contract (providerId/modelId/dims/
// normalize metadata plus a single EmbedBatch call) since the Vector
// Index Manager never needs the amanmcp file's thermal-timeout batch
// bookkeeping (no local model to keep warm).
package embedprovider

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Provider turns text into vectors and declares the metadata the Vector
// Index Manager needs to key its per-(providerId,modelId) indexes and
// decide whether to L2-normalize query vectors before a distance
// comparison, per spec.md §3's "Vectors are L2-normalized when the
// provider declares normalized output."
type Provider interface {
	ProviderID() string
	ModelID() string
	Dims() int
	Normalized() bool

	// EmbedBatch embeds texts in input order. A provider that cannot
	// currently serve requests (e.g. a remote model unreachable) returns
	// an error; callers treat that as a degraded result per spec.md §4.5.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Available reports whether the provider is currently usable, so
	// callers can skip straight to a degraded path instead of waiting on
	// a call that is known to fail.
	Available(ctx context.Context) bool
}

const staticDims = 256

var stopWords = map[string]bool{
	"func": true, "function": true, "def": true, "class": true,
	"return": true, "import": true, "const": true, "var": true,
	"let": true, "int": true, "string": true, "bool": true,
	"void": true, "true": true, "false": true, "nil": true,
	"null": true, "this": true, "self": true, "new": true,
}

// StaticProvider is a deterministic, network-free provider used as the
// default when no embedding model is configured (spec.md's `off`-adjacent
// default: the Vector Index Manager itself may still be in `off` mode,
// but components that want a Provider regardless of mode — e.g. tests —
// get one that always works). Grounded directly on amanmcp's
// StaticEmbedder.
type StaticProvider struct{}

// NewStaticProvider constructs the hash-based fallback provider.
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

func (p *StaticProvider) ProviderID() string { return "static" }
func (p *StaticProvider) ModelID() string    { return "static-v1" }
func (p *StaticProvider) Dims() int          { return staticDims }
func (p *StaticProvider) Normalized() bool   { return true }
func (p *StaticProvider) Available(context.Context) bool { return true }

// EmbedBatch never fails: it is pure local computation.
func (p *StaticProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedOne(text)
	}
	return out, nil
}

func embedOne(text string) []float32 {
	vec := make([]float32, staticDims)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return vec
	}

	for _, tok := range tokenize(trimmed) {
		if stopWords[tok] {
			continue
		}
		vec[hashToIndex(tok, staticDims)] += 0.7
	}
	folded := foldAlphanumeric(trimmed)
	for _, gram := range ngrams(folded, 3) {
		vec[hashToIndex(gram, staticDims)] += 0.3
	}
	return normalize(vec)
}

func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tokens = append(tokens, splitIdentifier(cur.String())...)
		cur.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	lowered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		lowered = append(lowered, strings.ToLower(t))
	}
	return lowered
}

// splitIdentifier splits a single alphanumeric run at camelCase
// boundaries. It does not split on underscores; tokenize's rune filter
// has already separated snake_case parts before this is called.
func splitIdentifier(token string) []string {
	runes := []rune(token)
	var parts []string
	var cur strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				if cur.Len() > 0 {
					parts = append(parts, cur.String())
					cur.Reset()
				}
			}
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func foldAlphanumeric(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ngrams(s string, n int) []string {
	if len(s) < n {
		return nil
	}
	out := make([]string, 0, len(s)-n+1)
	for i := 0; i+n <= len(s); i++ {
		out = append(out, s[i:i+n])
	}
	return out
}

func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	mag := math.Sqrt(sumSq)
	if mag == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / mag)
	}
	return out
}
