package search

import (
	"path/filepath"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// largeFileBytes is the threshold spec.md §4.6 references: "very large
// files (> configured threshold) receive a multiplicative penalty ≤0.9 on
// all signals." Kept as a package constant rather than a config field since
// spec.md does not list it among the §6 recognized options.
const largeFileBytes = 512 * 1024

const largeFilePenalty = 0.9

func sizePenalty(size int64) float64 {
	if size > largeFileBytes {
		return largeFilePenalty
	}
	return 1.0
}

// normalizeTrigramScore reduces a raw trigram match count to [0,1] against
// the query's total trigram count, capping at 1.0. Grounded on the
// teacher's filterAndReturnCandidates length-normalization: matches beyond
// the query's own trigram count cannot make the signal more confident.
func normalizeTrigramScore(matches, queryTrigrams int) float64 {
	if queryTrigrams <= 0 {
		return 0
	}
	v := float64(matches) / float64(queryTrigrams)
	if v > 1 {
		v = 1
	}
	return v
}

// normalizeFilenameScore scores a basename match per spec.md §4.6's worked
// example: exact basename ≈1.0, partial basename ≈0.5, in-path match ≈0.2.
// Grounded on the teacher's internal/semantic/fuzzy_matcher.go Jaro-Winkler
// wrapper (github.com/hbollon/go-edlib), reused here for the "partial"
// tier instead of a hand-rolled substring-ratio heuristic.
func normalizeFilenameScore(path, query string) float64 {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	baseNoExt := strings.TrimSuffix(baseLower, filepath.Ext(baseLower))
	qLower := strings.ToLower(strings.TrimSpace(query))
	if qLower == "" {
		return 0
	}

	if baseLower == qLower || baseNoExt == qLower {
		return 1.0
	}

	score, err := edlib.StringsSimilarity(baseNoExt, qLower, edlib.JaroWinkler)
	if err == nil && float64(score) >= 0.80 {
		return 0.5
	}

	if strings.Contains(strings.ToLower(path), qLower) {
		return 0.2
	}
	return 0
}

// normalizeCommentScore scores a symbol's doc comment against query using
// Porter2-stemmed token overlap, grounded on the teacher's
// internal/semantic/stemmer.go (github.com/surgebase/porter2) feeding its
// semantic_search_index.go comment index.
func normalizeCommentScore(doc, query string) float64 {
	docTokens := stemmedTokens(doc)
	if len(docTokens) == 0 {
		return 0
	}
	queryTokens := stemmedTokens(query)
	if len(queryTokens) == 0 {
		return 0
	}

	docSet := make(map[string]bool, len(docTokens))
	for _, t := range docTokens {
		docSet[t] = true
	}

	hits := 0
	for _, t := range queryTokens {
		if docSet[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

func stemmedTokens(text string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		if len(f) < 2 {
			continue
		}
		out = append(out, porter2.Stem(strings.ToLower(f)))
	}
	return out
}

// normalizeVectorScore maps a cosine similarity (already in [-1,1]) to
// [0,1]. Cosine similarity from the Vector Index Manager's backends is
// typically non-negative for normalized embeddings, but the clamp keeps
// the signal well-formed regardless of provider.
func normalizeVectorScore(cosineSimilarity float64) float64 {
	v := (cosineSimilarity + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// levenshteinSimilarity is not currently called within this package (no
// signal needs raw edit distance yet) but is kept alongside
// normalizeFilenameScore since the Edit Resolver (spec.md §4.7) uses the
// identical go-edlib wrapper for its own fuzzyMode=levenshtein candidate
// generation; duplicated rather than exported cross-package to keep this
// package's only dependency direction inward from config/store/model.
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := edlib.LevenshteinDistance(a, b)
	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// snippet extracts up to maxLen bytes of preview around byte offset start
// in content, widened to whole lines.
func snippet(content []byte, start, end, maxLen int) string {
	if maxLen <= 0 || len(content) == 0 {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > len(content) {
		end = len(content)
	}
	lineStart := start
	for lineStart > 0 && content[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := end
	for lineEnd < len(content) && content[lineEnd] != '\n' {
		lineEnd++
	}
	out := content[lineStart:lineEnd]
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return string(out)
}
