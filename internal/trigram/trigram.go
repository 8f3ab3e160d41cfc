// Package trigram is the Trigram Index (spec.md §4.4): a case-folded
// inverted trigram index used to shortlist candidate files before the
// Search Engine's more expensive scoring passes. Content is lowercased
// before extraction so search is case-insensitive by default; camelCase
// and snake_case identifier boundaries are additionally split into
// subwords and their trigrams folded into the same postings, so a query
// like "user" matching "getUserById" also counts the trigrams of its
// "User" subword.
//
// Grounded on the teacher's internal/core/trigram.go: extractSimpleTrigrams's
// ASCII fast path (byte bit-shift packing into a single uint32 per
// trigram) and filterAndReturnCandidates's length-normalized match-count
// threshold, adapted from its FileID/offset bookkeeping down to this
// package's simpler path → count postings (the Incremental Indexer, not
// the Trigram Index, owns offset/line tracking here). The snapshot-swap
// update pattern is grounded on internal/indexing/master_index.go's
// updateSnapshotAtomic: RemoveFile then Add always run under the same
// lock so a reader never observes a half-updated file.
package trigram

import (
	"sort"
	"sync"
)

// Index is a case-folded trigram inverted index over file contents.
type Index struct {
	mu       sync.RWMutex
	postings map[uint32]map[string]int // trigram -> path -> occurrence count
	reverse  map[string]map[uint32]bool // path -> set of trigrams it contributed, for O(deg) removal
}

// New constructs an empty Index.
func New() *Index {
	return &Index{
		postings: make(map[uint32]map[string]int),
		reverse:  make(map[string]map[uint32]bool),
	}
}

// Update (re)indexes path's content, first removing any previously
// indexed trigrams for path. Safe to call for both first-time indexing
// and reindexing after an edit.
func (ix *Index) Update(path string, content []byte) {
	trigrams := extract(content)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)

	if len(trigrams) == 0 {
		return
	}
	set := make(map[uint32]bool, len(trigrams))
	for tri, count := range trigrams {
		bucket, ok := ix.postings[tri]
		if !ok {
			bucket = make(map[string]int)
			ix.postings[tri] = bucket
		}
		bucket[path] = count
		set[tri] = true
	}
	ix.reverse[path] = set
}

// RemoveFile drops every trigram path contributed.
func (ix *Index) RemoveFile(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)
}

func (ix *Index) removeLocked(path string) {
	for tri := range ix.reverse[path] {
		bucket := ix.postings[tri]
		delete(bucket, path)
		if len(bucket) == 0 {
			delete(ix.postings, tri)
		}
	}
	delete(ix.reverse, path)
}

// Candidate is one shortlisted file with its raw trigram match count,
// the input the Search Engine's scoring pass normalizes further.
type Candidate struct {
	Path    string
	Matches int
}

// FindCandidates shortlists files likely to contain query. Postings are
// always folded to lowercase (see extract), so shortlisting is always
// case-insensitive; IsCaseSensitive reports whether the Search Engine
// should additionally verify an exact-case match against each
// candidate's raw content before accepting it, per spec.md's smart-case
// convention (case-sensitive only when the query itself contains an
// uppercase letter, unless the caller forces it).
func (ix *Index) FindCandidates(query string) []Candidate {
	queryTrigrams := trigramsOf(toLowerASCII([]byte(query)))
	if len(queryTrigrams) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	counts := make(map[string]int)
	for tri := range queryTrigrams {
		for path, c := range ix.postings[tri] {
			counts[path] += c
		}
	}

	total := len(queryTrigrams)
	threshold := minRequiredMatches(total)

	candidates := make([]Candidate, 0, len(counts))
	for path, c := range counts {
		if c >= threshold {
			candidates = append(candidates, Candidate{Path: path, Matches: c})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Matches != candidates[j].Matches {
			return candidates[i].Matches > candidates[j].Matches
		}
		return candidates[i].Path < candidates[j].Path
	})
	return candidates
}

// minRequiredMatches is the length-normalized BM25-style threshold: short
// queries (a handful of trigrams) require every trigram to hit, longer
// queries tolerate partial matches scaled to half their trigram count.
// Ported directly from the teacher's filterAndReturnCandidates.
func minRequiredMatches(totalTrigrams int) int {
	switch {
	case totalTrigrams > 6:
		return totalTrigrams / 2
	case totalTrigrams > 3:
		return 3
	default:
		return totalTrigrams
	}
}

// IsCaseSensitive reports whether query should be matched exactly rather
// than case-insensitively: true if query contains any uppercase letter.
func IsCaseSensitive(query string) bool {
	return hasUpper(query)
}

// Len reports how many distinct files currently contribute trigrams.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.reverse)
}

func hasUpper(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// extract returns the case-folded trigram histogram for content: every
// byte trigram over the lowercased content, plus every trigram from each
// camelCase/snake_case subword (split before folding, so the case
// transition itself marks the boundary), so identifier-boundary
// substrings are discoverable even when a subword is short relative to
// the full identifier it's part of.
func extract(content []byte) map[uint32]int {
	counts := trigramsOf(toLowerASCII(content))
	for _, sub := range splitIdentifierBoundaries(content) {
		for tri, c := range trigramsOf(toLowerASCII(sub)) {
			counts[tri] += c
		}
	}
	return counts
}

// trigramsOf packs every alphanumeric-containing 3-byte window of b into
// a uint32 (b[i]<<16 | b[i+1]<<8 | b[i+2]), matching the teacher's
// extractSimpleTrigrams bit-shift packing, and returns occurrence counts
// rather than byte offsets since this index only needs file-level
// candidate shortlisting.
func trigramsOf(b []byte) map[uint32]int {
	if len(b) < 3 {
		return nil
	}
	out := make(map[uint32]int)
	for i := 0; i+2 < len(b); i++ {
		if !hasAlphaNum(b[i], b[i+1], b[i+2]) {
			continue
		}
		tri := uint32(b[i])<<16 | uint32(b[i+1])<<8 | uint32(b[i+2])
		out[tri]++
	}
	return out
}

func hasAlphaNum(a, b, c byte) bool {
	return isAlphaNum(a) || isAlphaNum(b) || isAlphaNum(c)
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func toLowerASCII(content []byte) []byte {
	out := make([]byte, len(content))
	for i, b := range content {
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return out
}

// splitIdentifierBoundaries walks content (before folding, so a
// lower→upper transition is still visible) and splits it into subwords at
// every non-alphanumeric run AND every lower→upper case transition,
// capturing snake_case/kebab-case/path/dotted-name boundaries as well as
// camelCase ones (e.g. "getUserById" → "get", "User", "Id").
func splitIdentifierBoundaries(content []byte) [][]byte {
	var subwords [][]byte
	start := -1
	for i, b := range content {
		if !isAlphaNum(b) {
			if start != -1 {
				subwords = append(subwords, content[start:i])
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
			continue
		}
		if isLowerUpperBoundary(content[i-1], b) {
			subwords = append(subwords, content[start:i])
			start = i
		}
	}
	if start != -1 {
		subwords = append(subwords, content[start:])
	}
	return subwords
}

func isLowerUpperBoundary(prev, cur byte) bool {
	return prev >= 'a' && prev <= 'z' && cur >= 'A' && cur <= 'Z'
}
