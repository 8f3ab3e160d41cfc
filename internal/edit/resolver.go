package edit

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/smart-context/internal/config"
	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
	"github.com/standardbeagle/smart-context/internal/model"
)

// Resolver turns an edit Descriptor plus current file content into a
// ResolvedEdit, per spec.md §4.7's six-step pipeline.
type Resolver struct {
	Cfg config.Edit
}

// NewResolver constructs a Resolver over the Edit config section (the
// levenshtein size guardrails spec.md §6 lists).
func NewResolver(cfg config.Edit) *Resolver {
	return &Resolver{Cfg: cfg}
}

// candidate is one surviving match, expressed as a byte range into the
// normalized content buffer Resolve returns alongside the ResolvedEdit
// (see Resolve's doc comment for why offsets are against normalized
// rather than raw content).
type candidate struct {
	start, end int
	distance   int // 0 for exact/whitespace, edit distance for levenshtein
}

// Resolve runs the full resolution pipeline for one Descriptor against
// path's rawContent. It returns the ResolvedEdit and the normalized
// content buffer IndexRange is expressed against — callers that go on to
// apply the edit (the Editor) must splice that buffer, not rawContent,
// since step 1 may have rewritten line endings.
func (r *Resolver) Resolve(path string, rawContent []byte, d Descriptor) (ResolvedEdit, []byte, error) {
	norm := d.Normalization
	if norm == "" {
		norm = NormalizationPlain
	}

	content := normalizeForMatch(string(rawContent), norm)
	target := normalizeForMatch(d.TargetString, norm)
	before := normalizeForMatch(d.BeforeContext, norm)
	after := normalizeForMatch(d.AfterContext, norm)

	if target == "" {
		return ResolvedEdit{}, nil, coreerrors.New(coreerrors.CodeNoMatch, coreerrors.KindResolution, "empty targetString")
	}

	mode := d.FuzzyMode
	if mode == "" {
		mode = FuzzyExact
	}

	var candidates []candidate
	switch mode {
	case FuzzyExact:
		candidates = findExact(content, target)
	case FuzzyWhitespace:
		candidates = findWhitespace(content, target)
	case FuzzyLevenshtein:
		if blocked := r.levenshteinBlocked(content, target); blocked {
			return ResolvedEdit{}, nil, coreerrors.New(coreerrors.CodeLevenshteinBlocked, coreerrors.KindResolution,
				"levenshtein fuzzy mode blocked: target too short for a file this large")
		}
		candidates = findLevenshtein(content, target)
	default:
		candidates = findExact(content, target)
	}

	if d.LineRange != nil {
		candidates = filterByLineRange(content, candidates, *d.LineRange)
	}

	candidates = filterByContext(content, candidates, before, after)

	if len(candidates) == 0 {
		return ResolvedEdit{}, nil, coreerrors.New(coreerrors.CodeNoMatch, coreerrors.KindResolution, "no candidate matched targetString")
	}

	if len(candidates) > 1 && !d.AllowAmbiguousAutoPick {
		best := bestCandidate(candidates)
		sl, el := lineSpan(content, best)
		suggestion := LineRange{StartLine: sl, EndLine: el}
		return ResolvedEdit{}, nil, coreerrors.New(coreerrors.CodeAmbiguousMatch, coreerrors.KindResolution,
			"multiple candidates matched targetString").WithSuggestion(suggestion)
	}

	chosen := candidates[0]
	if len(candidates) > 1 {
		chosen = bestCandidate(candidates)
	}

	startLine, endLine := lineSpan(content, chosen)
	idxRange := model.Range{
		StartByte: chosen.start,
		EndByte:   chosen.end,
		StartLine: startLine,
		EndLine:   endLine,
	}

	if d.ExpectedHash != "" {
		hashRange := idxRange
		extendToWholeLines(content, &hashRange)
		sum := sha256.Sum256([]byte(content[hashRange.StartByte:hashRange.EndByte]))
		if hex.EncodeToString(sum[:]) != d.ExpectedHash {
			return ResolvedEdit{}, nil, coreerrors.New(coreerrors.CodeHashMismatch, coreerrors.KindResolution,
				"resolved range's content hash does not match expectedHash")
		}
	}

	return ResolvedEdit{
		FilePath:          path,
		IndexRange:        idxRange,
		TargetString:      d.TargetString,
		ReplacementString: decodeOverEscapes(d.ReplacementString),
		ExpectedHash:      d.ExpectedHash,
	}, []byte(content), nil
}

func findExact(content, target string) []candidate {
	var out []candidate
	from := 0
	for {
		idx := strings.Index(content[from:], target)
		if idx < 0 {
			break
		}
		start := from + idx
		out = append(out, candidate{start: start, end: start + len(target)})
		from = start + 1
		if from >= len(content) {
			break
		}
	}
	return out
}

// findWhitespace collapses runs of whitespace to a single space in both
// needle and haystack before matching, then re-projects matches back to
// the original byte ranges, per spec.md §4.7 step 2.
func findWhitespace(content, target string) []candidate {
	collapsedTarget, _ := collapseWhitespace(target)
	if collapsedTarget == "" {
		return nil
	}
	collapsedContent, mapping := collapseWhitespace(content)

	var out []candidate
	from := 0
	for {
		idx := strings.Index(collapsedContent[from:], collapsedTarget)
		if idx < 0 {
			break
		}
		cStart := from + idx
		cEnd := cStart + len(collapsedTarget)
		start := mapping[cStart]
		var end int
		if cEnd < len(mapping) {
			end = mapping[cEnd]
		} else {
			end = len(content)
		}
		out = append(out, candidate{start: start, end: end})
		from = cStart + 1
		if from >= len(collapsedContent) {
			break
		}
	}
	return out
}

// collapseWhitespace returns s with every run of whitespace collapsed to a
// single space, plus mapping[i] = the byte offset in s of collapsed[i]
// (mapping has len(collapsed)+1 entries, the last being len(s), so a match
// ending at the collapsed buffer's length still projects correctly).
func collapseWhitespace(s string) (string, []int) {
	var b strings.Builder
	mapping := make([]int, 0, len(s)+1)
	inSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' {
			if !inSpace {
				b.WriteByte(' ')
				mapping = append(mapping, i)
				inSpace = true
			}
			continue
		}
		b.WriteByte(c)
		mapping = append(mapping, i)
		inSpace = false
	}
	mapping = append(mapping, len(s))
	return b.String(), mapping
}

// levenshteinBlocked implements spec.md §4.7's guardrail: "blocked with a
// short targetString on very large files (default target<4 on >100 KB
// files returns LEVENSHTEIN_BLOCKED)."
func (r *Resolver) levenshteinBlocked(content, target string) bool {
	maxBytes := r.Cfg.LevenshteinMaxFileBytes
	minTarget := r.Cfg.LevenshteinMinTargetOnBig
	if maxBytes <= 0 {
		maxBytes = 100 * 1024
	}
	if minTarget <= 0 {
		minTarget = 4
	}
	return int64(len(content)) > maxBytes && len(target) < minTarget
}

// findLevenshtein performs a sliding-window edit-distance search: window
// sizes range over len(target)±maxDistance (maxDistance proportional to
// |target|, 20%), each position's distance computed via
// github.com/hbollon/go-edlib's LevenshteinDistance — the same library the
// teacher's internal/mcp/symbol_type_resolver.go already uses for fuzzy
// symbol-name matching. Overlapping windows are resolved by keeping the
// lowest-distance, then earliest, candidate per region.
func findLevenshtein(content, target string) []candidate {
	maxDistance := len(target) / 5
	if maxDistance < 1 {
		maxDistance = 1
	}

	var raw []candidate
	for delta := -maxDistance; delta <= maxDistance; delta++ {
		ws := len(target) + delta
		if ws < 1 || ws > len(content) {
			continue
		}
		for start := 0; start+ws <= len(content); start++ {
			window := content[start : start+ws]
			dist := edlib.LevenshteinDistance(target, window)
			if dist <= maxDistance {
				raw = append(raw, candidate{start: start, end: start + ws, distance: dist})
			}
		}
	}
	return mergeOverlapping(raw)
}

// mergeOverlapping keeps one candidate per overlapping cluster: the lowest
// distance, earliest start on ties.
func mergeOverlapping(cands []candidate) []candidate {
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].distance != cands[j].distance {
			return cands[i].distance < cands[j].distance
		}
		return cands[i].start < cands[j].start
	})

	var out []candidate
	for _, c := range cands {
		overlapsKept := false
		for _, k := range out {
			if c.start < k.end && k.start < c.end {
				overlapsKept = true
				break
			}
		}
		if !overlapsKept {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func bestCandidate(cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.distance < best.distance {
			best = c
		}
	}
	return best
}

func filterByLineRange(content string, cands []candidate, lr LineRange) []candidate {
	var out []candidate
	for _, c := range cands {
		sl, el := lineSpan(content, c)
		if sl >= lr.StartLine && el <= lr.EndLine {
			out = append(out, c)
		}
	}
	return out
}

func filterByContext(content string, cands []candidate, before, after string) []candidate {
	if before == "" && after == "" {
		return cands
	}
	var out []candidate
	for _, c := range cands {
		if before != "" {
			if c.start < len(before) || content[c.start-len(before):c.start] != before {
				continue
			}
		}
		if after != "" {
			if c.end+len(after) > len(content) || content[c.end:c.end+len(after)] != after {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// lineSpan returns the 1-based [startLine, endLine] of c within content.
func lineSpan(content string, c candidate) (int, int) {
	startLine := 1 + strings.Count(content[:c.start], "\n")
	endLine := 1 + strings.Count(content[:c.end], "\n")
	return startLine, endLine
}

// extendToWholeLines widens r to the enclosing line boundaries, per
// spec.md §4.7 step 5: "extended to whole lines when the caller's hash was
// line-based."
func extendToWholeLines(content string, r *model.Range) {
	start := r.StartByte
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end := r.EndByte
	for end < len(content) && content[end] != '\n' {
		end++
	}
	r.StartByte, r.EndByte = start, end
}
