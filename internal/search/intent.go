package search

import "strings"

// Intent is the query-classification result spec.md §4.6 uses to select a
// weight vector: "an intent classifier maps a query string to one of
// symbol | file | code | bug using token heuristics."
type Intent string

const (
	IntentSymbol Intent = "symbol"
	IntentFile   Intent = "file"
	IntentCode   Intent = "code"
	IntentBug    Intent = "bug"
)

// bugVerbs are the natural-language cues the teacher's
// internal/core/intent_analyzer.go treats as bug-report language.
var bugVerbs = []string{
	"bug", "error", "fail", "failing", "crash", "broken", "wrong",
	"exception", "panic", "issue", "incorrect", "regression", "flaky",
}

// codeVerbs are verb-like tokens suggesting the caller wants to see an
// implementation rather than locate a definition or file by name.
var codeVerbs = []string{
	"how", "implement", "implementation", "does", "handle", "handles",
	"logic", "algorithm", "where",
}

// ClassifyIntent maps query to one of symbol/file/code/bug using the token
// heuristics spec.md §4.6 describes: known verb patterns, file-like tokens
// with extensions, and natural-language cues. Grounded on the teacher's
// internal/core/intent_analyzer.go, simplified from its multi-language
// dictionary lookup to the single-language heuristic set spec.md names.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return IntentCode
	}
	tokens := strings.Fields(q)

	if hasFileLikeToken(tokens) {
		return IntentFile
	}
	if containsAny(q, bugVerbs) {
		return IntentBug
	}
	if containsAny(q, codeVerbs) {
		return IntentCode
	}
	if looksLikeIdentifier(query) {
		return IntentSymbol
	}
	return IntentCode
}

// hasFileLikeToken reports whether any token looks like a bare filename:
// contains a dot followed by a short alphabetic extension, or a path
// separator.
func hasFileLikeToken(tokens []string) bool {
	for _, t := range tokens {
		if strings.ContainsAny(t, "/\\") {
			return true
		}
		if dot := strings.LastIndexByte(t, '.'); dot > 0 && dot < len(t)-1 {
			ext := t[dot+1:]
			if len(ext) >= 1 && len(ext) <= 5 && isAllAlpha(ext) {
				return true
			}
		}
	}
	return false
}

func isAllAlpha(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

// looksLikeIdentifier reports whether query is a single token shaped like a
// symbol name: camelCase, snake_case, or PascalCase with no spaces.
func looksLikeIdentifier(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" || strings.ContainsAny(q, " \t") {
		return false
	}
	hasUpperOrUnderscore := strings.ContainsAny(q, "_")
	for _, r := range q {
		if r >= 'A' && r <= 'Z' {
			hasUpperOrUnderscore = true
		}
	}
	return hasUpperOrUnderscore
}

func containsAny(q string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(q, n) {
			return true
		}
	}
	return false
}
