// Package edit is the Edit Resolver, Editor, History, and Coordinator
// (spec.md §4.7-4.8): fuzzy target resolution against current file
// content, atomic splice-and-write with backup retention, and a bounded
// undo/redo history with batch dry-run/apply/rollback semantics.
//
// Not present in the teacher (lci is read-only) or anywhere else in the
// pack as a dedicated module. Grounded on the teacher's own fuzzy-matching
// stack (github.com/hbollon/go-edlib, as internal/semantic/fuzzy_matcher.go
// and internal/mcp/symbol_type_resolver.go already use it) for the
// levenshtein fuzzy mode, the teacher's internal/errors idiom for the
// resolution error taxonomy, Aman-CERP-amanmcp's internal/config/backup.go
// for backup naming and retention, and amanmcp's internal/embed/lock.go
// (github.com/gofrs/flock) for cross-process history-file locking.
package edit

import "github.com/standardbeagle/smart-context/internal/model"

// FuzzyMode selects the candidate-generation strategy spec.md §4.7 names.
type FuzzyMode string

const (
	FuzzyExact       FuzzyMode = "exact"
	FuzzyWhitespace  FuzzyMode = "whitespace"
	FuzzyLevenshtein FuzzyMode = "levenshtein"
)

// Normalization selects how aggressively text is normalized before
// matching: "plain" only reconciles line endings and escape sequences;
// "structural" additionally folds quote style in single-line contexts.
type Normalization string

const (
	NormalizationPlain      Normalization = "plain"
	NormalizationStructural Normalization = "structural"
)

// LineRange restricts candidate generation/disambiguation to a 1-based,
// inclusive line span.
type LineRange struct {
	StartLine int
	EndLine   int
}

// Descriptor is one edit request, per spec.md §4.7's input shape.
type Descriptor struct {
	TargetString           string
	ReplacementString      string
	FuzzyMode              FuzzyMode
	BeforeContext          string
	AfterContext           string
	LineRange              *LineRange
	ExpectedHash           string
	Normalization          Normalization
	AllowAmbiguousAutoPick bool
}

// ResolvedEdit is the Resolver's output, ready for the Editor to apply.
type ResolvedEdit struct {
	FilePath           string
	IndexRange         model.Range
	TargetString       string
	ReplacementString  string
	ExpectedHash       string
}
