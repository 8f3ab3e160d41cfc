package edit

import (
	"testing"

	"github.com/standardbeagle/smart-context/internal/config"
	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
)

func TestResolve_ExactMatch(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("func Login(user string) error {\n\treturn nil\n}\n")
	re, norm, err := r.Resolve("auth.go", content, Descriptor{
		TargetString:      "return nil",
		ReplacementString: "return errAuthFailed",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := string(norm[re.IndexRange.StartByte:re.IndexRange.EndByte]); got != "return nil" {
		t.Fatalf("resolved range = %q, want %q", got, "return nil")
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewResolver(config.Edit{})
	_, _, err := r.Resolve("auth.go", []byte("package auth\n"), Descriptor{TargetString: "does not appear"})
	if !coreerrors.IsCode(err, coreerrors.CodeNoMatch) {
		t.Fatalf("err = %v, want NO_MATCH", err)
	}
}

func TestResolve_AmbiguousMatchSuggestsNarrowerRange(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("x := 1\nx := 1\n")
	_, _, err := r.Resolve("f.go", content, Descriptor{TargetString: "x := 1"})
	if !coreerrors.IsCode(err, coreerrors.CodeAmbiguousMatch) {
		t.Fatalf("err = %v, want AMBIGUOUS_MATCH", err)
	}
}

func TestResolve_AllowAmbiguousAutoPickPicksFirst(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("x := 1\nx := 1\n")
	re, _, err := r.Resolve("f.go", content, Descriptor{
		TargetString:           "x := 1",
		AllowAmbiguousAutoPick: true,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if re.IndexRange.StartByte != 0 {
		t.Fatalf("StartByte = %d, want 0 (first candidate)", re.IndexRange.StartByte)
	}
}

func TestResolve_WhitespaceFuzzyMatchesAcrossReformatting(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("func Foo(a,\n    b int) {}\n")
	re, norm, err := r.Resolve("f.go", content, Descriptor{
		TargetString: "func Foo(a, b int) {}",
		FuzzyMode:    FuzzyWhitespace,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if re.IndexRange.EndByte > len(norm) || re.IndexRange.StartByte < 0 {
		t.Fatalf("resolved range out of bounds: %+v", re.IndexRange)
	}
}

func TestResolve_ContextFilterNarrowsToMatchingOccurrence(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("// first\nreturn nil\n// second\nreturn nil\n")
	re, norm, err := r.Resolve("f.go", content, Descriptor{
		TargetString:   "return nil",
		BeforeContext:  "// second\n",
		AfterContext:   "",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(norm[re.IndexRange.StartByte:re.IndexRange.EndByte]) != "return nil" {
		t.Fatalf("resolved range mismatch")
	}
	if re.IndexRange.StartByte < len("// first\nreturn nil\n// second\n") {
		t.Fatalf("context filter did not pick the second occurrence: start=%d", re.IndexRange.StartByte)
	}
}

func TestResolve_HashMismatchRejected(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("return nil\n")
	_, _, err := r.Resolve("f.go", content, Descriptor{
		TargetString: "return nil",
		ExpectedHash: "0000000000000000000000000000000000000000000000000000000000000000",
	})
	if !coreerrors.IsCode(err, coreerrors.CodeHashMismatch) {
		t.Fatalf("err = %v, want HASH_MISMATCH", err)
	}
}

func TestResolve_LevenshteinBlockedOnLargeFileShortTarget(t *testing.T) {
	r := NewResolver(config.Edit{LevenshteinMaxFileBytes: 10, LevenshteinMinTargetOnBig: 4})
	content := []byte("this content is well over ten bytes long")
	_, _, err := r.Resolve("f.go", content, Descriptor{
		TargetString: "abc",
		FuzzyMode:    FuzzyLevenshtein,
	})
	if !coreerrors.IsCode(err, coreerrors.CodeLevenshteinBlocked) {
		t.Fatalf("err = %v, want LEVENSHTEIN_BLOCKED", err)
	}
}

func TestResolve_LevenshteinFindsNearMatch(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("retrun val\n")
	re, norm, err := r.Resolve("f.go", content, Descriptor{
		TargetString: "return val",
		FuzzyMode:    FuzzyLevenshtein,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := string(norm[re.IndexRange.StartByte:re.IndexRange.EndByte]); got != "retrun val" {
		t.Fatalf("resolved range = %q, want %q", got, "retrun val")
	}
}

func TestResolve_ReplacementDecodesOverEscapesOutsideQuotes(t *testing.T) {
	r := NewResolver(config.Edit{})
	content := []byte("old\n")
	re, _, err := r.Resolve("f.go", content, Descriptor{
		TargetString:      "old",
		ReplacementString: `fmt.Println(\"hi\")\nreturn`,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "fmt.Println(\"hi\")\nreturn"
	if re.ReplacementString != want {
		t.Fatalf("ReplacementString = %q, want %q", re.ReplacementString, want)
	}
}
