package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExcludeRuleSet_BasicPatterns(t *testing.T) {
	rs := NewExcludeRuleSet()
	rs.AddRule("*.log")
	rs.AddRule("node_modules/")
	rs.AddRule("/dist")

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"src/debug.log", false, true},
		{"node_modules", true, true},
		{"node_modules/react/index.js", false, true},
		{"dist", false, true},
		{"src/dist", false, false}, // absolute pattern anchors to root
		{"main.go", false, false},
	}
	for _, c := range cases {
		if got := rs.Matches(c.path, c.isDir); got != c.want {
			t.Errorf("Matches(%q, dir=%v) = %v, want %v", c.path, c.isDir, got, c.want)
		}
	}
}

func TestExcludeRuleSet_NegationOverridesEarlierIgnore(t *testing.T) {
	rs := NewExcludeRuleSet()
	rs.AddRule("vendor/*")
	rs.AddRule("!vendor/keep.go")

	if !rs.Matches("vendor/drop.go", false) {
		t.Error("vendor/drop.go should be excluded")
	}
	if rs.Matches("vendor/keep.go", false) {
		t.Error("vendor/keep.go should be un-excluded by the later negation")
	}
}

func TestExcludeRuleSet_LoadProjectRules_MergesBothFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.tmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".smart-context-ignore"), []byte(".smart-context/**\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rs := NewExcludeRuleSet()
	if err := rs.LoadProjectRules(root); err != nil {
		t.Fatalf("LoadProjectRules: %v", err)
	}

	if !rs.Matches("scratch.tmp", false) {
		t.Error("expected .gitignore pattern *.tmp to exclude scratch.tmp")
	}
	if !rs.Matches(".smart-context/index.db", false) {
		t.Error("expected .smart-context-ignore pattern to exclude .smart-context/index.db")
	}
}

func TestExcludeRuleSet_LoadProjectRules_MissingFilesIsNotError(t *testing.T) {
	rs := NewExcludeRuleSet()
	if err := rs.LoadProjectRules(t.TempDir()); err != nil {
		t.Fatalf("expected no error for a project with no ignore files, got %v", err)
	}
}

func TestExcludeRuleSet_DoublestarGlobs(t *testing.T) {
	rs := NewExcludeRuleSet()
	rs.AddRule("*.log")
	rs.AddRule("build/")
	rs.AddRule("/README.md") // not excluded as a glob target but still converts
	rs.AddRule("!kept.log")  // negation: dropped from the glob projection

	globs := rs.DoublestarGlobs()
	want := map[string]bool{
		"**/*.log":    true,
		"**/build/**": true,
		"README.md":   true,
	}
	if len(globs) != len(want) {
		t.Fatalf("DoublestarGlobs() = %v, want exactly %v", globs, want)
	}
	for _, g := range globs {
		if !want[g] {
			t.Errorf("unexpected glob %q", g)
		}
	}
}

func TestExcludeRuleSet_DirectoryPatternMatchesNestedContent(t *testing.T) {
	rs := NewExcludeRuleSet()
	rs.AddRule("target/**")

	if !rs.Matches("target", true) {
		t.Error("expected target/ directory itself to match target/**")
	}
	if !rs.Matches("target/debug/build.rs", false) {
		t.Error("expected a file nested under target/ to match target/**")
	}
}
