package edit

import (
	"testing"

	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/model"
)

func TestApplyEdits_SplicesMultipleNonOverlappingEdits(t *testing.T) {
	fs := fsport.NewMem()
	ed := NewEditor(fs, "", 10)
	content := []byte("aaa bbb ccc")
	edits := []ResolvedEdit{
		{IndexRange: model.Range{StartByte: 0, EndByte: 3}, ReplacementString: "xxx"},
		{IndexRange: model.Range{StartByte: 8, EndByte: 11}, ReplacementString: "yyy"},
	}
	result, err := ed.ApplyEdits("f.txt", content, edits, false)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	got, _ := fs.ReadFile("f.txt")
	if string(got) != "xxx bbb yyy" {
		t.Fatalf("content = %q, want %q", got, "xxx bbb yyy")
	}
	if result.Operation == nil || len(result.Operation.InverseEdits) != 2 {
		t.Fatalf("expected 2 inverse edits, got %+v", result.Operation)
	}
}

func TestApplyEdits_RejectsOverlappingEdits(t *testing.T) {
	fs := fsport.NewMem()
	ed := NewEditor(fs, "", 10)
	content := []byte("aaa bbb ccc")
	edits := []ResolvedEdit{
		{IndexRange: model.Range{StartByte: 0, EndByte: 5}, ReplacementString: "x"},
		{IndexRange: model.Range{StartByte: 3, EndByte: 8}, ReplacementString: "y"},
	}
	if _, err := ed.ApplyEdits("f.txt", content, edits, false); err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
}

func TestApplyEdits_DryRunDoesNotWrite(t *testing.T) {
	fs := fsport.NewMem()
	if err := fs.WriteFile("f.txt", []byte("original")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	ed := NewEditor(fs, "", 10)
	edits := []ResolvedEdit{{IndexRange: model.Range{StartByte: 0, EndByte: 8}, ReplacementString: "changed"}}
	result, err := ed.ApplyEdits("f.txt", []byte("original"), edits, true)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if !result.Success || result.Operation != nil {
		t.Fatalf("dry run should succeed with no Operation, got %+v", result)
	}
	got, _ := fs.ReadFile("f.txt")
	if string(got) != "original" {
		t.Fatalf("dry run wrote to disk: %q", got)
	}
}

func TestApplyEdits_InverseEditsUndoTheChange(t *testing.T) {
	fs := fsport.NewMem()
	ed := NewEditor(fs, "", 10)
	content := []byte("hello world")
	edits := []ResolvedEdit{{IndexRange: model.Range{StartByte: 6, EndByte: 11}, ReplacementString: "there"}}
	result, err := ed.ApplyEdits("f.txt", content, edits, false)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	newContent, _ := fs.ReadFile("f.txt")

	inverseAsEdits := make([]ResolvedEdit, len(result.Operation.InverseEdits))
	for i, ie := range result.Operation.InverseEdits {
		inverseAsEdits[i] = ResolvedEdit{IndexRange: ie.Range, ReplacementString: ie.Replacement}
	}
	if _, err := ed.ApplyEdits("f.txt", newContent, inverseAsEdits, false); err != nil {
		t.Fatalf("undo ApplyEdits: %v", err)
	}
	restored, _ := fs.ReadFile("f.txt")
	if string(restored) != "hello world" {
		t.Fatalf("restored = %q, want %q", restored, "hello world")
	}
}

func TestApplyEdits_BackupRetentionKeepsNewestN(t *testing.T) {
	fs := fsport.NewMem()
	ed := NewEditor(fs, "backups", 2)
	path := "f.txt"
	content := []byte("v0")
	for i := 0; i < 5; i++ {
		edits := []ResolvedEdit{{IndexRange: model.Range{StartByte: 0, EndByte: len(content)}, ReplacementString: "v" + string(rune('1'+i))}}
		result, err := ed.ApplyEdits(path, content, edits, false)
		if err != nil {
			t.Fatalf("ApplyEdits iteration %d: %v", i, err)
		}
		content, _ = fs.ReadFile(path)
		_ = result.Operation.BackupPath
	}
	entries, err := fs.ReadDir("backups")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("backup count = %d, want 2 (retention bound)", len(entries))
	}
}
