package edit

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/standardbeagle/smart-context/internal/config"
	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
	"github.com/standardbeagle/smart-context/internal/fsport"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	fs := fsport.NewMem()
	dir := t.TempDir()
	resolver := NewResolver(config.Edit{})
	editor := NewEditor(fs, filepath.Join(dir, "backups"), 10)
	history, err := NewHistory(filepath.Join(dir, "history.json"), 0)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	return NewCoordinator(fs, resolver, editor, history)
}

func TestCoordinator_ApplyEditsPushesHistory(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.FS.WriteFile("f.go", []byte("return nil")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	_, err := c.ApplyEdits("f.go", []Descriptor{{TargetString: "return nil", ReplacementString: "return err"}}, false)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	got, _ := c.FS.ReadFile("f.go")
	if string(got) != "return err" {
		t.Fatalf("content = %q, want %q", got, "return err")
	}
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	got, _ = c.FS.ReadFile("f.go")
	if string(got) != "return nil" {
		t.Fatalf("after undo content = %q, want %q", got, "return nil")
	}
}

func TestCoordinator_UndoThenRedoRestoresEditedContent(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.FS.WriteFile("f.go", []byte("a := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if _, err := c.ApplyEdits("f.go", []Descriptor{{TargetString: "a := 1", ReplacementString: "a := 2"}}, false); err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := c.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	got, _ := c.FS.ReadFile("f.go")
	if string(got) != "a := 2" {
		t.Fatalf("after redo content = %q, want %q", got, "a := 2")
	}
}

func TestCoordinator_ApplyBatchEditsDryRunFailsNamingFile(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.FS.WriteFile("good.go", []byte("x := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if err := c.FS.WriteFile("bad.go", []byte("y := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	items := []BatchItem{
		{File: "good.go", Edits: []Descriptor{{TargetString: "x := 1", ReplacementString: "x := 2"}}},
		{File: "bad.go", Edits: []Descriptor{{TargetString: "not present", ReplacementString: "z"}}},
	}
	_, err := c.ApplyBatchEdits(items, true)
	if !coreerrors.IsCode(err, coreerrors.CodeBatchDryRunFailed) {
		t.Fatalf("err = %v, want BatchDryRunFailed", err)
	}
	if !strings.Contains(err.Error(), "bad.go") {
		t.Fatalf("err = %v, want it to name bad.go", err)
	}
}

func TestCoordinator_ApplyBatchEditsRollsBackOnFailure(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.FS.WriteFile("good.go", []byte("x := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if err := c.FS.WriteFile("bad.go", []byte("y := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	items := []BatchItem{
		{File: "good.go", Edits: []Descriptor{{TargetString: "x := 1", ReplacementString: "x := 2"}}},
		{File: "bad.go", Edits: []Descriptor{{TargetString: "not present", ReplacementString: "z"}}},
	}
	_, err := c.ApplyBatchEdits(items, false)
	if !coreerrors.IsCode(err, coreerrors.CodeBatchApplyFailed) {
		t.Fatalf("err = %v, want BatchApplyFailed", err)
	}
	got, _ := c.FS.ReadFile("good.go")
	if string(got) != "x := 1" {
		t.Fatalf("good.go = %q, want rollback to %q", got, "x := 1")
	}
}

func TestCoordinator_ApplyBatchEditsSuccessPushesOneHistoryEntry(t *testing.T) {
	c := newTestCoordinator(t)
	if err := c.FS.WriteFile("a.go", []byte("x := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if err := c.FS.WriteFile("b.go", []byte("y := 1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	items := []BatchItem{
		{File: "a.go", Edits: []Descriptor{{TargetString: "x := 1", ReplacementString: "x := 2"}}},
		{File: "b.go", Edits: []Descriptor{{TargetString: "y := 1", ReplacementString: "y := 2"}}},
	}
	if _, err := c.ApplyBatchEdits(items, false); err != nil {
		t.Fatalf("ApplyBatchEdits: %v", err)
	}
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	gotA, _ := c.FS.ReadFile("a.go")
	gotB, _ := c.FS.ReadFile("b.go")
	if string(gotA) != "x := 1" || string(gotB) != "y := 1" {
		t.Fatalf("single Undo should revert the whole batch, got a=%q b=%q", gotA, gotB)
	}
}
