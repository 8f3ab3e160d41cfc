package edit

import (
	"path/filepath"
	"testing"

	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
)

func TestHistory_PushThenPopUndoRoundTrips(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHistory(filepath.Join(dir, "history.json"), 0)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	op := Operation{File: "f.go", BackupPath: "f.go.bak"}
	if err := h.Push(op); err != nil {
		t.Fatalf("Push: %v", err)
	}
	got, err := h.PopUndo()
	if err != nil {
		t.Fatalf("PopUndo: %v", err)
	}
	if got.Single == nil || got.Single.File != "f.go" {
		t.Fatalf("PopUndo = %+v, want the pushed operation", got)
	}
}

func TestHistory_PopUndoOnEmptyStackReturnsNoUndoHistory(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHistory(filepath.Join(dir, "history.json"), 0)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	_, err = h.PopUndo()
	if !coreerrors.IsCode(err, coreerrors.CodeNoUndoHistory) {
		t.Fatalf("err = %v, want NoUndoHistory", err)
	}
}

func TestHistory_PopRedoOnEmptyStackReturnsNoRedoHistory(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHistory(filepath.Join(dir, "history.json"), 0)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	_, err = h.PopRedo()
	if !coreerrors.IsCode(err, coreerrors.CodeNoRedoHistory) {
		t.Fatalf("err = %v, want NoRedoHistory", err)
	}
}

func TestHistory_PushClearsRedoStack(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHistory(filepath.Join(dir, "history.json"), 0)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	if err := h.Push(Operation{File: "a.go"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := h.PopUndo(); err != nil {
		t.Fatalf("PopUndo: %v", err)
	}
	if err := h.Push(Operation{File: "b.go"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := h.PopRedo(); !coreerrors.IsCode(err, coreerrors.CodeNoRedoHistory) {
		t.Fatalf("redo stack should be cleared by the intervening push, err = %v", err)
	}
}

func TestHistory_UndoDepthBoundsStackToNewest(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHistory(filepath.Join(dir, "history.json"), 2)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	for _, f := range []string{"a.go", "b.go", "c.go"} {
		if err := h.Push(Operation{File: f}); err != nil {
			t.Fatalf("Push %s: %v", f, err)
		}
	}
	if len(h.undo) != 2 {
		t.Fatalf("undo stack len = %d, want 2", len(h.undo))
	}
	if h.undo[0].Single.File != "b.go" || h.undo[1].Single.File != "c.go" {
		t.Fatalf("undo stack should keep the 2 newest pushes, got %+v", h.undo)
	}
}

func TestHistory_ReloadsPersistedStateFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	h1, err := NewHistory(path, 0)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	if err := h1.Push(Operation{File: "persisted.go"}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	h2, err := NewHistory(path, 0)
	if err != nil {
		t.Fatalf("NewHistory (reload): %v", err)
	}
	got, err := h2.PopUndo()
	if err != nil {
		t.Fatalf("PopUndo: %v", err)
	}
	if got.Single == nil || got.Single.File != "persisted.go" {
		t.Fatalf("reloaded history missing pushed operation: %+v", got)
	}
}
