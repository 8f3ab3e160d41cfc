package edit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
)

// historyFile is the on-disk shape of one project's undo/redo state,
// persisted as JSON per spec.md §4.8 ("History: per-project {undoStack,
// redoStack} persisted as JSON").
type historyFile struct {
	UndoStack []StoredOperation `json:"undoStack"`
	RedoStack []StoredOperation `json:"redoStack"`
}

// StoredOperation is either a single-file Operation or a BatchOperation,
// flattened to one JSON-friendly shape so the history file never needs a
// tagged union on disk.
type StoredOperation struct {
	Single *Operation  `json:"single,omitempty"`
	Batch  []Operation `json:"batch,omitempty"`
}

// History holds one project's bounded undo/redo stacks, persisted as JSON
// at Path and guarded across processes by a sibling .lock file, grounded
// on Aman-CERP-amanmcp's internal/embed/lock.go (github.com/gofrs/flock
// Lock/TryLock/Unlock wrapper).
type History struct {
	mu        sync.Mutex
	Path      string
	UndoDepth int
	lock      *flock.Flock

	undo []StoredOperation
	redo []StoredOperation
}

// NewHistory constructs a History backed by path, bounding the undo stack
// at undoDepth (spec.md §4.8 default 50). It loads existing state from
// disk if path exists; a missing file starts empty.
func NewHistory(path string, undoDepth int) (*History, error) {
	if undoDepth <= 0 {
		undoDepth = 50
	}
	h := &History{
		Path:      path,
		UndoDepth: undoDepth,
		lock:      flock.New(path + ".lock"),
	}
	if err := h.load(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *History) load() error {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var f historyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	h.undo = f.UndoStack
	h.redo = f.RedoStack
	return nil
}

// save writes the history file atomically (temp+rename), matching the
// teacher's config-writer convention, while holding the cross-process
// flock so two instances of this module never interleave writes.
func (h *History) save() error {
	if err := h.lock.Lock(); err != nil {
		return err
	}
	defer h.lock.Unlock()

	f := historyFile{UndoStack: h.undo, RedoStack: h.redo}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return err
	}
	tmp := h.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, h.Path)
}

// Push records a successful single-file operation, bounding the undo
// stack and clearing the redo stack, per spec.md §4.8 ("any new push
// clears redo").
func (h *History) Push(op Operation) error {
	return h.pushStored(StoredOperation{Single: &op})
}

// PushBatch records a successful BatchOperation as one history entry.
func (h *History) PushBatch(ops []Operation) error {
	return h.pushStored(StoredOperation{Batch: ops})
}

func (h *History) pushStored(s StoredOperation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, s)
	if len(h.undo) > h.UndoDepth {
		h.undo = h.undo[len(h.undo)-h.UndoDepth:]
	}
	h.redo = nil
	return h.save()
}

// PopUndo removes and returns the most recent undo entry, pushing it onto
// redo. Returns NoUndoHistory when the stack is empty.
func (h *History) PopUndo() (StoredOperation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return StoredOperation{}, coreerrors.New(coreerrors.CodeNoUndoHistory, coreerrors.KindValidation, "no operation to undo")
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, last)
	if err := h.save(); err != nil {
		return StoredOperation{}, err
	}
	return last, nil
}

// PopRedo removes and returns the most recent redo entry, pushing it back
// onto undo. Returns NoRedoHistory when the stack is empty.
func (h *History) PopRedo() (StoredOperation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return StoredOperation{}, coreerrors.New(coreerrors.CodeNoRedoHistory, coreerrors.KindValidation, "no operation to redo")
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, last)
	if err := h.save(); err != nil {
		return StoredOperation{}, err
	}
	return last, nil
}
