package edit

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/model"
)

// InverseEdit is one back-substitution: applying it to the post-edit
// content restores the pre-edit bytes at that range, per spec.md §4.8's
// "operation.inverseEdits are the back-substitutions (original spans vs.
// replacements)."
type InverseEdit struct {
	Range       model.Range // range within the POST-edit content
	Replacement string      // the original (pre-edit) text at that position
}

// Operation is one successfully applied (non-dry-run) edit, recorded to
// History for undo/redo. ForwardEdits is the original resolved edit list
// (reapplied on redo); InverseEdits is its back-substitution (applied on
// undo) — spec.md §4.8: "undo / redo: ... apply inverseEdits / edits
// respectively."
type Operation struct {
	File         string
	ForwardEdits []ResolvedEdit
	InverseEdits []InverseEdit
	BackupPath   string
}

// ApplyResult is Editor.ApplyEdits's return value.
type ApplyResult struct {
	Success   bool
	Operation *Operation
}

// Editor splices resolved edits into file content and writes the result
// atomically, keeping a retention-bounded set of timestamped backups.
type Editor struct {
	FS             fsport.FS
	BackupDir      string
	BackupsPerFile int
	now            func() time.Time
}

// NewEditor constructs an Editor. backupDir is the directory backups are
// written under (e.g. ".smart-context/backups"); backupsPerFile is the
// retention count (spec.md §4.8 default 10).
func NewEditor(fs fsport.FS, backupDir string, backupsPerFile int) *Editor {
	if backupsPerFile <= 0 {
		backupsPerFile = 10
	}
	return &Editor{FS: fs, BackupDir: backupDir, BackupsPerFile: backupsPerFile, now: time.Now}
}

// ApplyEdits sorts edits by IndexRange.StartByte, verifies none overlap,
// splices them into content, and — unless dryRun — writes the result
// atomically and retains a timestamped backup of the pre-edit content,
// per spec.md §4.8.
func (ed *Editor) ApplyEdits(path string, content []byte, edits []ResolvedEdit, dryRun bool) (ApplyResult, error) {
	if len(edits) == 0 {
		return ApplyResult{Success: true}, nil
	}

	sorted := make([]ResolvedEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].IndexRange.StartByte < sorted[j].IndexRange.StartByte
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].IndexRange.StartByte < sorted[i-1].IndexRange.EndByte {
			return ApplyResult{}, coreerrors.New(coreerrors.CodeInternalError, coreerrors.KindValidation,
				fmt.Sprintf("overlapping edits at byte %d in %s", sorted[i].IndexRange.StartByte, path))
		}
	}

	var buf strings.Builder
	var inverses []InverseEdit
	prevEnd := 0
	for _, e := range sorted {
		start, end := e.IndexRange.StartByte, e.IndexRange.EndByte
		buf.WriteString(string(content[prevEnd:start]))
		newStart := buf.Len()
		buf.WriteString(e.ReplacementString)
		newEnd := buf.Len()
		inverses = append(inverses, InverseEdit{
			Range:       model.Range{StartByte: newStart, EndByte: newEnd},
			Replacement: string(content[start:end]),
		})
		prevEnd = end
	}
	buf.WriteString(string(content[prevEnd:]))
	newContent := buf.String()

	if dryRun {
		return ApplyResult{Success: true}, nil
	}

	backupPath, err := ed.backup(path, content)
	if err != nil {
		return ApplyResult{}, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindTransient, "backup failed", err)
	}

	if err := ed.FS.WriteFile(path, []byte(newContent)); err != nil {
		return ApplyResult{}, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindTransient, "write failed", err)
	}

	return ApplyResult{
		Success: true,
		Operation: &Operation{
			File:         path,
			ForwardEdits: sorted,
			InverseEdits: inverses,
			BackupPath:   backupPath,
		},
	}, nil
}

// backup writes a timestamped copy of content under BackupDir, keyed by an
// encoded form of path (slashes flattened so nested files don't collide on
// basename), then enforces retention of the newest BackupsPerFile copies.
// Grounded directly on Aman-CERP-amanmcp's internal/config/backup.go
// (BackupUserConfig/cleanupOldBackups): timestamped filename, keep-newest-N
// cleanup.
func (ed *Editor) backup(path string, content []byte) (string, error) {
	if ed.BackupDir == "" {
		return "", nil
	}
	encoded := encodeBackupStem(path)
	timestamp := ed.now().Format("20060102-150405.000000000")
	backupPath := filepath.Join(ed.BackupDir, fmt.Sprintf("%s.%s.bak", encoded, timestamp))

	if err := ed.FS.CreateDir(ed.BackupDir); err != nil {
		return "", err
	}
	if err := ed.FS.WriteFile(backupPath, content); err != nil {
		return "", err
	}
	if err := ed.cleanupOldBackups(encoded); err != nil {
		// Best-effort, as amanmcp's own cleanupOldBackups call site treats it:
		// the backup itself already succeeded.
		_ = err
	}
	return backupPath, nil
}

func (ed *Editor) cleanupOldBackups(encodedStem string) error {
	entries, err := ed.FS.ReadDir(ed.BackupDir)
	if err != nil {
		return err
	}
	prefix := encodedStem + "."
	var names []string
	for _, e := range entries {
		if !e.IsDir && strings.HasPrefix(e.Name, prefix) && strings.HasSuffix(e.Name, ".bak") {
			names = append(names, e.Name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names))) // timestamp suffix sorts lexicographically
	if len(names) <= ed.BackupsPerFile {
		return nil
	}
	for _, name := range names[ed.BackupsPerFile:] {
		_ = ed.FS.DeleteFile(filepath.Join(ed.BackupDir, name))
	}
	return nil
}

// encodeBackupStem flattens a slash-separated path into a single filename
// component: each separator becomes "_" and each literal underscore
// becomes "__". The result is not always reversible: "a/_b" and "a_/b"
// both encode to "a___b".
func encodeBackupStem(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '/', '\\':
			b.WriteByte('_')
		case '_':
			b.WriteString("__")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
