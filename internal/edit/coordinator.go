package edit

import (
	"fmt"

	coreerrors "github.com/standardbeagle/smart-context/internal/errors"
	"github.com/standardbeagle/smart-context/internal/fsport"
)

// BatchItem is one file's worth of edit descriptors within a
// applyBatchEdits call.
type BatchItem struct {
	File  string
	Edits []Descriptor
}

// Coordinator sequences edit requests through the Resolver, Editor, and
// History, per spec.md §4.8's Edit Coordinator responsibilities.
type Coordinator struct {
	FS       fsport.FS
	Resolver *Resolver
	Editor   *Editor
	History  *History
}

// NewCoordinator wires a Resolver/Editor/History triple sharing one
// filesystem port.
func NewCoordinator(fs fsport.FS, resolver *Resolver, editor *Editor, history *History) *Coordinator {
	return &Coordinator{FS: fs, Resolver: resolver, Editor: editor, History: history}
}

// ApplyEdits resolves every descriptor against file's current content,
// delegates the splice-and-write to the Editor, and — on success and when
// not a dry run — pushes the resulting Operation to History.
func (c *Coordinator) ApplyEdits(file string, descriptors []Descriptor, dryRun bool) (ApplyResult, error) {
	rawContent, err := c.FS.ReadFile(file)
	if err != nil {
		return ApplyResult{}, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindTransient, "read failed", err)
	}

	resolved := make([]ResolvedEdit, 0, len(descriptors))
	var normalizedContent []byte
	for _, d := range descriptors {
		re, norm, err := c.Resolver.Resolve(file, rawContent, d)
		if err != nil {
			return ApplyResult{}, err
		}
		resolved = append(resolved, re)
		normalizedContent = norm // every descriptor normalizes the same raw content identically
	}

	result, err := c.Editor.ApplyEdits(file, normalizedContent, resolved, dryRun)
	if err != nil {
		return ApplyResult{}, err
	}
	if !dryRun && result.Operation != nil {
		if err := c.History.Push(*result.Operation); err != nil {
			return ApplyResult{}, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindTransient, "history push failed", err)
		}
	}
	return result, nil
}

// ApplyBatchEdits runs each item's edits, per spec.md §4.8:
//   - dryRun: validate each file independently; the first failure returns
//     BatchDryRunFailed naming that file, otherwise success.
//   - apply: sequential application; on the first failure, the previously
//     applied files' inverseEdits are rolled back in reverse order and
//     BatchApplyFailed names the failing file. On full success, one
//     BatchOperation (the per-file Operations) is pushed to History.
func (c *Coordinator) ApplyBatchEdits(items []BatchItem, dryRun bool) ([]ApplyResult, error) {
	if dryRun {
		results := make([]ApplyResult, 0, len(items))
		for _, item := range items {
			res, err := c.ApplyEdits(item.File, item.Edits, true)
			if err != nil {
				return nil, coreerrors.Wrap(coreerrors.CodeBatchDryRunFailed, coreerrors.KindValidation,
					fmt.Sprintf("dry run failed for %s", item.File), err)
			}
			results = append(results, res)
		}
		return results, nil
	}

	var applied []Operation
	results := make([]ApplyResult, 0, len(items))
	for _, item := range items {
		res, err := c.applyWithoutHistory(item.File, item.Edits)
		if err != nil {
			c.rollback(applied)
			return nil, coreerrors.Wrap(coreerrors.CodeBatchApplyFailed, coreerrors.KindTransient,
				fmt.Sprintf("apply failed for %s, rolled back %d prior file(s)", item.File, len(applied)), err)
		}
		if res.Operation != nil {
			applied = append(applied, *res.Operation)
		}
		results = append(results, res)
	}

	if err := c.History.PushBatch(applied); err != nil {
		return nil, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindTransient, "history push failed", err)
	}
	return results, nil
}

// applyWithoutHistory runs one file's edits through Resolver+Editor but
// does not touch History — batch apply only pushes once, as a single
// BatchOperation, after every file has succeeded.
func (c *Coordinator) applyWithoutHistory(file string, descriptors []Descriptor) (ApplyResult, error) {
	rawContent, err := c.FS.ReadFile(file)
	if err != nil {
		return ApplyResult{}, coreerrors.Wrap(coreerrors.CodeInternalError, coreerrors.KindTransient, "read failed", err)
	}
	resolved := make([]ResolvedEdit, 0, len(descriptors))
	var normalizedContent []byte
	for _, d := range descriptors {
		re, norm, err := c.Resolver.Resolve(file, rawContent, d)
		if err != nil {
			return ApplyResult{}, err
		}
		resolved = append(resolved, re)
		normalizedContent = norm
	}
	return c.Editor.ApplyEdits(file, normalizedContent, resolved, false)
}

// rollback applies each operation's inverseEdits in reverse order,
// restoring every previously-applied file to its pre-batch content.
func (c *Coordinator) rollback(applied []Operation) {
	for i := len(applied) - 1; i >= 0; i-- {
		_ = c.applyInverse(applied[i])
	}
}

func (c *Coordinator) applyInverse(op Operation) error {
	content, err := c.FS.ReadFile(op.File)
	if err != nil {
		return err
	}
	edits := make([]ResolvedEdit, 0, len(op.InverseEdits))
	for _, ie := range op.InverseEdits {
		edits = append(edits, ResolvedEdit{IndexRange: ie.Range, ReplacementString: ie.Replacement})
	}
	_, err = c.Editor.ApplyEdits(op.File, content, edits, false)
	return err
}

func (c *Coordinator) applyForward(op Operation) error {
	content, err := c.FS.ReadFile(op.File)
	if err != nil {
		return err
	}
	_, err = c.Editor.ApplyEdits(op.File, content, op.ForwardEdits, false)
	return err
}

// Undo pops the most recent operation (or batch) and re-applies its
// inverseEdits file by file.
func (c *Coordinator) Undo() error {
	stored, err := c.History.PopUndo()
	if err != nil {
		return err
	}
	return c.applyStored(stored, c.applyInverse)
}

// Redo pops the most recently undone operation (or batch) and re-applies
// its original forward edits.
func (c *Coordinator) Redo() error {
	stored, err := c.History.PopRedo()
	if err != nil {
		return err
	}
	return c.applyStored(stored, c.applyForward)
}

func (c *Coordinator) applyStored(s StoredOperation, apply func(Operation) error) error {
	if s.Single != nil {
		return apply(*s.Single)
	}
	for _, op := range s.Batch {
		if err := apply(op); err != nil {
			return err
		}
	}
	return nil
}
