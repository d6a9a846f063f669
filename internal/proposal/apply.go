package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/plokeai/plokecore/pkg/ioactor"
)

// ApproveEdits applies a staged EditProposal's edits through io and
// records the outcome in reg. Calling it on an already-Applied or
// already-Denied proposal is a no-op (skipped=true); Approved,
// Failed, and Stale proposals are (re)attempted, matching the
// at-least-once-until-success semantics a human approval loop expects.
func ApproveEdits(ctx context.Context, reg *Registry, io *ioactor.Handle, requestID uuid.UUID) (result ApplyResult, skipped bool, err error) {
	p, ok := reg.Get(requestID)
	if !ok {
		return ApplyResult{}, false, &NotFoundError{RequestID: requestID}
	}

	switch p.Status.Kind {
	case Applied, Denied:
		return ApplyResult{}, true, nil
	}

	if p.IsSemantic {
		result, err = applySemanticEdit(ctx, io, p.Edits)
	} else {
		result, err = applyWholeFileEdit(ctx, io, p.EditsNS)
	}

	if err != nil {
		p.Status = FailedStatus(err.Error())
	} else {
		p.Status = AppliedStatus()
	}
	reg.Put(p)
	return result, false, nil
}

func applySemanticEdit(ctx context.Context, io *ioactor.Handle, edits []ioactor.ByteRangeEdit) (ApplyResult, error) {
	writes, err := io.WriteSnippetsBatch(ctx, edits)
	if err != nil {
		return ApplyResult{}, err
	}
	return collectWriteResults(edits, writes, func(e ioactor.ByteRangeEdit) string { return e.Path }), nil
}

func applyWholeFileEdit(ctx context.Context, io *ioactor.Handle, edits []ioactor.WholeFileEdit) (ApplyResult, error) {
	writes, err := io.WriteBatchNS(ctx, edits)
	if err != nil {
		return ApplyResult{}, err
	}
	return collectWriteResults(edits, writes, func(e ioactor.WholeFileEdit) string { return e.Path }), nil
}

func collectWriteResults[E any](edits []E, writes []ioactor.WriteResult, path func(E) string) ApplyResult {
	out := ApplyResult{Total: len(writes)}
	out.Results = make([]FileOutcome, len(writes))
	for i, w := range writes {
		fo := FileOutcome{FilePath: path(edits[i])}
		if w.Err != nil {
			fo.Err = w.Err.Error()
		} else {
			fo.NewHash = w.NewHash.String()
			out.Applied++
		}
		out.Results[i] = fo
	}
	return out
}

// DenyEdits marks a staged proposal Denied. Pending, Approved, Failed,
// and Stale proposals transition; Applied and already-Denied
// proposals are left untouched (idempotent no-op, skipped=true).
func DenyEdits(reg *Registry, requestID uuid.UUID) (skipped bool, err error) {
	p, ok := reg.Get(requestID)
	if !ok {
		return false, &NotFoundError{RequestID: requestID}
	}
	switch p.Status.Kind {
	case Denied, Applied:
		return true, nil
	}
	p.Status = DeniedStatus()
	reg.Put(p)
	return false, nil
}

// ApproveCreations applies a staged CreateFileProposal's file
// creations through io. Same idempotency rules as ApproveEdits.
func ApproveCreations(ctx context.Context, reg *CreateRegistry, io *ioactor.Handle, requestID uuid.UUID) (result ApplyResult, skipped bool, err error) {
	p, ok := reg.Get(requestID)
	if !ok {
		return ApplyResult{}, false, &NotFoundError{RequestID: requestID, Creation: true}
	}
	switch p.Status.Kind {
	case Applied, Denied:
		return ApplyResult{}, true, nil
	}

	result.Total = len(p.Creates)
	result.Results = make([]FileOutcome, len(p.Creates))
	for i, req := range p.Creates {
		fo := FileOutcome{FilePath: req.Path}
		wr, werr := io.CreateFile(ctx, req.Path, req.Content)
		if werr != nil {
			fo.Err = werr.Error()
		} else {
			fo.NewHash = wr.NewHash.String()
			result.Applied++
		}
		result.Results[i] = fo
	}

	p.Status = AppliedStatus()
	reg.Put(p)
	return result, false, nil
}

// DenyCreations marks a staged CreateFileProposal Denied, with the
// same idempotency rules as DenyEdits.
func DenyCreations(reg *CreateRegistry, requestID uuid.UUID) (skipped bool, err error) {
	p, ok := reg.Get(requestID)
	if !ok {
		return false, &NotFoundError{RequestID: requestID, Creation: true}
	}
	switch p.Status.Kind {
	case Denied, Applied:
		return true, nil
	}
	p.Status = DeniedStatus()
	reg.Put(p)
	return false, nil
}
