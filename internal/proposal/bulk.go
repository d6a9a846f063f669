package proposal

import (
	"bytes"
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/plokeai/plokecore/pkg/ioactor"
)

// byteRange is a half-open [Start, End) span within one file.
type byteRange struct {
	path  string
	start int
	end   int
}

// BulkOutcome is one proposal's fate within an ApprovePendingEdits
// pass: either it was applied (Result set) or marked Stale because a
// newer pending proposal claimed an overlapping range (StaleReason
// set).
type BulkOutcome struct {
	RequestID   uuid.UUID
	Result      ApplyResult
	StaleReason string
}

// ApprovePendingEdits approves every currently Pending proposal in
// reg. Proposals are considered newest-first (by ProposedAtMs, ties
// broken by RequestID descending); the first proposal to claim a
// file byte-range wins it, and any older pending proposal whose range
// overlaps an already-claimed one is marked Stale instead of applied.
// Whole-file (non-semantic) edits and proposals with no explicit edit
// list claim the entire file.
func ApprovePendingEdits(ctx context.Context, reg *Registry, io *ioactor.Handle) []BulkOutcome {
	pending := reg.Pending()
	if len(pending) == 0 {
		return nil
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].ProposedAtMs != pending[j].ProposedAtMs {
			return pending[i].ProposedAtMs > pending[j].ProposedAtMs
		}
		return bytes.Compare(pending[i].RequestID[:], pending[j].RequestID[:]) > 0
	})

	occupied := make(map[string][]byteRange)
	var toApply, toStale []uuid.UUID

	for _, p := range pending {
		ranges := proposalRanges(p)
		if overlapsExisting(occupied, ranges) {
			toStale = append(toStale, p.RequestID)
			continue
		}
		markOccupied(occupied, ranges)
		toApply = append(toApply, p.RequestID)
	}

	var out []BulkOutcome
	for _, id := range toStale {
		p, ok := reg.Get(id)
		if !ok {
			continue
		}
		p.Status = StaleStatus("Overlaps with newer edit proposal")
		reg.Put(p)
		out = append(out, BulkOutcome{RequestID: id, StaleReason: p.Status.Reason})
	}

	for _, id := range toApply {
		result, _, err := ApproveEdits(ctx, reg, io, id)
		if err != nil {
			continue
		}
		out = append(out, BulkOutcome{RequestID: id, Result: result})
	}

	return out
}

// DenyPendingEdits denies every currently Pending proposal in reg and
// returns the ids it acted on.
func DenyPendingEdits(reg *Registry) []uuid.UUID {
	pending := reg.Pending()
	ids := make([]uuid.UUID, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.RequestID)
	}
	for _, id := range ids {
		_, _ = DenyEdits(reg, id)
	}
	return ids
}

func proposalRanges(p EditProposal) []byteRange {
	var ranges []byteRange
	for _, e := range p.Edits {
		start, end := normalizeRange(e.Start, e.End)
		ranges = append(ranges, byteRange{path: e.Path, start: start, end: end})
	}
	for _, e := range p.EditsNS {
		ranges = append(ranges, byteRange{path: e.Path, start: 0, end: math.MaxInt})
	}
	if len(ranges) == 0 {
		for _, path := range p.Files {
			ranges = append(ranges, byteRange{path: path, start: 0, end: math.MaxInt})
		}
	}
	return ranges
}

// normalizeRange orders start/end and widens a zero-width range by
// one so it still registers as occupying a byte, not nothing.
func normalizeRange(start, end int) (int, int) {
	min, max := start, end
	if start > end {
		min, max = end, start
	}
	if min == max {
		return min, min + 1
	}
	return min, max
}

func overlapsExisting(occupied map[string][]byteRange, ranges []byteRange) bool {
	for _, r := range ranges {
		for _, ex := range occupied[r.path] {
			if r.start < ex.end && ex.start < r.end {
				return true
			}
		}
	}
	return false
}

func markOccupied(occupied map[string][]byteRange, ranges []byteRange) {
	for _, r := range ranges {
		occupied[r.path] = append(occupied[r.path], r)
	}
}
