// Package indexpipe drives the batch plan/read/embed/upsert/announce
// loop that keeps graphstore's node and embedding tables current. It
// is the background-goroutine half of indexing — something else (an
// extractor walking the source tree) decides WHAT needs indexing;
// indexpipe decides HOW, in batches, with pause/resume/cancel and
// drift-aware rescans.
package indexpipe

import (
	"context"

	"github.com/plokeai/plokecore/pkg/identity"
)

// PlanItem is one unit of indexing work: the node to (re-)embed, the
// byte range of its source within Path, and the TrackingHash the
// caller last observed for that range (used to detect drift via
// pkg/ioactor's hash-verified reads).
type PlanItem struct {
	NodeID      identity.NodeID
	Path        string
	ContentHash identity.TrackingHash
	Start       int
	End         int
}

// Planner supplies the work a pipeline run should process. A full
// reindex planner enumerates every known node; a Rescanner (below)
// instead only returns items whose on-disk content has drifted from
// what graphstore has recorded.
type Planner interface {
	Plan(ctx context.Context) ([]PlanItem, error)
}

// PlannerFunc adapts a plain function to Planner.
type PlannerFunc func(ctx context.Context) ([]PlanItem, error)

func (f PlannerFunc) Plan(ctx context.Context) ([]PlanItem, error) { return f(ctx) }

// Rescanner decides which already-indexed nodes need re-embedding,
// grounded on ploke-tui's rescan_for_changes: compare each node's
// recorded TrackingHash against what's actually on disk now, and
// replan only the drifted ones.
type Rescanner interface {
	Rescan(ctx context.Context) ([]PlanItem, error)
}
