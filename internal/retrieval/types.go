// Package retrieval fuses dense (HNSW vector) and sparse (BM25) search
// over the code graph into one ranked result list, then assembles a
// token-budgeted context string for an LLM turn. It graceful-degrades
// to whichever half of the hybrid is actually available rather than
// failing a query outright.
package retrieval

import "github.com/plokeai/plokecore/pkg/identity"

// Mode controls how much retrieval work a turn is willing to pay for.
type Mode int

const (
	// Off skips retrieval entirely; the caller gets no context.
	Off Mode = iota
	// Light runs a single dense+sparse fused search with no reranking
	// or query expansion.
	Light
	// Heavy additionally runs query expansion and reranking when those
	// hooks are configured on the Engine.
	Heavy
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// Result is one fused, ranked hit against the code graph.
type Result struct {
	NodeID identity.NodeID

	// Score is the final fused score used for ranking (higher is
	// better). Its scale depends on the fusion strategy (RRF scores
	// are small positive floats, not bounded to 0-1).
	Score float64

	DenseScore float64
	DenseRank  int // 1-indexed; 0 if the node wasn't in the dense result list.

	SparseScore float64
	SparseRank  int // 1-indexed; 0 if the node wasn't in the sparse result list.

	// Snippet is populated by the caller (or context assembly) from
	// the node's source text; retrieval itself only ranks node ids.
	Snippet string
}

// Options configures a single Search call.
type Options struct {
	Mode Mode

	// Limit caps the number of fused results returned. 0 means use
	// DefaultLimit.
	Limit int

	// TopKDense/TopKSparse cap how many candidates each half of the
	// hybrid contributes before fusion. 0 means use the defaults.
	TopKDense  int
	TopKSparse int

	// Query is expanded via the configured QueryExpander (Heavy mode
	// only) before being sent to the sparse index; the dense query is
	// always embedded from the original text.
}

const (
	DefaultLimit      = 10
	DefaultTopKDense  = 40
	DefaultTopKSparse = 40
	// RRFConstant is the standard RRF smoothing constant, the same
	// k=60 value the fused search engine uses.
	RRFConstant = 60
)

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.TopKDense <= 0 {
		o.TopKDense = DefaultTopKDense
	}
	if o.TopKSparse <= 0 {
		o.TopKSparse = DefaultTopKSparse
	}
	return o
}
