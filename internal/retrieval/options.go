package retrieval

import "github.com/plokeai/plokecore/internal/search"

// EngineOption configures optional Heavy-mode hooks on an Engine. These
// reuse the teacher's existing interfaces directly — Reranker,
// QueryExpander and Classifier none depend on the teacher's chunk
// store, so they carry over unmodified as extension points rather than
// needing a parallel retrieval-specific copy.
type EngineOption func(*Engine)

// WithReranker attaches a cross-encoder reranker, applied to the fused
// result list only when Options.Mode is Heavy.
func WithReranker(r search.Reranker) EngineOption {
	return func(e *Engine) { e.reranker = r }
}

// WithQueryExpander attaches code-aware synonym expansion for the
// sparse (BM25) query, applied only when Options.Mode is Heavy.
func WithQueryExpander(qe *search.QueryExpander) EngineOption {
	return func(e *Engine) { e.expander = qe }
}

// WithClassifier attaches a query classifier used in Heavy mode to pick
// how many dense/sparse candidates to pull before fusion (a lexical
// query pulls more sparse candidates, a semantic query pulls more
// dense ones).
func WithClassifier(c search.Classifier) EngineOption {
	return func(e *Engine) { e.classifier = c }
}
