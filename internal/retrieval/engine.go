package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plokeai/plokecore/internal/embed"
	"github.com/plokeai/plokecore/internal/graphstore"
	"github.com/plokeai/plokecore/internal/search"
	"github.com/plokeai/plokecore/internal/sparseindex"
)

// Engine fuses dense (HNSW) and sparse (BM25) search over a graphstore
// + sparseindex pair. It degrades gracefully: a missing active
// embedding set, an embedder error, or an empty sparse table all fall
// back to whichever half of the hybrid is actually usable rather than
// failing the whole query. Both sides returning nothing is a valid,
// non-error empty result.
type Engine struct {
	store    *graphstore.Store
	vectors  *graphstore.IndexSet
	sparse   *sparseindex.Index
	embedder embed.Embedder
	log      *slog.Logger

	reranker   search.Reranker
	expander   *search.QueryExpander
	classifier search.Classifier
}

// NewEngine wires the two halves of the hybrid together. embedder may
// be nil (dense search is then always skipped); sparse may be nil
// likewise for the keyword half.
func NewEngine(store *graphstore.Store, vectors *graphstore.IndexSet, sparse *sparseindex.Index, embedder embed.Embedder, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		vectors:  vectors,
		sparse:   sparse,
		embedder: embedder,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs a fused dense+sparse search and returns results sorted
// best first. An Off mode returns an empty slice with no error.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if opts.Mode == Off {
		return []Result{}, nil
	}
	opts = opts.withDefaults()

	sparseQuery := query
	if opts.Mode == Heavy && e.expander != nil {
		sparseQuery = e.expander.Expand(query)
	}

	topKDense, topKSparse := opts.TopKDense, opts.TopKSparse
	if opts.Mode == Heavy && e.classifier != nil {
		qt, _, err := e.classifier.Classify(ctx, query)
		if err != nil {
			e.log.Warn("retrieval classify failed, using default candidate pool sizes", "error", err)
		} else {
			switch qt {
			case search.QueryTypeLexical:
				topKSparse *= 2
			case search.QueryTypeSemantic:
				topKDense *= 2
			}
		}
	}

	dense, denseErr := e.searchDense(ctx, query, topKDense)
	if denseErr != nil {
		e.log.Warn("dense search unavailable, continuing sparse-only", "error", denseErr)
	}

	sparseHits, sparseErr := e.searchSparse(ctx, sparseQuery, topKSparse)
	if sparseErr != nil {
		e.log.Warn("sparse search unavailable, continuing dense-only", "error", sparseErr)
	}

	if denseErr != nil && sparseErr != nil {
		return nil, fmt.Errorf("retrieval: both dense and sparse search failed: dense=%v sparse=%v", denseErr, sparseErr)
	}

	fused := fuseRRF(dense, sparseHits, RRFConstant)

	if opts.Mode == Heavy && e.reranker != nil && len(fused) > 0 {
		fused = e.rerank(ctx, query, fused)
	}

	if len(fused) > opts.Limit {
		fused = fused[:opts.Limit]
	}
	return fused, nil
}

func (e *Engine) searchDense(ctx context.Context, query string, topK int) ([]graphstore.VectorResult, error) {
	if e.embedder == nil || e.vectors == nil {
		return nil, nil
	}
	model, dims, ok, err := e.store.ActiveEmbeddingSet()
	if err != nil {
		return nil, fmt.Errorf("active embedding set: %w", err)
	}
	if !ok {
		return nil, errors.New("no active embedding set configured")
	}
	idx := e.vectors.Get(model, dims)
	if idx == nil {
		return nil, fmt.Errorf("no vector index loaded for %s@%d", model, dims)
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return idx.Search(vec, topK)
}

func (e *Engine) searchSparse(ctx context.Context, query string, topK int) ([]sparseindex.Hit, error) {
	if e.sparse == nil {
		return nil, nil
	}
	return e.sparse.Search(ctx, query, topK)
}

// rerank scores the fused candidates' node names against the query and
// reorders by the reranker's verdict, preserving fused scores for
// anything the reranker declines to move (its RerankResult.Index maps
// back into fused).
func (e *Engine) rerank(ctx context.Context, query string, fused []Result) []Result {
	docs := make([]string, len(fused))
	for i, r := range fused {
		rec, ok, err := e.store.GetNode(r.NodeID)
		if err != nil || !ok {
			docs[i] = r.NodeID.String()
			continue
		}
		docs[i] = rec.Name + " " + rec.FilePath
	}

	scored, err := e.reranker.Rerank(ctx, query, docs, len(fused))
	if err != nil {
		e.log.Warn("rerank failed, keeping RRF order", "error", err)
		return fused
	}

	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(fused) {
			continue
		}
		r := fused[s.Index]
		r.Score = s.Score
		out = append(out, r)
	}
	return out
}
