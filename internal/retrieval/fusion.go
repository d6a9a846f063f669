package retrieval

import (
	"sort"

	"github.com/plokeai/plokecore/internal/graphstore"
	"github.com/plokeai/plokecore/internal/sparseindex"
	"github.com/plokeai/plokecore/pkg/identity"
)

// fuseRRF combines dense and sparse hit lists with unweighted Reciprocal
// Rank Fusion: score(d) = 1/(k+rank_dense) + 1/(k+rank_sparse), each
// term present only if the node appears in that list. Unlike the
// Weights-parameterized fusion the teacher's hybrid engine uses, this
// has no tunable per-source weight — both signals count equally.
// Ties break on dense score, then on node id for determinism.
func fuseRRF(dense []graphstore.VectorResult, sparse []sparseindex.Hit, k int) []Result {
	if k <= 0 {
		k = RRFConstant
	}
	if len(dense) == 0 && len(sparse) == 0 {
		return []Result{}
	}

	byID := make(map[identity.NodeID]*Result, len(dense)+len(sparse))
	get := func(id identity.NodeID) *Result {
		if r, ok := byID[id]; ok {
			return r
		}
		r := &Result{NodeID: id}
		byID[id] = r
		return r
	}

	for rank, d := range dense {
		r := get(d.NodeID)
		r.DenseScore = float64(d.Score)
		r.DenseRank = rank + 1
		r.Score += 1.0 / float64(k+rank+1)
	}
	for rank, s := range sparse {
		r := get(s.NodeID)
		r.SparseScore = s.Score
		r.SparseRank = rank + 1
		r.Score += 1.0 / float64(k+rank+1)
	}

	results := make([]Result, 0, len(byID))
	for _, r := range byID {
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DenseScore != b.DenseScore {
			return a.DenseScore > b.DenseScore
		}
		return a.NodeID.String() < b.NodeID.String()
	})

	return results
}
