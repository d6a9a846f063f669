package graphstore

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/plokeai/plokecore/pkg/identity"
)

// VectorIndexConfig parameterizes one HNSW index the way spec.md's
// "HNSW index primitives" names them: m, ef_construction-equivalent
// (EfSearch), and distance metric.
type VectorIndexConfig struct {
	M        int
	EfSearch int
	Metric   string // "cos" or "l2"
	Dims     int
}

// Index is one HNSW graph over NodeID-keyed vectors for a single
// (model, dims) embedding set. Adapted from the teacher's
// string-ID-keyed HNSWStore: the node mapping here is a NodeID
// rather than an opaque chunk id, and Search results report NodeID +
// score directly instead of a joinable string key.
type Index struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config VectorIndexConfig

	idMap   map[identity.NodeID]uint64
	keyMap  map[uint64]identity.NodeID
	nextKey uint64
}

func newIndex(cfg VectorIndexConfig) *Index {
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}
	if cfg.Metric == "" {
		cfg.Metric = "cos"
	}

	graph := hnsw.NewGraph[uint64]()
	switch cfg.Metric {
	case "l2":
		graph.Distance = hnsw.EuclideanDistance
	default:
		graph.Distance = hnsw.CosineDistance
	}
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &Index{
		graph:  graph,
		config: cfg,
		idMap:  make(map[identity.NodeID]uint64),
		keyMap: make(map[uint64]identity.NodeID),
	}
}

// Add inserts or replaces the vector for id. Lazy deletion is used on
// replace (orphan the old key rather than calling graph.Delete), the
// same workaround the teacher's store carries for a coder/hnsw defect
// around deleting the graph's last node.
func (x *Index) Add(id identity.NodeID, vec []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(vec) != x.config.Dims {
		return &ScriptError{Action: "add", Relation: "hnsw_index", Details: fmt.Sprintf("dimension mismatch: expected %d, got %d", x.config.Dims, len(vec))}
	}

	if old, exists := x.idMap[id]; exists {
		delete(x.keyMap, old)
		delete(x.idMap, id)
	}

	key := x.nextKey
	x.nextKey++

	normalized := make([]float32, len(vec))
	copy(normalized, vec)
	if x.config.Metric == "cos" {
		normalizeInPlace(normalized)
	}

	x.graph.Add(hnsw.MakeNode(key, normalized))
	x.idMap[id] = key
	x.keyMap[key] = id
	return nil
}

// VectorResult is one HNSW search hit.
type VectorResult struct {
	NodeID   identity.NodeID
	Distance float32
	Score    float32
}

// Search returns up to k nearest neighbors to query.
func (x *Index) Search(query []float32, k int) ([]VectorResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(query) != x.config.Dims {
		return nil, &ScriptError{Action: "search", Relation: "hnsw_index", Details: fmt.Sprintf("dimension mismatch: expected %d, got %d", x.config.Dims, len(query))}
	}
	if x.graph.Len() == 0 {
		return nil, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	if x.config.Metric == "cos" {
		normalizeInPlace(normalized)
	}

	nodes := x.graph.Search(normalized, k)
	out := make([]VectorResult, 0, len(nodes))
	for _, n := range nodes {
		id, ok := x.keyMap[n.Key]
		if !ok {
			continue
		}
		dist := x.graph.Distance(normalized, n.Value)
		out = append(out, VectorResult{NodeID: id, Distance: dist, Score: distanceToScore(dist, x.config.Metric)})
	}
	return out, nil
}

// Remove drops id from future search results via lazy deletion.
func (x *Index) Remove(id identity.NodeID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if key, ok := x.idMap[id]; ok {
		delete(x.keyMap, key)
		delete(x.idMap, id)
	}
}

// Len reports the number of live (non-orphaned) vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.idMap)
}

func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

func distanceToScore(distance float32, metric string) float32 {
	if metric == "l2" {
		return 1.0 / (1.0 + distance)
	}
	return 1.0 - distance/2.0
}

// IndexSet manages one Index per (model, dims) embedding set, giving
// the CreateIndex/HasIndex/DropIndex lifecycle spec.md §4.3 asks for
// on top of coder/hnsw's bare Graph type.
type IndexSet struct {
	mu      sync.RWMutex
	indices map[string]*Index
	dir     string
}

func indexSetKey(model string, dims int) string {
	return fmt.Sprintf("%s@%d", model, dims)
}

// NewIndexSet builds an empty set persisting under dir (empty dir
// disables Save/Load).
func NewIndexSet(dir string) *IndexSet {
	return &IndexSet{indices: make(map[string]*Index), dir: dir}
}

// CreateIndex builds a fresh index for (model, dims), replacing any
// existing one.
func (s *IndexSet) CreateIndex(model string, dims int, cfg VectorIndexConfig) *Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.Dims = dims
	idx := newIndex(cfg)
	s.indices[indexSetKey(model, dims)] = idx
	return idx
}

// HasIndex reports whether an index exists for (model, dims).
func (s *IndexSet) HasIndex(model string, dims int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indices[indexSetKey(model, dims)]
	return ok
}

// Get returns the index for (model, dims), or nil if DropIndex/never
// created.
func (s *IndexSet) Get(model string, dims int) *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indices[indexSetKey(model, dims)]
}

// DropIndex removes the index for (model, dims) and its on-disk
// persistence, if any.
func (s *IndexSet) DropIndex(model string, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indices, indexSetKey(model, dims))

	if s.dir == "" {
		return nil
	}
	path := s.indexPath(model, dims)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return newScriptError("drop", "hnsw_index", err)
	}
	if err := os.Remove(path + ".meta"); err != nil && !os.IsNotExist(err) {
		return newScriptError("drop", "hnsw_index", err)
	}
	return nil
}

func (s *IndexSet) indexPath(model string, dims int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%d.hnsw", sanitizeFileComponent(model), dims))
}

func sanitizeFileComponent(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '/' || r == '\\' || r == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// Save persists idx for (model, dims) to disk (graph export + gob
// metadata), matching the teacher's atomic temp-file-then-rename save.
func (s *IndexSet) Save(model string, dims int) error {
	if s.dir == "" {
		return nil
	}
	idx := s.Get(model, dims)
	if idx == nil {
		return &ScriptError{Action: "save", Relation: "hnsw_index", Details: "no such index"}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return newScriptError("save", "hnsw_index", err)
	}

	path := s.indexPath(model, dims)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return newScriptError("save", "hnsw_index", err)
	}
	if err := idx.graph.Export(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return newScriptError("save", "hnsw_index", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return newScriptError("save", "hnsw_index", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newScriptError("save", "hnsw_index", err)
	}

	return saveIndexMeta(path+".meta", idx)
}

// Load reads idx for (model, dims) back from disk into a fresh Index
// built with cfg.
func (s *IndexSet) Load(model string, dims int, cfg VectorIndexConfig) (*Index, error) {
	if s.dir == "" {
		return nil, &ScriptError{Action: "load", Relation: "hnsw_index", Details: "index set has no persistence directory"}
	}
	cfg.Dims = dims
	idx := newIndex(cfg)
	path := s.indexPath(model, dims)

	if err := loadIndexMeta(path+".meta", idx); err != nil {
		return nil, newScriptError("load", "hnsw_index", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newScriptError("load", "hnsw_index", err)
	}
	defer f.Close()

	if err := idx.graph.Import(bufio.NewReader(f)); err != nil {
		return nil, newScriptError("load", "hnsw_index", err)
	}

	s.mu.Lock()
	s.indices[indexSetKey(model, dims)] = idx
	s.mu.Unlock()
	return idx, nil
}
