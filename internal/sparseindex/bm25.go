// Package sparseindex is the BM25 keyword half of retrieval: tokenize
// node bodies/docstrings, score queries with the standard BM25
// formula, and serialize every mutation through a single actor
// goroutine so a search never observes a rebuild half-swapping its
// term tables.
package sparseindex

import (
	"math"

	"github.com/plokeai/plokecore/pkg/identity"
)

// Config tunes the BM25 formula and tokenization policy. Silent on
// these in spec.md, so the defaults below (k1=1.2, b=0.75, the code
// stop-word list, min token length 2) are the grounded teacher
// defaults carried forward.
type Config struct {
	K1             float64
	B              float64
	StopWords      []string
	MinTokenLength int
}

// DefaultConfig returns the teacher-grounded BM25 defaults.
func DefaultConfig() Config {
	return Config{K1: 1.2, B: 0.75, StopWords: DefaultCodeStopWords, MinTokenLength: 2}
}

// doc is one indexed document's term-frequency table and length.
type doc struct {
	termFreq map[string]int
	length   int
}

// Table is the in-memory BM25 index: per-document term frequencies,
// per-term document frequency, and the running average document
// length the BM25 formula needs. Not safe for concurrent use directly
// — callers go through Index's actor goroutine instead.
type Table struct {
	cfg       Config
	stopWords map[string]struct{}

	docs       map[identity.NodeID]*doc
	docFreq    map[string]int
	totalTerms int
}

func newTable(cfg Config) *Table {
	return &Table{
		cfg:       cfg,
		stopWords: stopWordSet(cfg.StopWords),
		docs:      make(map[identity.NodeID]*doc),
		docFreq:   make(map[string]int),
	}
}

func (t *Table) upsert(id identity.NodeID, text string) {
	tokens := dropStopWords(Tokenize(text, t.cfg.MinTokenLength), t.stopWords)

	if old, exists := t.docs[id]; exists {
		for term := range old.termFreq {
			t.docFreq[term]--
			if t.docFreq[term] <= 0 {
				delete(t.docFreq, term)
			}
		}
		t.totalTerms -= old.length
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	for term := range tf {
		t.docFreq[term]++
	}

	t.docs[id] = &doc{termFreq: tf, length: len(tokens)}
	t.totalTerms += len(tokens)
}

func (t *Table) remove(id identity.NodeID) {
	old, exists := t.docs[id]
	if !exists {
		return
	}
	for term := range old.termFreq {
		t.docFreq[term]--
		if t.docFreq[term] <= 0 {
			delete(t.docFreq, term)
		}
	}
	t.totalTerms -= old.length
	delete(t.docs, id)
}

func (t *Table) avgDocLength() float64 {
	if len(t.docs) == 0 {
		return 0
	}
	return float64(t.totalTerms) / float64(len(t.docs))
}

// Hit is one scored search result.
type Hit struct {
	NodeID identity.NodeID
	Score  float64
}

func (t *Table) search(query string, topK int) []Hit {
	n := len(t.docs)
	if n == 0 {
		return nil
	}

	queryTerms := dropStopWords(Tokenize(query, t.cfg.MinTokenLength), t.stopWords)
	if len(queryTerms) == 0 {
		return nil
	}

	avgdl := t.avgDocLength()
	scores := make(map[identity.NodeID]float64)

	for _, term := range queryTerms {
		df := t.docFreq[term]
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))

		for id, d := range t.docs {
			freq, ok := d.termFreq[term]
			if !ok {
				continue
			}
			denom := float64(freq) + t.cfg.K1*(1-t.cfg.B+t.cfg.B*float64(d.length)/avgdl)
			scores[id] += idf * (float64(freq) * (t.cfg.K1 + 1) / denom)
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, Hit{NodeID: id, Score: score})
	}
	sortHitsDesc(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func sortHitsDesc(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		j := i
		for j > 0 && hits[j-1].Score < hits[j].Score {
			hits[j-1], hits[j] = hits[j], hits[j-1]
			j--
		}
	}
}
