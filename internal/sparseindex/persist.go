package sparseindex

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/plokeai/plokecore/pkg/identity"
)

// wireDoc and wireTable are the gob-encoded sidecar shape, decoupled
// from Table's internal map-of-pointers layout the same way
// internal/proposal's wire structs decouple from its in-memory types.
type wireDoc struct {
	TermFreq map[string]int
	Length   int
}

type wireTable struct {
	Cfg        Config
	Docs       map[identity.NodeID]wireDoc
	DocFreq    map[string]int
	TotalTerms int
}

func saveTable(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	wire := wireTable{Cfg: t.cfg, DocFreq: t.docFreq, TotalTerms: t.totalTerms, Docs: make(map[identity.NodeID]wireDoc, len(t.docs))}
	for id, d := range t.docs {
		wire.Docs[id] = wireDoc{TermFreq: d.termFreq, Length: d.length}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(wire); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func loadTable(path string, fallbackCfg Config) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wire wireTable
	if err := gob.NewDecoder(f).Decode(&wire); err != nil {
		return nil, err
	}

	cfg := wire.Cfg
	if cfg.K1 == 0 && cfg.B == 0 {
		cfg = fallbackCfg
	}

	t := newTable(cfg)
	t.docFreq = wire.DocFreq
	t.totalTerms = wire.TotalTerms
	for id, d := range wire.Docs {
		t.docs[id] = &doc{termFreq: d.TermFreq, length: d.Length}
	}
	return t, nil
}
