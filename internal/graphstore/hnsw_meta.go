package graphstore

import (
	"encoding/gob"
	"os"

	"github.com/plokeai/plokecore/pkg/identity"
)

// indexMeta is the gob-encoded sidecar for one Index's id mapping,
// mirroring the teacher's hnswMetadata persistence shape but keyed by
// NodeID instead of an opaque string id.
type indexMeta struct {
	IDMap   map[identity.NodeID]uint64
	NextKey uint64
	Config  VectorIndexConfig
}

func saveIndexMeta(path string, idx *Index) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	meta := indexMeta{IDMap: idx.idMap, NextKey: idx.nextKey, Config: idx.config}
	if err := gob.NewEncoder(f).Encode(meta); err != nil {
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

func loadIndexMeta(path string, idx *Index) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var meta indexMeta
	if err := gob.NewDecoder(f).Decode(&meta); err != nil {
		return err
	}

	idx.idMap = meta.IDMap
	idx.nextKey = meta.NextKey
	idx.config = meta.Config
	idx.keyMap = make(map[uint64]identity.NodeID, len(meta.IDMap))
	for id, key := range idx.idMap {
		idx.keyMap[key] = id
	}
	return nil
}
