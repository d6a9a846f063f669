package sparseindex

import (
	"context"

	"github.com/plokeai/plokecore/pkg/identity"
)

// Status summarizes the index's current state for a UI or health
// check, without requiring a search request round trip.
type Status struct {
	DocCount   int
	TermCount  int
	Rebuilding bool
}

type request struct {
	kind reqKind
	// Rebuild
	snapshot map[identity.NodeID]string
	// Index / Remove
	id   identity.NodeID
	text string
	// Search
	query string
	topK  int
	// Save / Load
	path string

	reply chan response
}

type reqKind int

const (
	reqRebuild reqKind = iota
	reqIndex
	reqRemove
	reqSearch
	reqSave
	reqLoad
	reqStatus
)

type response struct {
	hits []Hit
	err  error
	st   Status
}

// Index is the actor-style front end over Table: every mutation and
// query is a message sent to one goroutine's request channel, so a
// Rebuild can never interleave with a concurrent Search against a
// half-replaced term table — the same style C2's file-io-actor uses
// for serialized disk access.
type Index struct {
	reqs chan request
}

// NewIndex starts the actor goroutine and returns a handle to it. The
// goroutine exits when ctx is cancelled.
func NewIndex(ctx context.Context, cfg Config) *Index {
	idx := &Index{reqs: make(chan request)}
	go idx.run(ctx, cfg)
	return idx
}

func (idx *Index) run(ctx context.Context, cfg Config) {
	table := newTable(cfg)
	rebuilding := false

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-idx.reqs:
			switch req.kind {
			case reqRebuild:
				rebuilding = true
				fresh := newTable(cfg)
				for id, text := range req.snapshot {
					fresh.upsert(id, text)
				}
				table = fresh
				rebuilding = false
				req.reply <- response{}
			case reqIndex:
				table.upsert(req.id, req.text)
				req.reply <- response{}
			case reqRemove:
				table.remove(req.id)
				req.reply <- response{}
			case reqSearch:
				req.reply <- response{hits: table.search(req.query, req.topK)}
			case reqSave:
				req.reply <- response{err: saveTable(req.path, table)}
			case reqLoad:
				loaded, err := loadTable(req.path, cfg)
				if err == nil {
					table = loaded
				}
				req.reply <- response{err: err}
			case reqStatus:
				req.reply <- response{st: Status{DocCount: len(table.docs), TermCount: len(table.docFreq), Rebuilding: rebuilding}}
			}
		}
	}
}

func (idx *Index) send(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	select {
	case idx.reqs <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Rebuild replaces the entire index from snapshot in one atomic swap.
func (idx *Index) Rebuild(ctx context.Context, snapshot map[identity.NodeID]string) error {
	resp, err := idx.send(ctx, request{kind: reqRebuild, snapshot: snapshot})
	if err != nil {
		return err
	}
	return resp.err
}

// IndexDoc upserts a single document's text.
func (idx *Index) IndexDoc(ctx context.Context, id identity.NodeID, text string) error {
	resp, err := idx.send(ctx, request{kind: reqIndex, id: id, text: text})
	if err != nil {
		return err
	}
	return resp.err
}

// Remove drops a document from the index.
func (idx *Index) Remove(ctx context.Context, id identity.NodeID) error {
	resp, err := idx.send(ctx, request{kind: reqRemove, id: id})
	if err != nil {
		return err
	}
	return resp.err
}

// Search scores query against every indexed document and returns the
// top topK hits, best first.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	resp, err := idx.send(ctx, request{kind: reqSearch, query: query, topK: topK})
	if err != nil {
		return nil, err
	}
	return resp.hits, nil
}

// Save persists the index to a gob sidecar at path.
func (idx *Index) Save(ctx context.Context, path string) error {
	resp, err := idx.send(ctx, request{kind: reqSave, path: path})
	if err != nil {
		return err
	}
	return resp.err
}

// Load replaces the index's contents from a gob sidecar at path.
func (idx *Index) Load(ctx context.Context, path string) error {
	resp, err := idx.send(ctx, request{kind: reqLoad, path: path})
	if err != nil {
		return err
	}
	return resp.err
}

// GetStatus reports the index's current document/term counts.
func (idx *Index) GetStatus(ctx context.Context) (Status, error) {
	resp, err := idx.send(ctx, request{kind: reqStatus})
	if err != nil {
		return Status{}, err
	}
	return resp.st, nil
}
