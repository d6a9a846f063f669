package proposal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/plokeai/plokecore/pkg/identity"
	"github.com/plokeai/plokecore/pkg/ioactor"
)

// wireEditProposal and wireCreateFileProposal are the on-disk JSON
// shapes for Registry/CreateRegistry snapshots. Kept separate from the
// in-memory types so a future field rename doesn't silently change
// the persisted format.
type wireEditProposal struct {
	RequestID    string                 `json:"request_id"`
	ParentID     string                 `json:"parent_id"`
	CallID       string                 `json:"call_id"`
	IsSemantic   bool                   `json:"is_semantic"`
	Files        []string               `json:"files"`
	Status       string                 `json:"status"`
	StatusReason string                 `json:"status_reason,omitempty"`
	ProposedAtMs int64                  `json:"proposed_at_ms"`
	Edits        []wireByteRangeEdit    `json:"edits,omitempty"`
	EditsNS      []wireWholeFileEdit    `json:"edits_ns,omitempty"`
}

type wireByteRangeEdit struct {
	Path        string `json:"path"`
	ContentHash string `json:"content_hash"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	New         string `json:"new"`
}

type wireWholeFileEdit struct {
	Path        string `json:"path"`
	ContentHash string `json:"content_hash"`
	New         string `json:"new"`
}

// SaveRegistry writes reg's current snapshot to path as JSON, using a
// temp-file-then-rename so readers never observe a partial write.
func SaveRegistry(reg *Registry, path string) error {
	items := reg.Snapshot()
	wire := make([]wireEditProposal, len(items))
	for i, p := range items {
		w := wireEditProposal{
			RequestID:    p.RequestID.String(),
			ParentID:     p.ParentID.String(),
			CallID:       p.CallID,
			IsSemantic:   p.IsSemantic,
			Files:        p.Files,
			Status:       p.Status.Kind.String(),
			StatusReason: p.Status.Reason,
			ProposedAtMs: p.ProposedAtMs,
		}
		for _, e := range p.Edits {
			w.Edits = append(w.Edits, wireByteRangeEdit{Path: e.Path, ContentHash: e.ContentHash.UUID.String(), Start: e.Start, End: e.End, New: e.New})
		}
		for _, e := range p.EditsNS {
			w.EditsNS = append(w.EditsNS, wireWholeFileEdit{Path: e.Path, ContentHash: e.ContentHash.UUID.String(), New: e.New})
		}
		wire[i] = w
	}
	return atomicWriteJSON(path, wire)
}

// LoadRegistry reads a snapshot previously written by SaveRegistry and
// populates reg with it. A missing file is not an error; it simply
// leaves reg empty, matching a fresh workspace with no staged edits.
func LoadRegistry(reg *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read proposal state: %w", err)
	}

	var wire []wireEditProposal
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("parse proposal state: %w", err)
	}

	items := make([]EditProposal, 0, len(wire))
	for _, w := range wire {
		p := EditProposal{
			CallID:       w.CallID,
			IsSemantic:   w.IsSemantic,
			Files:        w.Files,
			Status:       Status{Kind: statusKindFromString(w.Status), Reason: w.StatusReason},
			ProposedAtMs: w.ProposedAtMs,
		}
		if id, perr := uuid.Parse(w.RequestID); perr == nil {
			p.RequestID = id
		}
		if id, perr := uuid.Parse(w.ParentID); perr == nil {
			p.ParentID = id
		}
		for _, e := range w.Edits {
			p.Edits = append(p.Edits, ioactor.ByteRangeEdit{
				Path:        e.Path,
				ContentHash: identity.TrackingHash{UUID: parseUUIDOrNil(e.ContentHash)},
				Start:       e.Start,
				End:         e.End,
				New:         e.New,
			})
		}
		for _, e := range w.EditsNS {
			p.EditsNS = append(p.EditsNS, ioactor.WholeFileEdit{
				Path:        e.Path,
				ContentHash: identity.TrackingHash{UUID: parseUUIDOrNil(e.ContentHash)},
				New:         e.New,
			})
		}
		items = append(items, p)
	}
	reg.Load(items)
	return nil
}

func parseUUIDOrNil(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func statusKindFromString(s string) StatusKind {
	switch s {
	case "pending":
		return Pending
	case "approved":
		return Approved
	case "denied":
		return Denied
	case "applied":
		return Applied
	case "failed":
		return Failed
	case "stale":
		return Stale
	default:
		return Pending
	}
}

type wireCreateFileProposal struct {
	RequestID    string              `json:"request_id"`
	ParentID     string              `json:"parent_id"`
	CallID       string              `json:"call_id"`
	Files        []string            `json:"files"`
	Status       string              `json:"status"`
	StatusReason string              `json:"status_reason,omitempty"`
	ProposedAtMs int64               `json:"proposed_at_ms"`
	Creates      []CreateFileRequest `json:"creates,omitempty"`
}

// SaveCreateRegistry writes reg's current snapshot to path as JSON.
func SaveCreateRegistry(reg *CreateRegistry, path string) error {
	items := reg.Snapshot()
	wire := make([]wireCreateFileProposal, len(items))
	for i, p := range items {
		wire[i] = wireCreateFileProposal{
			RequestID:    p.RequestID.String(),
			ParentID:     p.ParentID.String(),
			CallID:       p.CallID,
			Files:        p.Files,
			Status:       p.Status.Kind.String(),
			StatusReason: p.Status.Reason,
			ProposedAtMs: p.ProposedAtMs,
			Creates:      p.Creates,
		}
	}
	return atomicWriteJSON(path, wire)
}

// LoadCreateRegistry reads a snapshot previously written by
// SaveCreateRegistry. A missing file leaves reg empty.
func LoadCreateRegistry(reg *CreateRegistry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read create-proposal state: %w", err)
	}

	var wire []wireCreateFileProposal
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("parse create-proposal state: %w", err)
	}

	items := make([]CreateFileProposal, 0, len(wire))
	for _, w := range wire {
		p := CreateFileProposal{
			CallID:       w.CallID,
			Files:        w.Files,
			Status:       Status{Kind: statusKindFromString(w.Status), Reason: w.StatusReason},
			ProposedAtMs: w.ProposedAtMs,
			Creates:      w.Creates,
		}
		if id, perr := uuid.Parse(w.RequestID); perr == nil {
			p.RequestID = id
		}
		if id, perr := uuid.Parse(w.ParentID); perr == nil {
			p.ParentID = id
		}
		items = append(items, p)
	}
	reg.Load(items)
	return nil
}

func atomicWriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create proposal state dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proposal state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write proposal state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename proposal state: %w", err)
	}
	return nil
}
