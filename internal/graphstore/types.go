package graphstore

import (
	"time"

	"github.com/plokeai/plokecore/pkg/identity"
)

// Validity is the bitemporal marker attached to every observability
// row: the moment it became true and whether it still is. Rows are
// never deleted on invalidation, only marked — the same
// propose-then-apply discipline internal/proposal uses for edits
// applies here to conversation/tool-call history.
type Validity struct {
	Millis  int64
	IsValid bool
}

// NowValid stamps a Validity as true as of now.
func NowValid(now time.Time) Validity {
	return Validity{Millis: now.UnixMilli(), IsValid: true}
}

// NodeRecord is one row in the single generalized nodes table shared
// by every item kind (function, struct, enum, ... — see
// identity.ItemKind). Kind discriminates which one a row represents,
// and Payload carries kind-specific structure as opaque JSON
// (signature, field list, variant list, ...) so the relational schema
// doesn't need a column per kind-specific attribute.
type NodeRecord struct {
	NodeID      identity.NodeID
	Kind        identity.ItemKind
	Name        string
	FilePath    string
	ParentID    *identity.NodeID
	TrackingHash string
	Start, End  int    // byte range of this node's source within FilePath
	Payload     []byte // kind-specific JSON, e.g. {"signature": "...", "fields": [...]}
}

// EmbeddingRecord is one row in the embedding relation, keyed by
// (node_id, embedding_model, dims) per spec.md §4.3.
type EmbeddingRecord struct {
	NodeID    identity.NodeID
	Model     string
	Dims      int
	Vector    []float32
	UpdatedAt int64
}

// ConversationTurn is one row of the bitemporal conversation_turn
// relation: a single user or assistant message, kept even after
// invalidation (edited/regenerated) for audit.
type ConversationTurn struct {
	ID       string
	Role     string
	Content  string
	Validity Validity
}

// ToolCall is one row of the bitemporal tool_call relation: a single
// dispatched tool invocation and its outcome.
type ToolCall struct {
	ID         string
	RequestID  string
	ToolName   string
	ArgsJSON   string
	ResultJSON string
	Validity   Validity
}
