// Package graphstore is the relational+vector persistence layer:
// per-item-kind node tables, embedding relations keyed by
// (node_id, model, dims), an HNSW index per embedding set, and
// bitemporal observability relations for conversation turns and tool
// calls. It stands in for the generic graph+vector engine spec.md
// treats as an external dependency, using modernc.org/sqlite for the
// relational side and coder/hnsw for the vector index primitive.
package graphstore

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/plokeai/plokecore/pkg/identity"
)

// nodeKey renders a NodeID as a round-trippable storage key — unlike
// NodeID.String(), which truncates the UUID for display, this keeps
// the full UUID so parseNodeID can recover the exact id.
func nodeKey(id identity.NodeID) string {
	return id.Variant.String() + ":" + id.UUID.String()
}

// Store is the sqlite-backed relational half of the adapter. It is
// safe for concurrent use; a single RWMutex serializes writers while
// letting reads proceed concurrently, matching sqlite's own WAL
// concurrency model one level up in Go-land.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates or opens the sqlite database at path (":memory:" for an
// ephemeral store), applies WAL mode, and runs the idempotent schema
// migration under a gofrs/flock guard so two processes racing to
// initialize the same data directory don't corrupt each other's DDL.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newScriptError("open", "database", err)
		}

		lock := flock.New(filepath.Join(dir, ".graphstore-migrate.lock"))
		if err := lock.Lock(); err != nil {
			return nil, newScriptError("open", "database", err)
		}
		defer lock.Unlock()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, newScriptError("open", "database", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, newScriptError("open", "database", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, newScriptError("migrate", "schema", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertNode inserts or replaces a node record.
func (s *Store) UpsertNode(n NodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *string
	if n.ParentID != nil {
		v := nodeKey(*n.ParentID)
		parent = &v
	}

	_, err := s.db.Exec(
		`INSERT INTO nodes (node_id, kind, name, file_path, parent_id, tracking_hash, start_byte, end_byte, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(node_id) DO UPDATE SET
			kind=excluded.kind, name=excluded.name, file_path=excluded.file_path,
			parent_id=excluded.parent_id, tracking_hash=excluded.tracking_hash,
			start_byte=excluded.start_byte, end_byte=excluded.end_byte, payload=excluded.payload`,
		nodeKey(n.NodeID), uint8(n.Kind), n.Name, n.FilePath, parent, n.TrackingHash, n.Start, n.End, n.Payload,
	)
	if err != nil {
		return newScriptError("upsert", "nodes", err)
	}
	return nil
}

// GetNode fetches one node by id, or ok=false if absent.
func (s *Store) GetNode(id identity.NodeID) (rec NodeRecord, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT node_id, kind, name, file_path, parent_id, tracking_hash, start_byte, end_byte, payload FROM nodes WHERE node_id = ?`,
		nodeKey(id),
	)
	n, scanErr := scanNode(row)
	if scanErr == sql.ErrNoRows {
		return NodeRecord{}, false, nil
	}
	if scanErr != nil {
		return NodeRecord{}, false, newScriptError("get", "nodes", scanErr)
	}
	return n, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (NodeRecord, error) {
	var rec NodeRecord
	var idStr string
	var kind uint8
	var parent sql.NullString

	if err := row.Scan(&idStr, &kind, &rec.Name, &rec.FilePath, &parent, &rec.TrackingHash, &rec.Start, &rec.End, &rec.Payload); err != nil {
		return NodeRecord{}, err
	}

	parsed, err := parseNodeID(idStr)
	if err != nil {
		return NodeRecord{}, err
	}
	rec.NodeID = parsed
	rec.Kind = identity.ItemKind(kind)

	if parent.Valid {
		p, err := parseNodeID(parent.String)
		if err != nil {
			return NodeRecord{}, err
		}
		rec.ParentID = &p
	}
	return rec, nil
}

// QueryByKind returns every node of the given kind.
func (s *Store) QueryByKind(kind identity.ItemKind) ([]NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT node_id, kind, name, file_path, parent_id, tracking_hash, start_byte, end_byte, payload FROM nodes WHERE kind = ?`,
		uint8(kind),
	)
	if err != nil {
		return nil, newScriptError("query", "nodes", err)
	}
	defer rows.Close()

	var out []NodeRecord
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, newScriptError("query", "nodes", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// UpsertEmbedding writes one (node_id, model, dims) embedding row.
func (s *Store) UpsertEmbedding(e EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO embeddings (node_id, model, dims, vector, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(node_id, model, dims) DO UPDATE SET vector=excluded.vector, updated_at=excluded.updated_at`,
		nodeKey(e.NodeID), e.Model, e.Dims, encodeVector(e.Vector), e.UpdatedAt,
	)
	if err != nil {
		return newScriptError("upsert", "embeddings", err)
	}
	return nil
}

// EmbeddingsForModel returns every embedding row for (model, dims), in
// decoded form — used to rebuild an Index from disk without a
// separate HNSW sidecar, e.g. after the sidecar is lost or stale.
func (s *Store) EmbeddingsForModel(model string, dims int) ([]EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT node_id, vector, updated_at FROM embeddings WHERE model = ? AND dims = ?`,
		model, dims,
	)
	if err != nil {
		return nil, newScriptError("query", "embeddings", err)
	}
	defer rows.Close()

	var out []EmbeddingRecord
	for rows.Next() {
		var idStr string
		var vecBytes []byte
		var updatedAt int64
		if err := rows.Scan(&idStr, &vecBytes, &updatedAt); err != nil {
			return nil, newScriptError("query", "embeddings", err)
		}
		id, err := parseNodeID(idStr)
		if err != nil {
			return nil, newScriptError("query", "embeddings", err)
		}
		out = append(out, EmbeddingRecord{NodeID: id, Model: model, Dims: dims, Vector: decodeVector(vecBytes), UpdatedAt: updatedAt})
	}
	return out, nil
}

// SetActiveEmbeddingSet marks (model, dims) as the set retrieval and
// indexing should use.
func (s *Store) SetActiveEmbeddingSet(model string, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO active_embedding_set (id, model, dims) VALUES (0, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET model=excluded.model, dims=excluded.dims`,
		model, dims,
	)
	if err != nil {
		return newScriptError("set", "active_embedding_set", err)
	}
	return nil
}

// ActiveEmbeddingSet reports the current (model, dims), or ok=false if
// none has been set yet.
func (s *Store) ActiveEmbeddingSet() (model string, dims int, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT model, dims FROM active_embedding_set WHERE id = 0`)
	if scanErr := row.Scan(&model, &dims); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", 0, false, nil
		}
		return "", 0, false, newScriptError("get", "active_embedding_set", scanErr)
	}
	return model, dims, true, nil
}

// CountUnembeddedNonfiles counts nodes of any non-file-level kind (all
// kinds in this schema are non-file, since source files themselves
// aren't indexed as nodes) that have no row in embeddings for the
// active embedding set.
func (s *Store) CountUnembeddedNonfiles() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, dims, ok, err := s.activeEmbeddingSetLocked()
	if err != nil {
		return 0, err
	}
	if !ok {
		var total int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&total); err != nil {
			return 0, newScriptError("count", "nodes", err)
		}
		return total, nil
	}

	var count int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM nodes n
		 WHERE NOT EXISTS (
			SELECT 1 FROM embeddings e
			WHERE e.node_id = n.node_id AND e.model = ? AND e.dims = ?
		 )`,
		model, dims,
	).Scan(&count)
	if err != nil {
		return 0, newScriptError("count", "nodes", err)
	}
	return count, nil
}

func (s *Store) activeEmbeddingSetLocked() (string, int, bool, error) {
	var model string
	var dims int
	row := s.db.QueryRow(`SELECT model, dims FROM active_embedding_set WHERE id = 0`)
	if err := row.Scan(&model, &dims); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, false, nil
		}
		return "", 0, false, newScriptError("get", "active_embedding_set", err)
	}
	return model, dims, true, nil
}

// EnumerateMetadataModels lists every distinct tracking-hash "model"
// of node present — in practice the set of item kinds that have at
// least one node, reported by name.
func (s *Store) EnumerateMetadataModels() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT DISTINCT kind FROM nodes ORDER BY kind`)
	if err != nil {
		return nil, newScriptError("enumerate", "nodes", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var kind uint8
		if err := rows.Scan(&kind); err != nil {
			return nil, newScriptError("enumerate", "nodes", err)
		}
		out = append(out, identity.ItemKind(kind).String())
	}
	return out, nil
}

// EnumerateVectorModels lists every distinct (model, dims) pair that
// has at least one embedding row, e.g. for a UI model picker.
func (s *Store) EnumerateVectorModels() ([]EmbeddingModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT DISTINCT model, dims FROM embeddings ORDER BY model, dims`)
	if err != nil {
		return nil, newScriptError("enumerate", "embeddings", err)
	}
	defer rows.Close()

	var out []EmbeddingModel
	for rows.Next() {
		var m EmbeddingModel
		if err := rows.Scan(&m.Model, &m.Dims); err != nil {
			return nil, newScriptError("enumerate", "embeddings", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// EmbeddingModel names one (model, dims) pair with at least one row.
type EmbeddingModel struct {
	Model string
	Dims  int
}

// GetPendingTest returns one arbitrary still-unembedded node for the
// active embedding set, for use as a smoke-test probe before kicking
// off a full indexing run. ok is false when nothing is pending.
func (s *Store) GetPendingTest() (rec NodeRecord, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, dims, hasSet, err := s.activeEmbeddingSetLocked()
	if err != nil {
		return NodeRecord{}, false, err
	}

	var row *sql.Row
	if !hasSet {
		row = s.db.QueryRow(`SELECT node_id, kind, name, file_path, parent_id, tracking_hash, start_byte, end_byte, payload FROM nodes LIMIT 1`)
	} else {
		row = s.db.QueryRow(
			`SELECT node_id, kind, name, file_path, parent_id, tracking_hash, start_byte, end_byte, payload FROM nodes n
			 WHERE NOT EXISTS (
				SELECT 1 FROM embeddings e WHERE e.node_id = n.node_id AND e.model = ? AND e.dims = ?
			 ) LIMIT 1`,
			model, dims,
		)
	}

	n, scanErr := scanNode(row)
	if scanErr == sql.ErrNoRows {
		return NodeRecord{}, false, nil
	}
	if scanErr != nil {
		return NodeRecord{}, false, newScriptError("get", "nodes", scanErr)
	}
	return n, true, nil
}

// AppendConversationTurn inserts a new, currently-valid conversation
// turn row.
func (s *Store) AppendConversationTurn(t ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO conversation_turn (id, role, content, valid_millis, is_valid) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Role, t.Content, t.Validity.Millis, boolToInt(t.Validity.IsValid),
	)
	if err != nil {
		return newScriptError("append", "conversation_turn", err)
	}
	return nil
}

// InvalidateConversationTurn marks every existing row for id invalid
// as of now, without deleting history.
func (s *Store) InvalidateConversationTurn(id string, asOfMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`UPDATE conversation_turn SET is_valid = 0 WHERE id = ? AND valid_millis <= ?`,
		id, asOfMillis,
	)
	if err != nil {
		return newScriptError("invalidate", "conversation_turn", err)
	}
	return nil
}

// AppendToolCall inserts a new, currently-valid tool_call row.
func (s *Store) AppendToolCall(tc ToolCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO tool_call (id, request_id, tool_name, args_json, result_json, valid_millis, is_valid)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tc.ID, tc.RequestID, tc.ToolName, tc.ArgsJSON, tc.ResultJSON, tc.Validity.Millis, boolToInt(tc.Validity.IsValid),
	)
	if err != nil {
		return newScriptError("append", "tool_call", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseNodeID(s string) (identity.NodeID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return identity.NodeID{}, fmt.Errorf("malformed node id %q", s)
	}
	u, err := uuid.Parse(parts[1])
	if err != nil {
		return identity.NodeID{}, fmt.Errorf("malformed node id %q: %w", s, err)
	}
	variant := identity.VariantResolved
	if parts[0] == "S" {
		variant = identity.VariantSynthetic
	}
	return identity.NodeID{Variant: variant, UUID: u}, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
