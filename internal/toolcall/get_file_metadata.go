package toolcall

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"

	"github.com/plokeai/plokecore/pkg/identity"
)

type GetFileMetadataParams struct {
	FilePath string `json:"file_path"`
}

type getFileMetadataResult struct {
	OK            bool   `json:"ok"`
	Exists        bool   `json:"exists"`
	FilePath      string `json:"file_path"`
	ByteLen       int    `json:"byte_len,omitempty"`
	TrackingHash  string `json:"tracking_hash,omitempty"`
}

// GetFileMetadataTool reports whether a file exists and, if so, its
// size and current TrackingHash — the metadata a caller needs before
// staging a byte-range edit against it.
type GetFileMetadataTool struct {
	Namespace uuid.UUID
}

func (t *GetFileMetadataTool) ToolDef() ToolDefinition {
	return ToolDefinition{
		Name:        "get_file_metadata",
		Description: "Report whether a file exists and, if so, its size and tracking hash.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"file_path":{"type":"string"}},"required":["file_path"]}`),
	}
}

func (t *GetFileMetadataTool) DeserializeParams(raw json.RawMessage) (any, error) {
	var p GetFileMetadataParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *GetFileMetadataTool) Execute(params any, _ Ctx) (json.RawMessage, error) {
	p := params.(GetFileMetadataParams)

	content, err := os.ReadFile(p.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return json.Marshal(getFileMetadataResult{OK: true, Exists: false, FilePath: p.FilePath})
		}
		return nil, newToolError(t.ToolDef().Name, CodeIO, err.Error())
	}

	hash := identity.GenerateTrackingHash(t.Namespace, p.FilePath, string(content))
	return json.Marshal(getFileMetadataResult{
		OK:           true,
		Exists:       true,
		FilePath:     p.FilePath,
		ByteLen:      len(content),
		TrackingHash: hash.UUID.String(),
	})
}
