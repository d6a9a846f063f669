package toolcall

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/plokeai/plokecore/internal/appstate"
	"github.com/plokeai/plokecore/internal/proposal"
	"github.com/plokeai/plokecore/pkg/identity"
	"github.com/plokeai/plokecore/pkg/ioactor"
)

type NsPatchParams struct {
	FilePath string `json:"file_path"`
	New      string `json:"new"`
}

// NsPatchTool stages a non-semantic (whole-file) replacement as a
// Pending EditProposal. Unlike apply_code_edit, it addresses a file
// by path alone rather than a byte range.
type NsPatchTool struct {
	Namespace uuid.UUID
}

func (t *NsPatchTool) ToolDef() ToolDefinition {
	return ToolDefinition{
		Name:        "ns_patch",
		Description: "Stage a whole-file (non-semantic) patch for human approval.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"file_path":{"type":"string"},"new":{"type":"string"}},"required":["file_path","new"]}`),
	}
}

func (t *NsPatchTool) DeserializeParams(raw json.RawMessage) (any, error) {
	var p NsPatchParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *NsPatchTool) Execute(params any, ctx Ctx) (json.RawMessage, error) {
	p := params.(NsPatchParams)
	name := t.ToolDef().Name

	content, err := os.ReadFile(p.FilePath)
	if err != nil {
		return nil, newToolError(name, CodeIO, err.Error())
	}

	hash := identity.GenerateTrackingHash(t.Namespace, p.FilePath, string(content))
	prop := proposal.EditProposal{
		RequestID:  ctx.RequestID,
		ParentID:   ctx.ParentID,
		CallID:     ctx.CallID,
		IsSemantic: false,
		Files:      []string{p.FilePath},
		EditsNS: []ioactor.WholeFileEdit{
			{Path: p.FilePath, ContentHash: hash, New: p.New},
		},
		Status:       proposal.PendingStatus(),
		ProposedAtMs: time.Now().UnixMilli(),
	}
	ctx.AppState.Proposals.Edits.Put(prop)

	preview := proposal.UnifiedDiff(p.FilePath, string(content), p.New)
	ctx.EventBus.Publish(appstate.Event{Kind: appstate.EventProposalChanged, RequestID: ctx.RequestID.String()})

	return json.Marshal(stageResult{OK: true, Staged: true, PreviewMode: "diff", Preview: preview})
}
