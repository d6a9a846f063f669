package toolcall

import (
	"encoding/json"
	"time"

	"github.com/plokeai/plokecore/internal/appstate"
	"github.com/plokeai/plokecore/internal/proposal"
)

type CreateFileParams struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// CreateFileTool stages a brand-new file as a Pending
// CreateFileProposal; like the edit tools, it writes nothing until
// approved.
type CreateFileTool struct{}

func (t *CreateFileTool) ToolDef() ToolDefinition {
	return ToolDefinition{
		Name:        "create_file",
		Description: "Stage creation of a brand-new file for human approval.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"file_path":{"type":"string"},"content":{"type":"string"}},"required":["file_path","content"]}`),
	}
}

func (t *CreateFileTool) DeserializeParams(raw json.RawMessage) (any, error) {
	var p CreateFileParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *CreateFileTool) Execute(params any, ctx Ctx) (json.RawMessage, error) {
	p := params.(CreateFileParams)

	prop := proposal.CreateFileProposal{
		RequestID:    ctx.RequestID,
		ParentID:     ctx.ParentID,
		CallID:       ctx.CallID,
		Files:        []string{p.FilePath},
		Creates:      []proposal.CreateFileRequest{{Path: p.FilePath, Content: p.Content}},
		Status:       proposal.PendingStatus(),
		ProposedAtMs: time.Now().UnixMilli(),
	}
	ctx.AppState.Proposals.Creates.Put(prop)
	ctx.EventBus.Publish(appstate.Event{Kind: appstate.EventProposalChanged, RequestID: ctx.RequestID.String()})

	return json.Marshal(stageResult{OK: true, Staged: true, PreviewMode: "codeblock", Preview: p.Content})
}
