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

type ApplyCodeEditParams struct {
	FilePath    string `json:"file_path"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	New         string `json:"new"`
	PreviewMode string `json:"preview_mode"`
}

type stageResult struct {
	OK          bool   `json:"ok"`
	Staged      bool   `json:"staged"`
	PreviewMode string `json:"preview_mode"`
	Preview     string `json:"preview,omitempty"`
}

// ApplyCodeEditTool stages a semantic (byte-range) edit as a Pending
// EditProposal rather than writing it immediately; the edit only
// touches disk once a human approves it.
type ApplyCodeEditTool struct {
	Namespace uuid.UUID
}

func (t *ApplyCodeEditTool) ToolDef() ToolDefinition {
	return ToolDefinition{
		Name:        "apply_code_edit",
		Description: "Stage a semantic byte-range code edit for human approval.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"file_path":{"type":"string"},
			"start":{"type":"integer"},
			"end":{"type":"integer"},
			"new":{"type":"string"},
			"preview_mode":{"type":"string","enum":["diff","codeblock"]}
		},"required":["file_path","start","end","new"]}`),
	}
}

func (t *ApplyCodeEditTool) DeserializeParams(raw json.RawMessage) (any, error) {
	var p ApplyCodeEditParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.PreviewMode == "" {
		p.PreviewMode = "diff"
	}
	return p, nil
}

func (t *ApplyCodeEditTool) Execute(params any, ctx Ctx) (json.RawMessage, error) {
	p := params.(ApplyCodeEditParams)
	name := t.ToolDef().Name

	content, err := os.ReadFile(p.FilePath)
	if err != nil {
		return nil, newToolError(name, CodeIO, err.Error())
	}
	if p.Start < 0 || p.End > len(content) || p.Start > p.End {
		return nil, newToolError(name, CodeParse, "edit range out of bounds")
	}

	hash := identity.GenerateTrackingHash(t.Namespace, p.FilePath, string(content))
	prop := proposal.EditProposal{
		RequestID:  ctx.RequestID,
		ParentID:   ctx.ParentID,
		CallID:     ctx.CallID,
		IsSemantic: true,
		Files:      []string{p.FilePath},
		Edits: []ioactor.ByteRangeEdit{
			{Path: p.FilePath, ContentHash: hash, Start: p.Start, End: p.End, New: p.New},
		},
		Status:       proposal.PendingStatus(),
		ProposedAtMs: time.Now().UnixMilli(),
	}
	ctx.AppState.Proposals.Edits.Put(prop)

	var preview string
	if p.PreviewMode == "diff" {
		preview = proposal.UnifiedDiff(p.FilePath, string(content[p.Start:p.End]), p.New)
	} else {
		preview = p.New
	}

	ctx.EventBus.Publish(appstate.Event{
		Kind:      appstate.EventProposalChanged,
		RequestID: ctx.RequestID.String(),
	})

	return json.Marshal(stageResult{OK: true, Staged: true, PreviewMode: p.PreviewMode, Preview: preview})
}
