// Package toolcall is the static tool registry the LLM session loop
// dispatches against: a fixed set of named tools, each able to
// describe its own JSON schema, parse its own arguments, and execute
// against the shared application state.
package toolcall

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/plokeai/plokecore/internal/appstate"
)

// ToolDefinition is what gets offered to the LLM as a callable
// function: name, human-readable description, and a JSON schema for
// its arguments.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Ctx carries everything a tool execution needs beyond its own
// parsed parameters: the shared state, the event bus to announce
// progress/results on, and the identifiers tying this call back to
// its originating LLM request.
type Ctx struct {
	Context   context.Context
	AppState  *appstate.AppState
	EventBus  *appstate.EventBus
	RequestID uuid.UUID
	ParentID  uuid.UUID
	CallID    string
}

// Tool is a single dispatchable function exposed to the LLM.
type Tool interface {
	ToolDef() ToolDefinition
	DeserializeParams(raw json.RawMessage) (any, error)
	Execute(params any, ctx Ctx) (json.RawMessage, error)
}

// ErrorCode discriminates the kind of failure a tool reports, kept
// separate from Go's built-in error so it can round-trip through the
// wire JSON the LLM sees.
type ErrorCode string

const (
	CodeParse      ErrorCode = "Parse"
	CodeNotFound   ErrorCode = "NotFound"
	CodeIO         ErrorCode = "Io"
	CodeHash       ErrorCode = "Hash"
	CodePermission ErrorCode = "Permission"
	CodeInternal   ErrorCode = "Internal"
)

// ToolError is the structured failure a Tool.Execute call returns;
// its JSON form is what gets sent back to the LLM as the tool's
// result content on failure.
type ToolError struct {
	ToolName string    `json:"tool_name"`
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
}

func (e *ToolError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func newToolError(name string, code ErrorCode, msg string) *ToolError {
	return &ToolError{ToolName: name, Code: code, Message: msg}
}
