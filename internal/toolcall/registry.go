package toolcall

import (
	"encoding/json"
)

// Registry is a fixed name→Tool lookup. The LLM session loop never
// constructs tools dynamically; it only ever dispatches by name
// against one of these.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds the registry with every tool the spec requires.
func NewRegistry(deps Deps) *Registry {
	tools := []Tool{
		&GetFileMetadataTool{Namespace: deps.Namespace},
		&RequestCodeContextTool{Retrieve: deps.Retrieve},
		&ApplyCodeEditTool{Namespace: deps.Namespace},
		&NsPatchTool{Namespace: deps.Namespace},
		&CreateFileTool{},
	}
	reg := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		reg.tools[t.ToolDef().Name] = t
	}
	return reg
}

// Definitions returns every registered tool's definition, in the
// shape the LLM request payload advertises as callable functions.
func (r *Registry) Definitions() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.ToolDef())
	}
	return out
}

// Dispatch looks up name, deserializes args against it, executes it,
// and returns the raw JSON result (success or ToolError) ready to be
// wrapped in a `{role: "tool", ...}` message.
func (r *Registry) Dispatch(name string, args json.RawMessage, ctx Ctx) (json.RawMessage, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, newToolError(name, CodeNotFound, "no such tool registered: "+name)
	}

	params, err := tool.DeserializeParams(args)
	if err != nil {
		return nil, newToolError(name, CodeParse, err.Error())
	}

	return tool.Execute(params, ctx)
}
