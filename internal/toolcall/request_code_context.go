package toolcall

import "encoding/json"

type RequestCodeContextParams struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RequestCodeContextTool runs a retrieval query and hands back the
// fused context parts the LLM can cite or reason over.
type RequestCodeContextTool struct {
	Retrieve Retriever
}

func (t *RequestCodeContextTool) ToolDef() ToolDefinition {
	return ToolDefinition{
		Name:        "request_code_context",
		Description: "Retrieve relevant code/doc snippets for a natural-language query.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"},"top_k":{"type":"integer"}},"required":["query"]}`),
	}
}

func (t *RequestCodeContextTool) DeserializeParams(raw json.RawMessage) (any, error) {
	var p RequestCodeContextParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.TopK <= 0 {
		p.TopK = 10
	}
	return p, nil
}

func (t *RequestCodeContextTool) Execute(params any, _ Ctx) (json.RawMessage, error) {
	p := params.(RequestCodeContextParams)

	if t.Retrieve == nil {
		return json.Marshal([]ContextPart{})
	}

	parts, err := t.Retrieve.RetrieveContext(p.Query, p.TopK)
	if err != nil {
		return nil, newToolError(t.ToolDef().Name, CodeInternal, err.Error())
	}
	return json.Marshal(parts)
}
