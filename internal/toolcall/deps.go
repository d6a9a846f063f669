package toolcall

import (
	"github.com/google/uuid"

	"github.com/plokeai/plokecore/pkg/ioactor"
)

// ContextPart is one retrieved snippet assembled into a tool result,
// matching the shape request_code_context hands back to the LLM.
type ContextPart struct {
	ID       string  `json:"id"`
	FilePath string  `json:"file_path"`
	CanonPath string `json:"canon_path"`
	Kind     string  `json:"kind"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Modality string  `json:"modality"`
}

// Retriever is the slice of internal/retrieval's behavior
// request_code_context needs. Declared locally so toolcall doesn't
// import retrieval directly; retrieval's concrete type satisfies it.
type Retriever interface {
	RetrieveContext(query string, topK int) ([]ContextPart, error)
}

// Deps bundles the external collaborators the registry's tools need.
type Deps struct {
	IO        *ioactor.Handle
	Namespace uuid.UUID
	Retrieve  Retriever
}
