package proposal

import (
	"github.com/google/uuid"

	"github.com/plokeai/plokecore/pkg/ioactor"
)

// EditProposal stages either semantic (byte-range) edits or a
// non-semantic whole-file patch against one or more files. Exactly one
// of Edits/EditsNS is populated, mirroring IsSemantic.
type EditProposal struct {
	RequestID    uuid.UUID
	ParentID     uuid.UUID
	CallID       string
	IsSemantic   bool
	Files        []string
	Edits        []ioactor.ByteRangeEdit
	EditsNS      []ioactor.WholeFileEdit
	Status       Status
	ProposedAtMs int64
}

// CreateFileRequest is a single new file a CreateFileProposal wants to
// write.
type CreateFileRequest struct {
	Path    string
	Content string
}

// CreateFileProposal stages one or more new files for creation.
type CreateFileProposal struct {
	RequestID    uuid.UUID
	ParentID     uuid.UUID
	CallID       string
	Files        []string
	Creates      []CreateFileRequest
	Status       Status
	ProposedAtMs int64
}

// FileOutcome reports the per-file result of applying one proposal.
type FileOutcome struct {
	FilePath string
	NewHash  string
	Err      string
}

// ApplyResult summarizes the outcome of approving a proposal: how many
// of its constituent edits/creations succeeded and the per-file detail
// behind that count.
type ApplyResult struct {
	Applied int
	Total   int
	Results []FileOutcome
}

func (r ApplyResult) OK() bool { return r.Applied > 0 }
