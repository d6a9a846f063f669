package appstate

import (
	"sync"

	"github.com/plokeai/plokecore/internal/config"
	"github.com/plokeai/plokecore/internal/proposal"
)

// ChatState holds the in-memory conversation the LLM session loop
// reads and appends to. It is intentionally minimal here: message
// content and roles live in whatever shape internal/llmsession uses,
// this just serializes access to that slice.
type ChatState struct {
	mu       sync.RWMutex
	Messages []ChatMessage
}

// ChatMessage is one turn in the conversation history. Status tracks
// an assistant placeholder's lifecycle ("pending" → "completed" or
// "cancelled"); it is empty for user/system/tool messages, which are
// never placeholders.
type ChatMessage struct {
	ID         string
	Role       string
	Content    string
	ToolCallID string
	Status     string
}

func (c *ChatState) Append(m ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = append(c.Messages, m)
}

// UpdateByID mutates the message with the given id in place, if
// present. Used to finalize an assistant placeholder once its real
// content (or cancellation) is known.
func (c *ChatState) UpdateByID(id string, mutate func(*ChatMessage)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			mutate(&c.Messages[i])
			return true
		}
	}
	return false
}

func (c *ChatState) Snapshot() []ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ChatMessage, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// ProposalState bundles the two proposal registries (edits and file
// creations) behind the name the rest of the system addresses as
// "the proposal store".
type ProposalState struct {
	Edits   *proposal.Registry
	Creates *proposal.CreateRegistry
}

// SystemState tracks process-wide status unrelated to any single
// conversation: the most recent indexing snapshot, and whether the
// system is shutting down.
type SystemState struct {
	mu        sync.RWMutex
	Indexing  IndexingSnapshot
	ShuttingDown bool
}

// IndexingSnapshot mirrors the indexing pipeline's last-announced
// status so new subscribers (e.g. a freshly connected UI) can read
// current progress without waiting for the next event.
type IndexingSnapshot struct {
	Status       string
	Processed    int
	Total        int
	Errors       int
	CurrentFile  string
}

func (s *SystemState) SetIndexing(snap IndexingSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Indexing = snap
}

func (s *SystemState) GetIndexing() IndexingSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Indexing
}

// AppState is the one piece of global mutable state the rest of the
// system depends on: config, chat history, staged edit/create
// proposals, and process-wide system status, each behind its own
// lock so a slow reader of one never blocks writers of another.
type AppState struct {
	Config    *config.Config
	Chat      *ChatState
	Proposals *ProposalState
	System    *SystemState
}

// New builds an AppState around cfg with empty chat/proposal/system
// state, ready for a state-manager loop to start consuming commands
// against it.
func New(cfg *config.Config) *AppState {
	return &AppState{
		Config: cfg,
		Chat:   &ChatState{},
		Proposals: &ProposalState{
			Edits:   proposal.NewRegistry(),
			Creates: proposal.NewCreateRegistry(),
		},
		System: &SystemState{},
	}
}
