package proposal

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds staged EditProposals keyed by request id. Safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	items map[uuid.UUID]EditProposal
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[uuid.UUID]EditProposal)}
}

// Put stages or replaces a proposal.
func (r *Registry) Put(p EditProposal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.RequestID] = p
}

// Get returns a copy of the proposal for requestID, if staged.
func (r *Registry) Get(requestID uuid.UUID) (EditProposal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[requestID]
	return p, ok
}

// Pending returns every proposal currently in StatusKind Pending.
func (r *Registry) Pending() []EditProposal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []EditProposal
	for _, p := range r.items {
		if p.Status.Kind == Pending {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns every staged proposal, for persistence.
func (r *Registry) Snapshot() []EditProposal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EditProposal, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	return out
}

// Load replaces the registry's contents, for restoring a persisted
// snapshot at startup.
func (r *Registry) Load(items []EditProposal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[uuid.UUID]EditProposal, len(items))
	for _, p := range items {
		r.items[p.RequestID] = p
	}
}

// CreateRegistry holds staged CreateFileProposals keyed by request id.
// Safe for concurrent use.
type CreateRegistry struct {
	mu    sync.RWMutex
	items map[uuid.UUID]CreateFileProposal
}

func NewCreateRegistry() *CreateRegistry {
	return &CreateRegistry{items: make(map[uuid.UUID]CreateFileProposal)}
}

func (r *CreateRegistry) Put(p CreateFileProposal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.RequestID] = p
}

func (r *CreateRegistry) Get(requestID uuid.UUID) (CreateFileProposal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[requestID]
	return p, ok
}

func (r *CreateRegistry) Pending() []CreateFileProposal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []CreateFileProposal
	for _, p := range r.items {
		if p.Status.Kind == Pending {
			out = append(out, p)
		}
	}
	return out
}

func (r *CreateRegistry) Snapshot() []CreateFileProposal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CreateFileProposal, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	return out
}

func (r *CreateRegistry) Load(items []CreateFileProposal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[uuid.UUID]CreateFileProposal, len(items))
	for _, p := range items {
		r.items[p.RequestID] = p
	}
}
