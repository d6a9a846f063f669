package appstate

import "context"

// Command is a mutation request sent to a Manager's single consuming
// goroutine. Apply runs with exclusive access to state — it must not
// block on anything that itself waits on the manager, or it will
// deadlock the loop.
type Command struct {
	Apply func(state *AppState)
	Done  chan struct{}
}

// Manager serializes all AppState mutations through one goroutine, so
// callers never need to reason about lock ordering across State's
// four fields when a change touches more than one of them.
type Manager struct {
	state *AppState
	cmds  chan Command
}

// NewManager starts the manager's goroutine over state. Callers stop
// it by cancelling ctx.
func NewManager(ctx context.Context, state *AppState) *Manager {
	m := &Manager{state: state, cmds: make(chan Command, 64)}
	go m.run(ctx)
	return m
}

func (m *Manager) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-m.cmds:
			cmd.Apply(m.state)
			if cmd.Done != nil {
				close(cmd.Done)
			}
		}
	}
}

// Mutate enqueues fn to run against state on the manager's goroutine
// and blocks until it has run (or ctx is cancelled first).
func (m *Manager) Mutate(ctx context.Context, fn func(state *AppState)) error {
	done := make(chan struct{})
	cmd := Command{Apply: fn, Done: done}
	select {
	case m.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the underlying AppState. Reads through its own
// per-field locks are safe to do directly without going through the
// manager; only cross-field mutations need Mutate.
func (m *Manager) State() *AppState { return m.state }
