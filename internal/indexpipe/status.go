package indexpipe

import "time"

// State discriminates the pipeline's lifecycle, mirroring the
// teacher's IndexingStatus but adding Paused (an explicit control
// state the teacher's BackgroundIndexer doesn't model) and a Failed
// state that carries a reason rather than a bare string error field.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Status is an immutable progress snapshot, published on the event bus
// and returned by Pipeline.Status(). Modeled on the teacher's
// IndexProgressSnapshot, generalized from file/chunk counts to plan
// items since indexpipe's unit of work is one node's (re-)embedding,
// not a raw file chunk.
type Status struct {
	State       State
	Processed   int
	Total       int
	Errors      int
	CurrentFile string
	Reason      string // set only when State == StateFailed
	StartedAt   time.Time
}
