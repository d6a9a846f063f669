// Package proposal implements the edit-proposal state machine: tool
// calls that want to change the workspace (ranged edits, whole-file
// patches, new-file creation) stage a proposal here first and only
// touch disk once a caller explicitly approves it.
package proposal

// StatusKind is the discriminant of a proposal's lifecycle state.
type StatusKind uint8

const (
	Pending StatusKind = iota
	Approved
	Denied
	Applied
	Failed
	Stale
)

func (k StatusKind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Status is a proposal's current lifecycle state. Reason carries the
// failure or staleness explanation for Failed/Stale and is empty
// otherwise.
type Status struct {
	Kind   StatusKind
	Reason string
}

func (s Status) String() string {
	if s.Reason == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + ": " + s.Reason
}

func PendingStatus() Status            { return Status{Kind: Pending} }
func ApprovedStatus() Status           { return Status{Kind: Approved} }
func DeniedStatus() Status             { return Status{Kind: Denied} }
func AppliedStatus() Status            { return Status{Kind: Applied} }
func FailedStatus(reason string) Status { return Status{Kind: Failed, Reason: reason} }
func StaleStatus(reason string) Status  { return Status{Kind: Stale, Reason: reason} }
