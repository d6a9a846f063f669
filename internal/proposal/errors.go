package proposal

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError is returned when a request id has no staged proposal.
type NotFoundError struct {
	RequestID uuid.UUID
	Creation  bool
}

func (e *NotFoundError) Error() string {
	kind := "edit"
	if e.Creation {
		kind = "create-file"
	}
	return fmt.Sprintf("no staged %s proposal for request_id %s", kind, e.RequestID)
}
