// Package identity provides deterministic, content-addressed
// identifiers for code elements discovered and indexed by plokecore.
//
// Every identifier is a UUIDv5 derived from a fixed project namespace
// plus an ordered, separator-delimited encoding of the inputs that
// define the element's identity. Because the namespace and encoding
// are both fixed, the same logical element always produces the same
// id across runs, across machines, and across reformatting of the
// source that defines it.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// ProjectNamespace is the fixed UUID namespace all identity UUIDs are
// derived from via UUIDv5. It must never change: doing so would
// invalidate every id previously computed by this module or by the
// system it was ported from.
var ProjectNamespace = uuid.Must(uuid.Parse("f7f4a9a0-1b1a-4b0e-9c1a-1a1a1a1a1a1a"))

// newV5 generates a UUIDv5 (SHA-1 based, RFC 4122) in ProjectNamespace
// from the given bytes.
func newV5(data []byte) uuid.UUID {
	return uuid.NewSHA1(ProjectNamespace, data)
}

// shortForm renders a UUID as its RFC-4122-field-based short form,
// "xxxxxxxx..yyyyyyyy": the first 4 bytes of the time-low field and
// the last 4 bytes of the node field. Collisions in this short form
// are expected and acceptable — it is a display aid, not an identity.
func shortForm(id uuid.UUID) string {
	b := id[:]
	return fmt.Sprintf("%02x%02x%02x%02x..%02x%02x%02x%02x",
		b[0], b[1], b[2], b[3], b[12], b[13], b[14], b[15])
}
