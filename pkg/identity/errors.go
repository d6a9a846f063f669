package identity

import "fmt"

// SyntheticConversionError is returned when code attempts to convert a
// Synthetic NodeID or TypeID directly into a path-based id (CanonID,
// PubPathID). Only Resolved ids carry enough information for that
// conversion; Synthetic ones must go through the full resolution
// generators instead.
type SyntheticConversionError struct {
	Kind  string // "NodeID" or "TypeID"
	Value string // the id's Stringer form, for diagnostics
}

func (e *SyntheticConversionError) Error() string {
	return fmt.Sprintf("cannot convert synthetic %s %s to a path-based id", e.Kind, e.Value)
}

// PathResolutionError is returned when generating a CanonID fails
// because the defining file path could not be made absolute or could
// not be resolved through symlinks (the file was moved or deleted
// between discovery and resolution, a permission error, ...).
type PathResolutionError struct {
	Path  string
	Cause error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("resolving path %q: %s", e.Path, e.Cause)
}

func (e *PathResolutionError) Unwrap() error { return e.Cause }
