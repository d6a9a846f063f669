// Package ioactor provides a non-blocking, actor-model file I/O
// subsystem for reading and writing code snippets concurrently. It
// isolates file operations from callers, verifies each read against
// the content's expected identity.TrackingHash before serving it, and
// preserves the caller's request order in batch results.
package ioactor

import "github.com/plokeai/plokecore/pkg/identity"

// SnippetRequest asks for a specific byte range from a file, along
// with the TrackingHash the caller expects the file to currently
// carry. If the file has drifted since the hash was computed, the
// request fails with a ContentMismatch rather than silently returning
// stale-relative-to-index content.
type SnippetRequest struct {
	Path        string
	ContentHash identity.TrackingHash
	Start       int
	End         int
}

// SnippetResult is the outcome of a single SnippetRequest within a
// batch. Exactly one of Content/Err is set.
type SnippetResult struct {
	Content string
	Err     error
}

// ByteRangeEdit replaces the bytes in [Start, End) of a file with New,
// subject to the same TrackingHash verification as reads.
type ByteRangeEdit struct {
	Path        string
	ContentHash identity.TrackingHash
	Start       int
	End         int
	New         string
}

// WholeFileEdit replaces a file's entire content, subject to the same
// TrackingHash verification as ByteRangeEdit. Used for non-semantic
// (whole-file) edits where no byte range is meaningful.
type WholeFileEdit struct {
	Path        string
	ContentHash identity.TrackingHash
	New         string
}

// WriteResult is the outcome of a single write edit: on success it
// carries the TrackingHash of the file's new content.
type WriteResult struct {
	NewHash identity.TrackingHash
	Err     error
}
