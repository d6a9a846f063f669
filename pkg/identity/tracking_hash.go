package identity

import "github.com/google/uuid"

// TrackingHash represents the meaningful content of a code node (a
// function body, a struct definition, ...), used to detect whether a
// node actually changed between scans so unchanged nodes can be
// skipped during incremental re-indexing.
//
// It hashes a token-stream rendering of the item's content, not the
// raw bytes, so reformatting (whitespace, indentation, line breaks)
// never changes the hash while a change to any identifier, literal,
// or operator does.
type TrackingHash struct {
	UUID uuid.UUID
}

func (t TrackingHash) String() string { return "H:" + shortForm(t.UUID) }

// GenerateTrackingHash derives a TrackingHash from the crate namespace,
// defining file path, and the item's textual content.
func GenerateTrackingHash(crateNamespace uuid.UUID, filePath string, content string) TrackingHash {
	var data []byte
	data = append(data, crateNamespace[:]...)
	data = append(data, "::FILE::"...)
	data = append(data, filePath...)
	data = append(data, "::CONTENT::"...)
	data = append(data, tokenRender(content)...)

	return TrackingHash{UUID: newV5(data)}
}
