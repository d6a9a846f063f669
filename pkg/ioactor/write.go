package ioactor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/plokeai/plokecore/pkg/identity"
)

var errInvalidUTF8 = errors.New("byte range does not fall on a valid utf-8 boundary")

func errRangeOutOfBounds(start, end, size int) error {
	return fmt.Errorf("range [%d, %d) out of bounds for file of size %d", start, end, size)
}

// writeRangedBatch applies each ByteRangeEdit independently: verifies
// the file's current TrackingHash, splices New into [Start, End), and
// reports the new TrackingHash. A mismatch or I/O error fails only
// that edit; other edits in the batch are unaffected.
func (a *actor) writeRangedBatch(_ context.Context, edits []ByteRangeEdit) []WriteResult {
	results := make([]WriteResult, len(edits))
	for i, e := range edits {
		content, err := os.ReadFile(e.Path)
		if err != nil {
			results[i] = WriteResult{Err: fileOp("open", e.Path, err)}
			continue
		}
		actual := identity.GenerateTrackingHash(a.crateNamespace, e.Path, string(content))
		if actual != e.ContentHash {
			results[i] = WriteResult{Err: contentMismatch(e.Path)}
			continue
		}
		if e.Start < 0 || e.End > len(content) || e.Start > e.End {
			results[i] = WriteResult{Err: fileOp("write", e.Path, errRangeOutOfBounds(e.Start, e.End, len(content)))}
			continue
		}

		next := make([]byte, 0, len(content)-(e.End-e.Start)+len(e.New))
		next = append(next, content[:e.Start]...)
		next = append(next, e.New...)
		next = append(next, content[e.End:]...)

		if err := os.WriteFile(e.Path, next, 0o644); err != nil {
			results[i] = WriteResult{Err: fileOp("write", e.Path, err)}
			continue
		}
		results[i] = WriteResult{NewHash: identity.GenerateTrackingHash(a.crateNamespace, e.Path, string(next))}
	}
	return results
}

// writeWholeBatch replaces entire files, used for non-semantic edits
// where no byte range is meaningful.
func (a *actor) writeWholeBatch(_ context.Context, edits []WholeFileEdit) []WriteResult {
	results := make([]WriteResult, len(edits))
	for i, e := range edits {
		content, err := os.ReadFile(e.Path)
		if err != nil {
			results[i] = WriteResult{Err: fileOp("open", e.Path, err)}
			continue
		}
		actual := identity.GenerateTrackingHash(a.crateNamespace, e.Path, string(content))
		if actual != e.ContentHash {
			results[i] = WriteResult{Err: contentMismatch(e.Path)}
			continue
		}
		if err := os.WriteFile(e.Path, []byte(e.New), 0o644); err != nil {
			results[i] = WriteResult{Err: fileOp("write", e.Path, err)}
			continue
		}
		results[i] = WriteResult{NewHash: identity.GenerateTrackingHash(a.crateNamespace, e.Path, e.New)}
	}
	return results
}

// createFile writes a brand-new file, failing if one already exists at
// that path so callers cannot accidentally clobber existing content
// through the creation path (use writeWholeBatch for that).
func (a *actor) createFile(req createRequest) WriteResult {
	f, err := os.OpenFile(req.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return WriteResult{Err: fileOp("create", req.path, err)}
	}
	defer f.Close()

	if _, err := f.WriteString(req.content); err != nil {
		return WriteResult{Err: fileOp("write", req.path, err)}
	}
	return WriteResult{NewHash: identity.GenerateTrackingHash(a.crateNamespace, req.path, req.content)}
}
