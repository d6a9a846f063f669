package retrieval

import (
	"fmt"
	"strings"

	"github.com/plokeai/plokecore/internal/graphstore"
)

// AssembleContext renders ranked results into one context string for
// an LLM turn, filling greedily from the best-ranked result down until
// maxChars is reached — the mirror image of llmsession's tail-walk
// over chronological history, since here "most valuable" is rank
// order rather than recency. A result's Snippet is used verbatim if
// the caller populated one (e.g. from a file read via the I/O actor);
// otherwise a metadata-only block (name, file, kind) stands in, since
// graphstore itself only stores structural metadata, not source text.
func AssembleContext(store *graphstore.Store, results []Result, maxChars int) string {
	if maxChars <= 0 || len(results) == 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for _, r := range results {
		block := renderBlock(store, r)
		if used > 0 && used+len(block) > maxChars {
			break
		}
		if used == 0 && len(block) > maxChars {
			block = block[:maxChars]
		}
		b.WriteString(block)
		used += len(block)
		if used >= maxChars {
			break
		}
	}
	return b.String()
}

func renderBlock(store *graphstore.Store, r Result) string {
	if r.Snippet != "" {
		return r.Snippet + "\n\n"
	}

	rec, ok, err := store.GetNode(r.NodeID)
	if err != nil || !ok {
		return fmt.Sprintf("## %s\n(metadata unavailable)\n\n", r.NodeID.String())
	}
	return fmt.Sprintf("## %s (%s)\n%s\n\n", rec.Name, rec.Kind.String(), rec.FilePath)
}
