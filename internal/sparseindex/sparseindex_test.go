package sparseindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plokeai/plokecore/pkg/identity"
)

func nodeFor(name string) identity.NodeID {
	return identity.GenerateSyntheticNodeID(identity.ProjectNamespace, "/src/lib.go", nil, name, identity.ItemKindFunction, nil, nil)
}

func TestTokenize_SplitsCamelAndSnakeCase(t *testing.T) {
	toks := Tokenize("getUserById fetch_user_data", 2)
	assert.Contains(t, toks, "get")
	assert.Contains(t, toks, "user")
	assert.Contains(t, toks, "by")
	assert.Contains(t, toks, "fetch")
	assert.Contains(t, toks, "data")
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	toks := Tokenize("a bb ccc", 2)
	assert.NotContains(t, toks, "a")
	assert.Contains(t, toks, "bb")
	assert.Contains(t, toks, "ccc")
}

func withIndex(t *testing.T) (*Index, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewIndex(ctx, DefaultConfig()), ctx
}

func TestIndex_SearchRanksMoreRelevantDocHigher(t *testing.T) {
	idx, ctx := withIndex(t)

	a := nodeFor("ParseConfig")
	b := nodeFor("WriteLog")
	require.NoError(t, idx.IndexDoc(ctx, a, "parse configuration file and validate config fields"))
	require.NoError(t, idx.IndexDoc(ctx, b, "write a log line to stdout"))

	hits, err := idx.Search(ctx, "config", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, a, hits[0].NodeID)
}

func TestIndex_SearchEmptyQueryReturnsNoHits(t *testing.T) {
	idx, ctx := withIndex(t)
	require.NoError(t, idx.IndexDoc(ctx, nodeFor("X"), "some text"))

	hits, err := idx.Search(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_RebuildReplacesContentsAtomically(t *testing.T) {
	idx, ctx := withIndex(t)
	require.NoError(t, idx.IndexDoc(ctx, nodeFor("Old"), "old content here"))

	newID := nodeFor("New")
	require.NoError(t, idx.Rebuild(ctx, map[identity.NodeID]string{newID: "new content here"}))

	status, err := idx.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.DocCount)

	hits, err := idx.Search(ctx, "new", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, newID, hits[0].NodeID)
}

func TestIndex_RemoveDropsDocFromSearch(t *testing.T) {
	idx, ctx := withIndex(t)
	id := nodeFor("Gone")
	require.NoError(t, idx.IndexDoc(ctx, id, "unique searchable phrase"))
	require.NoError(t, idx.Remove(ctx, id))

	hits, err := idx.Search(ctx, "unique searchable phrase", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SaveAndLoad_RoundTrips(t *testing.T) {
	idx, ctx := withIndex(t)
	id := nodeFor("Persisted")
	require.NoError(t, idx.IndexDoc(ctx, id, "persisted document content"))

	path := filepath.Join(t.TempDir(), "bm25.gob")
	require.NoError(t, idx.Save(ctx, path))

	loaded, loadCtx := withIndex(t)
	require.NoError(t, loaded.Load(loadCtx, path))

	status, err := loaded.GetStatus(loadCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.DocCount)
}

func TestIndex_ContextCancelledDuringSendErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	idx := NewIndex(ctx, DefaultConfig())
	cancel()

	time.Sleep(time.Millisecond) // let the actor goroutine observe cancellation
	_, err := idx.Search(ctx, "anything", 10)
	assert.Error(t, err)
}
