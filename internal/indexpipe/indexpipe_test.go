package indexpipe

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plokeai/plokecore/internal/appstate"
	"github.com/plokeai/plokecore/internal/graphstore"
	"github.com/plokeai/plokecore/internal/sparseindex"
	"github.com/plokeai/plokecore/pkg/identity"
	"github.com/plokeai/plokecore/pkg/ioactor"
)

type fakeEmbedder struct{ dims int }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return make([]float32, f.dims), nil
}
func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int                  { return f.dims }
func (f *fakeEmbedder) ModelName() string                { return "fake-model" }
func (f *fakeEmbedder) Available(_ context.Context) bool { return true }
func (f *fakeEmbedder) Close() error                     { return nil }
func (f *fakeEmbedder) SetBatchIndex(int)                {}
func (f *fakeEmbedder) SetFinalBatch(bool)               {}

func testNode(seed string) identity.NodeID {
	return identity.GenerateSyntheticNodeID(identity.ProjectNamespace, "/src/lib.go", nil, seed, identity.ItemKindFunction, nil, nil)
}

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lib.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipeline_RunEmbedsAndUpserts(t *testing.T) {
	content := "package main\n\nfunc Hello() {}\n"
	path := writeSourceFile(t, content)

	store, err := graphstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SetActiveEmbeddingSet("fake-model", 4))

	vectors := graphstore.NewIndexSet(t.TempDir())
	io := ioactor.NewHandle(identity.ProjectNamespace, slog.Default())
	sparse := sparseindex.NewIndex(context.Background(), sparseindex.DefaultConfig())
	bus := appstate.NewEventBus()

	cfg := DefaultConfig("fake-model", 4)
	p := NewPipeline(io, &fakeEmbedder{dims: 4}, store, vectors, sparse, bus, cfg)

	id := testNode("Hello")
	hash := identity.GenerateTrackingHash(identity.ProjectNamespace, path, "func Hello() {}")
	item := PlanItem{NodeID: id, Path: path, ContentHash: hash, Start: 14, End: 29}

	planner := PlannerFunc(func(_ context.Context) ([]PlanItem, error) {
		return []PlanItem{item}, nil
	})

	require.NoError(t, p.Run(context.Background(), planner))

	status := p.Status()
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, 1, status.Processed)
	assert.Equal(t, 0, status.Errors)

	embeddings, err := store.EmbeddingsForModel("fake-model", 4)
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, id, embeddings[0].NodeID)

	idx := vectors.Get("fake-model", 4)
	require.NotNil(t, idx)
	assert.Equal(t, 1, idx.Len())
}

func TestPipeline_RunRecordsPerItemErrorsWithoutAborting(t *testing.T) {
	store, err := graphstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SetActiveEmbeddingSet("fake-model", 4))

	vectors := graphstore.NewIndexSet(t.TempDir())
	io := ioactor.NewHandle(identity.ProjectNamespace, slog.Default())
	cfg := DefaultConfig("fake-model", 4)
	p := NewPipeline(io, &fakeEmbedder{dims: 4}, store, vectors, nil, nil, cfg)

	// Path doesn't exist: the read step should fail for this item
	// without stopping the whole run.
	missing := PlanItem{NodeID: testNode("missing"), Path: "/nonexistent/file.go", Start: 0, End: 5}
	planner := PlannerFunc(func(_ context.Context) ([]PlanItem, error) {
		return []PlanItem{missing}, nil
	})

	require.NoError(t, p.Run(context.Background(), planner))
	status := p.Status()
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, 1, status.Errors)
	assert.Equal(t, 0, status.Processed)
}

func TestPipeline_CancelStopsRunEarly(t *testing.T) {
	store, err := graphstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	vectors := graphstore.NewIndexSet(t.TempDir())
	io := ioactor.NewHandle(identity.ProjectNamespace, slog.Default())
	cfg := DefaultConfig("fake-model", 4)
	cfg.BatchSize = 1
	p := NewPipeline(io, &fakeEmbedder{dims: 4}, store, vectors, nil, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	planner := PlannerFunc(func(_ context.Context) ([]PlanItem, error) {
		return []PlanItem{{NodeID: testNode("x"), Path: "/whatever", Start: 0, End: 1}}, nil
	})

	err = p.Run(ctx, planner)
	assert.Error(t, err)
	assert.Equal(t, StateCancelled, p.Status().State)
}

func TestPipeline_HasIncompleteLock(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, HasIncompleteLock(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "indexing.lock"), []byte("x"), 0o644))
	assert.True(t, HasIncompleteLock(dir))
}

func TestDriftRescanner_DetectsChangedContent(t *testing.T) {
	original := "func Hello() { return }"
	path := writeSourceFile(t, "package main\n\n"+original+"\n")

	store, err := graphstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	start, end := 14, 14+len(original)
	hash := identity.GenerateTrackingHash(identity.ProjectNamespace, path, original)
	id := testNode("Hello")
	require.NoError(t, store.UpsertNode(graphstore.NodeRecord{
		NodeID: id, Kind: identity.ItemKindFunction, Name: "Hello", FilePath: path,
		TrackingHash: hash.String(), Start: start, End: end,
	}))

	rescanner := NewDriftRescanner(store, identity.ProjectNamespace, identity.ItemKindFunction)

	// Unchanged: no drift.
	drifted, err := rescanner.Rescan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifted)

	// Mutate the file without updating the stored hash: now it should drift.
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc Hello() { return 1 }\n"), 0o644))
	drifted, err = rescanner.Rescan(context.Background())
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, id, drifted[0].NodeID)
}
