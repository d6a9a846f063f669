package indexpipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/plokeai/plokecore/internal/appstate"
	"github.com/plokeai/plokecore/internal/embed"
	"github.com/plokeai/plokecore/internal/graphstore"
	"github.com/plokeai/plokecore/internal/sparseindex"
	"github.com/plokeai/plokecore/pkg/ioactor"
)

// Config parameterizes a Pipeline. DataDir locates the lock file that
// guards against two processes indexing the same project
// concurrently, the same role the teacher's indexing.lock file plays.
type Config struct {
	DataDir      string
	BatchSize    int
	Model        string
	Dims         int
	VectorConfig graphstore.VectorIndexConfig
}

// DefaultConfig returns the teacher-grounded batch size (32, matching
// internal/embed's DefaultBatchSize) with no lock directory set —
// callers running against a real project should set DataDir.
func DefaultConfig(model string, dims int) Config {
	return Config{
		BatchSize:    32,
		Model:        model,
		Dims:         dims,
		VectorConfig: graphstore.VectorIndexConfig{Dims: dims},
	}
}

// Pipeline drives the plan -> read -> embed -> upsert -> announce loop
// over a Planner's work list, in batches, with pause/resume/cancel
// control and best-effort progress announcements on the event bus.
type Pipeline struct {
	io       *ioactor.Handle
	embedder embed.Embedder
	store    *graphstore.Store
	vectors  *graphstore.IndexSet
	sparse   *sparseindex.Index // optional: nil skips BM25 forwarding
	bus      *appstate.EventBus
	cfg      Config

	mu     sync.Mutex
	status Status

	pauseMu  sync.Mutex
	paused   bool
	resumeCh chan struct{}
}

// NewPipeline wires a Pipeline. sparse may be nil to skip the keyword
// side-channel; bus may be nil to skip announcements (useful in tests).
func NewPipeline(io *ioactor.Handle, embedder embed.Embedder, store *graphstore.Store, vectors *graphstore.IndexSet, sparse *sparseindex.Index, bus *appstate.EventBus, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &Pipeline{
		io: io, embedder: embedder, store: store, vectors: vectors, sparse: sparse, bus: bus, cfg: cfg,
		status:   Status{State: StateIdle},
		resumeCh: make(chan struct{}),
	}
}

// Status returns a snapshot of the pipeline's current progress.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Pause blocks the run loop before its next batch until Resume is
// called. A no-op if the pipeline isn't running.
func (p *Pipeline) Pause() {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	p.setState(StatePaused)
}

// Resume unblocks a paused run loop.
func (p *Pipeline) Resume() {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	close(p.resumeCh)
	p.resumeCh = make(chan struct{})
	p.setState(StateRunning)
}

func (p *Pipeline) waitIfPaused(ctx context.Context) error {
	p.pauseMu.Lock()
	paused := p.paused
	ch := p.resumeCh
	p.pauseMu.Unlock()
	if !paused {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.status.State = s
	snap := p.status
	p.mu.Unlock()
	p.announce(snap)
}

func (p *Pipeline) announce(snap Status) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(appstate.Event{Kind: appstate.EventIndexingStatus, At: time.Now(), Payload: snap})
}

// lockPath mirrors the teacher's indexing.lock convention.
func (p *Pipeline) lockPath() string {
	return filepath.Join(p.cfg.DataDir, "indexing.lock")
}

// HasIncompleteLock reports whether a prior run was interrupted
// without cleaning up its lock file, the same check the teacher's
// async.HasIncompleteLock performs.
func HasIncompleteLock(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, "indexing.lock"))
	return err == nil
}

// Run executes one full pass of the loop: Plan once, then for every
// batch of PlanItems, Read via pkg/ioactor, Embed, Upsert into
// graphstore (and optionally forward to sparseindex), and Announce
// progress. Cancellation (ctx) stops the loop early and leaves State
// Cancelled; a Planner or read/embed error past the per-item level
// leaves State Failed with Reason set.
func (p *Pipeline) Run(ctx context.Context, planner Planner) error {
	p.mu.Lock()
	p.status = Status{State: StateRunning, StartedAt: time.Now()}
	p.mu.Unlock()
	p.announce(p.Status())

	if p.cfg.DataDir != "" {
		if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
			return p.fail(fmt.Errorf("create data dir: %w", err))
		}
		if err := os.WriteFile(p.lockPath(), []byte(time.Now().Format(time.RFC3339)), 0o644); err != nil {
			return p.fail(fmt.Errorf("write lock file: %w", err))
		}
		defer os.Remove(p.lockPath())
	}

	items, err := planner.Plan(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("plan: %w", err))
	}

	p.mu.Lock()
	p.status.Total = len(items)
	p.mu.Unlock()
	p.announce(p.Status())

	for start := 0; start < len(items); start += p.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			p.setState(StateCancelled)
			return err
		}
		if err := p.waitIfPaused(ctx); err != nil {
			p.setState(StateCancelled)
			return err
		}

		end := start + p.cfg.BatchSize
		if end > len(items) {
			end = len(items)
		}
		p.runBatch(ctx, items[start:end])
	}

	p.setState(StateCompleted)
	return nil
}

func (p *Pipeline) fail(err error) error {
	p.mu.Lock()
	p.status.State = StateFailed
	p.status.Reason = err.Error()
	snap := p.status
	p.mu.Unlock()
	p.announce(snap)
	return err
}

// runBatch executes the read/embed/upsert/announce steps for one
// batch, recording per-item errors in Status.Errors rather than
// aborting the whole run — one unreadable or unembeddable node
// shouldn't stop progress on the rest of the project.
func (p *Pipeline) runBatch(ctx context.Context, batch []PlanItem) {
	requests := make([]ioactor.SnippetRequest, len(batch))
	for i, item := range batch {
		requests[i] = ioactor.SnippetRequest{Path: item.Path, ContentHash: item.ContentHash, Start: item.Start, End: item.End}
	}

	reads, err := p.io.GetSnippetsBatch(ctx, requests)
	if err != nil {
		p.recordBatchError(batch, err)
		return
	}

	texts := make([]string, 0, len(batch))
	ok := make([]PlanItem, 0, len(batch))
	for i, r := range reads {
		if r.Err != nil {
			p.recordError(batch[i].Path, r.Err)
			continue
		}
		texts = append(texts, r.Content)
		ok = append(ok, batch[i])
	}
	if len(ok) == 0 {
		return
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		p.recordBatchError(ok, err)
		return
	}

	for i, item := range ok {
		if err := p.upsertOne(item, texts[i], vectors[i]); err != nil {
			p.recordError(item.Path, err)
			continue
		}
		p.mu.Lock()
		p.status.Processed++
		p.status.CurrentFile = item.Path
		snap := p.status
		p.mu.Unlock()
		p.announce(snap)
	}
}

func (p *Pipeline) upsertOne(item PlanItem, text string, vec []float32) error {
	if err := p.store.UpsertEmbedding(graphstore.EmbeddingRecord{
		NodeID: item.NodeID, Model: p.cfg.Model, Dims: p.cfg.Dims, Vector: vec, UpdatedAt: time.Now().Unix(),
	}); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}

	idx := p.vectors.Get(p.cfg.Model, p.cfg.Dims)
	if idx == nil {
		idx = p.vectors.CreateIndex(p.cfg.Model, p.cfg.Dims, p.cfg.VectorConfig)
	}
	if err := idx.Add(item.NodeID, vec); err != nil {
		return fmt.Errorf("add to vector index: %w", err)
	}

	if p.sparse != nil {
		if err := p.sparse.IndexDoc(context.Background(), item.NodeID, text); err != nil {
			return fmt.Errorf("forward to sparse index: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) recordBatchError(batch []PlanItem, err error) {
	for _, item := range batch {
		p.recordError(item.Path, err)
	}
}

func (p *Pipeline) recordError(path string, err error) {
	p.mu.Lock()
	p.status.Errors++
	p.status.CurrentFile = path
	snap := p.status
	p.mu.Unlock()
	p.announce(snap)
	_ = err // surfaced via Status.Errors count; per-item errors aren't individually retained
}
