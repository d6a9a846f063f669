package ioactor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handle is the cloneable, channel-backed entry point to a running
// actor. Share it freely across goroutines; every method sends a
// request and waits for the actor's reply.
type Handle struct {
	a        *actor
	shutdown sync.Once
}

// NewHandle spawns the actor on a dedicated goroutine and returns a
// handle to it. crateNamespace is the namespace passed through to
// every TrackingHash verification and computation this handle performs.
func NewHandle(crateNamespace uuid.UUID, log *slog.Logger) *Handle {
	a := newActor(crateNamespace, log)
	go a.run()
	return &Handle{a: a}
}

func (h *Handle) send(ctx context.Context, msg message) (any, error) {
	msg.reply = make(chan any, 1)
	select {
	case h.a.inbox <- msg:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.a.done:
		return nil, shutdownInitiated()
	}

	select {
	case reply := <-msg.reply:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.a.done:
		return nil, shutdownInitiated()
	}
}

// GetSnippetsBatch reads a batch of snippets, verifying each file's
// content against the caller's expected TrackingHash before reading.
// Results are returned in the same order as requests; individual
// failures do not fail the batch.
func (h *Handle) GetSnippetsBatch(ctx context.Context, requests []SnippetRequest) ([]SnippetResult, error) {
	if len(requests) == 0 {
		return []SnippetResult{}, nil
	}
	reply, err := h.send(ctx, message{kind: msgReadSnippets, ctx: ctx, snippets: requests})
	if err != nil {
		return nil, err
	}
	return reply.([]SnippetResult), nil
}

// WriteSnippetsBatch applies byte-range edits, each independently
// hash-verified before being applied.
func (h *Handle) WriteSnippetsBatch(ctx context.Context, edits []ByteRangeEdit) ([]WriteResult, error) {
	if len(edits) == 0 {
		return []WriteResult{}, nil
	}
	reply, err := h.send(ctx, message{kind: msgWriteRanged, ctx: ctx, ranged: edits})
	if err != nil {
		return nil, err
	}
	return reply.([]WriteResult), nil
}

// WriteBatchNS applies whole-file (non-semantic) edits.
func (h *Handle) WriteBatchNS(ctx context.Context, edits []WholeFileEdit) ([]WriteResult, error) {
	if len(edits) == 0 {
		return []WriteResult{}, nil
	}
	reply, err := h.send(ctx, message{kind: msgWriteWhole, ctx: ctx, whole: edits})
	if err != nil {
		return nil, err
	}
	return reply.([]WriteResult), nil
}

// CreateFile writes a brand-new file and returns its TrackingHash.
// Fails if a file already exists at path.
func (h *Handle) CreateFile(ctx context.Context, path, content string) (WriteResult, error) {
	reply, err := h.send(ctx, message{kind: msgCreateFile, ctx: ctx, create: createRequest{path: path, content: content}})
	if err != nil {
		return WriteResult{}, err
	}
	return reply.(WriteResult), nil
}

// Shutdown signals the actor to stop accepting new work and exit its
// run loop. Idempotent: subsequent calls are no-ops. In-flight
// requests at the moment of shutdown observe KindShutdownInitiated.
func (h *Handle) Shutdown(ctx context.Context) error {
	h.shutdown.Do(func() {
		select {
		case h.a.inbox <- message{kind: msgShutdown}:
		case <-ctx.Done():
		case <-h.a.done:
		}
	})
	return nil
}
