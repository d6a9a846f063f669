package ioactor

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/plokeai/plokecore/pkg/identity"
)

const (
	defaultSemaphoreLimit = 50
	maxSemaphoreLimit     = 100
)

type message struct {
	kind     messageKind
	ctx      context.Context
	snippets []SnippetRequest
	ranged   []ByteRangeEdit
	whole    []WholeFileEdit
	create   createRequest
	reply    chan any
}

type createRequest struct {
	path    string
	content string
}

type messageKind uint8

const (
	msgReadSnippets messageKind = iota
	msgWriteRanged
	msgWriteWhole
	msgCreateFile
	msgShutdown
)

// actor is the dedicated-goroutine file I/O worker. Callers never talk
// to it directly; they go through a Handle.
type actor struct {
	inbox          chan message
	crateNamespace uuid.UUID
	limit          int
	log            *slog.Logger
	done           chan struct{}
}

func newActor(crateNamespace uuid.UUID, log *slog.Logger) *actor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &actor{
		inbox:          make(chan message, 100),
		crateNamespace: crateNamespace,
		limit:          semaphoreLimit(),
		log:            log,
		done:           make(chan struct{}),
	}
}

// run owns the actor's goroutine for its lifetime. It locks the OS
// thread the way the original implementation dedicated an OS thread to
// its single-threaded runtime, isolating file-descriptor-heavy work
// from the rest of the process's scheduling.
func (a *actor) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(a.done)

	a.log.Info("ioactor started", "semaphore_limit", a.limit)
	for msg := range a.inbox {
		switch msg.kind {
		case msgReadSnippets:
			msg.reply <- a.readSnippetBatch(msg.ctx, msg.snippets)
		case msgWriteRanged:
			msg.reply <- a.writeRangedBatch(msg.ctx, msg.ranged)
		case msgWriteWhole:
			msg.reply <- a.writeWholeBatch(msg.ctx, msg.whole)
		case msgCreateFile:
			msg.reply <- a.createFile(msg.create)
		case msgShutdown:
			a.log.Info("ioactor shutdown requested")
			return
		}
	}
}

type indexed[T any] struct {
	idx   int
	value T
}

// readSnippetBatch groups requests by path, processes each file under
// a bounded semaphore (one goroutine per file), and restores the
// caller's original request order in the returned slice.
func (a *actor) readSnippetBatch(ctx context.Context, requests []SnippetRequest) []SnippetResult {
	byPath := make(map[string][]indexed[SnippetRequest])
	for i, r := range requests {
		byPath[r.Path] = append(byPath[r.Path], indexed[SnippetRequest]{idx: i, value: r})
	}

	sem := make(chan struct{}, a.limit)
	var mu sync.Mutex
	var collected []indexed[SnippetResult]
	g, gctx := errgroup.WithContext(ctx)

	for path, group := range byPath {
		path, group := path, group
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				mu.Lock()
				for _, req := range group {
					collected = append(collected, indexed[SnippetResult]{idx: req.idx, value: SnippetResult{Err: shutdownInitiated()}})
				}
				mu.Unlock()
				return nil
			}
			defer func() { <-sem }()

			results := processFileSnippets(a.crateNamespace, path, group)
			mu.Lock()
			collected = append(collected, results...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return finalizeSnippetResults(len(requests), collected)
}

func processFileSnippets(crateNamespace uuid.UUID, path string, group []indexed[SnippetRequest]) []indexed[SnippetResult] {
	content, err := os.ReadFile(path)
	if err != nil {
		out := make([]indexed[SnippetResult], 0, len(group))
		for _, req := range group {
			out = append(out, indexed[SnippetResult]{idx: req.idx, value: SnippetResult{Err: fileOp("open", path, err)}})
		}
		return out
	}

	expected := group[0].value.ContentHash
	actual := identity.GenerateTrackingHash(crateNamespace, path, string(content))
	if actual != expected {
		out := make([]indexed[SnippetResult], 0, len(group))
		for _, req := range group {
			out = append(out, indexed[SnippetResult]{idx: req.idx, value: SnippetResult{Err: contentMismatch(path)}})
		}
		return out
	}

	out := make([]indexed[SnippetResult], 0, len(group))
	for _, req := range group {
		start, end := req.value.Start, req.value.End
		if start < 0 || end > len(content) || start > end {
			out = append(out, indexed[SnippetResult]{
				idx:   req.idx,
				value: SnippetResult{Err: fileOp("seek", path, errRangeOutOfBounds(start, end, len(content)))},
			})
			continue
		}
		snippet := content[start:end]
		if !utf8.Valid(snippet) {
			out = append(out, indexed[SnippetResult]{idx: req.idx, value: SnippetResult{Err: utf8Error(path, errInvalidUTF8)}})
			continue
		}
		out = append(out, indexed[SnippetResult]{idx: req.idx, value: SnippetResult{Content: string(snippet)}})
	}
	return out
}

func finalizeSnippetResults(total int, collected []indexed[SnippetResult]) []SnippetResult {
	sort.Slice(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })

	final := make([]SnippetResult, total)
	pos := 0
	for i := 0; i < total; i++ {
		if pos < len(collected) && collected[pos].idx == i {
			final[i] = collected[pos].value
			pos++
		} else {
			final[i] = SnippetResult{Err: invalidState("result missing for request")}
		}
	}
	return final
}
