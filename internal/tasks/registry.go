package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"fotomagic/internal/infra"
)

// Task phases. Only a task still polling may be canceled; once it enters
// settling its side effects run to completion even if superseded.
const (
	phasePolling int32 = iota
	phaseSettling
	phaseDone
)

// Handle is the registry's reference to one running background task.
type Handle struct {
	key    string
	cancel context.CancelFunc
	phase  atomic.Int32
}

// MarkSettling moves the task from its cancellable polling phase into
// settlement. It reports false when the task has already been canceled or
// finished, in which case the caller must not apply its side effects.
func (h *Handle) MarkSettling() bool {
	return h.phase.CompareAndSwap(phasePolling, phaseSettling)
}

// cancelIfPolling cooperatively cancels the task unless it already left the
// polling phase.
func (h *Handle) cancelIfPolling() bool {
	if h.phase.CompareAndSwap(phasePolling, phaseDone) {
		h.cancel()
		return true
	}
	return false
}

// Registry tracks cancellable named background tasks, guaranteeing at most
// one live task per key. The key→task map is the only shared mutable state
// in the orchestration core and is guarded by a single mutex.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]*Handle
	logger infra.Logger
}

// NewRegistry builds an empty task registry.
func NewRegistry(logger infra.Logger) *Registry {
	return &Registry{
		tasks:  make(map[string]*Handle),
		logger: logger,
	}
}

// StartUnique cancels and forgets any live task registered under key, then
// starts body on its own goroutine and registers it. Cancellation of the
// superseded task is cooperative: it observes its context at the next
// suspension point. The new task removes its own entry when body returns.
func (r *Registry) StartUnique(ctx context.Context, key string, body func(ctx context.Context, h *Handle)) {
	taskCtx, cancel := context.WithCancel(ctx)
	h := &Handle{key: key, cancel: cancel}

	r.mu.Lock()
	if old, ok := r.tasks[key]; ok {
		if old.cancelIfPolling() {
			r.logger.Debug().Str("task", key).Msg("tasks: superseded running task")
		}
	}
	r.tasks[key] = h
	r.mu.Unlock()

	go func() {
		defer r.remove(h)
		body(taskCtx, h)
	}()
}

// Cancel cooperatively stops the task registered under key, if any. It
// reports whether a still-polling task was actually signalled; a task already
// settling finishes its side effects regardless.
func (r *Registry) Cancel(key string) bool {
	r.mu.Lock()
	h, ok := r.tasks[key]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return h.cancelIfPolling()
}

// Has reports whether a task is currently registered under key.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[key]
	return ok
}

// remove drops h from the map unless a replacement already took the key.
func (r *Registry) remove(h *Handle) {
	h.phase.Store(phaseDone)
	h.cancel()

	r.mu.Lock()
	if r.tasks[h.key] == h {
		delete(r.tasks, h.key)
	}
	r.mu.Unlock()
}
