package tasks

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fotomagic/internal/infra"
)

func newTestRegistry() *Registry {
	return NewRegistry(infra.Logger(zerolog.New(io.Discard)))
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartUniqueSupersedesRunningTask(t *testing.T) {
	r := newTestRegistry()
	firstCanceled := make(chan struct{})
	secondStarted := make(chan struct{})

	r.StartUnique(context.Background(), "payment:42", func(ctx context.Context, _ *Handle) {
		<-ctx.Done()
		close(firstCanceled)
	})
	r.StartUnique(context.Background(), "payment:42", func(ctx context.Context, _ *Handle) {
		close(secondStarted)
		<-ctx.Done()
	})

	select {
	case <-firstCanceled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded task was not canceled")
	}
	<-secondStarted
	if !r.Has("payment:42") {
		t.Fatal("replacement task must stay registered")
	}
	r.Cancel("payment:42")
}

func TestSupersededTaskNeverAppliesEffects(t *testing.T) {
	r := newTestRegistry()
	var settled atomic.Int32
	released := make(chan struct{})

	r.StartUnique(context.Background(), "payment:42", func(ctx context.Context, h *Handle) {
		<-released // simulate the poll observing success after being superseded
		if h.MarkSettling() {
			settled.Add(1)
		}
	})
	r.StartUnique(context.Background(), "payment:42", func(ctx context.Context, _ *Handle) {})
	close(released)

	waitFor(t, func() bool { return !r.Has("payment:42") }, "tasks to drain")
	if got := settled.Load(); got != 0 {
		t.Fatalf("superseded task applied settlement %d times", got)
	}
}

func TestSettlingTaskSurvivesSupersede(t *testing.T) {
	r := newTestRegistry()
	var settled atomic.Int32
	settling := make(chan struct{})
	proceed := make(chan struct{})

	r.StartUnique(context.Background(), "payment:42", func(ctx context.Context, h *Handle) {
		if !h.MarkSettling() {
			return
		}
		close(settling)
		<-proceed
		// The context must not have been canceled mid-settlement.
		if ctx.Err() != nil {
			return
		}
		settled.Add(1)
	})
	<-settling
	r.StartUnique(context.Background(), "payment:42", func(ctx context.Context, _ *Handle) {})
	close(proceed)

	waitFor(t, func() bool { return settled.Load() == 1 }, "settlement to complete")
	r.Cancel("payment:42")
}

func TestTaskRemovesItselfOnCompletion(t *testing.T) {
	r := newTestRegistry()
	r.StartUnique(context.Background(), "payment:7", func(ctx context.Context, _ *Handle) {})
	waitFor(t, func() bool { return !r.Has("payment:7") }, "self removal")
}

func TestCancelIsNoopForSettlingTask(t *testing.T) {
	r := newTestRegistry()
	settling := make(chan struct{})
	proceed := make(chan struct{})

	r.StartUnique(context.Background(), "payment:9", func(ctx context.Context, h *Handle) {
		h.MarkSettling()
		close(settling)
		<-proceed
	})
	<-settling
	if r.Cancel("payment:9") {
		t.Fatal("cancel must be a no-op once the task is settling")
	}
	close(proceed)
	waitFor(t, func() bool { return !r.Has("payment:9") }, "self removal")
}

func TestIndependentKeysDoNotInterfere(t *testing.T) {
	r := newTestRegistry()
	blockA := make(chan struct{})
	r.StartUnique(context.Background(), "payment:1", func(ctx context.Context, _ *Handle) {
		select {
		case <-blockA:
		case <-ctx.Done():
		}
	})
	r.StartUnique(context.Background(), "payment:2", func(ctx context.Context, _ *Handle) {})

	waitFor(t, func() bool { return !r.Has("payment:2") }, "second task to finish")
	if !r.Has("payment:1") {
		t.Fatal("unrelated task must remain registered")
	}
	close(blockA)
}
