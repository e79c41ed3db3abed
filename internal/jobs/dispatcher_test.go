package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingHandler struct {
	typ      string
	mu       sync.Mutex
	seen     []uuid.UUID
	panicMsg string
	done     chan struct{}
}

func (h *recordingHandler) Type() string { return h.typ }

func (h *recordingHandler) Run(ctx context.Context, job Job) error {
	h.mu.Lock()
	h.seen = append(h.seen, job.EntityID)
	h.mu.Unlock()
	if h.done != nil {
		h.done <- struct{}{}
	}
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewDispatcher(2, 16, jobLogger(t))
	a := &recordingHandler{typ: "alpha", done: make(chan struct{}, 4)}
	b := &recordingHandler{typ: "beta", done: make(chan struct{}, 4)}
	d.Register(a)
	d.Register(b)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	if err := d.Enqueue(Job{Type: "alpha", EntityID: uuid.New()}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := d.Enqueue(Job{Type: "beta", EntityID: uuid.New()}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, a.done)
	waitFor(t, b.done)
	cancel()
	d.Wait()

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("routing: alpha=%d beta=%d", a.count(), b.count())
	}
}

// A panicking handler takes down neither the worker nor later jobs.
func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewDispatcher(1, 16, jobLogger(t))
	h := &recordingHandler{typ: "flaky", panicMsg: "boom", done: make(chan struct{}, 4)}
	d.Register(h)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	if err := d.Enqueue(Job{Type: "flaky", EntityID: uuid.New()}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, h.done)
	if err := d.Enqueue(Job{Type: "flaky", EntityID: uuid.New()}); err != nil {
		t.Fatalf("Enqueue after panic: %v", err)
	}
	waitFor(t, h.done)
	cancel()
	d.Wait()

	if h.count() != 2 {
		t.Fatalf("jobs after panic: want=2 got=%d", h.count())
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	// Never started, so nothing drains the queue.
	d := NewDispatcher(1, 1, jobLogger(t))
	d.Register(&recordingHandler{typ: "noop"})

	if err := d.Enqueue(Job{Type: "noop", EntityID: uuid.New()}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := d.Enqueue(Job{Type: "noop", EntityID: uuid.New()}); err == nil {
		t.Fatalf("second enqueue must fail on a full queue")
	}
}

func TestDispatcherUnknownTypeIsDropped(t *testing.T) {
	d := NewDispatcher(1, 4, jobLogger(t))
	h := &recordingHandler{typ: "known", done: make(chan struct{}, 2)}
	d.Register(h)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	if err := d.Enqueue(Job{Type: "unknown", EntityID: uuid.New()}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	// A later job on a known type still runs.
	if err := d.Enqueue(Job{Type: "known", EntityID: uuid.New()}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, h.done)
	cancel()
	d.Wait()

	if h.count() != 1 {
		t.Fatalf("known handler: want=1 got=%d", h.count())
	}
}

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for job")
	}
}
