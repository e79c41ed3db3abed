package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// Job types.
const (
	TypeDocumentProcessing = "document_processing"
	TypeAssessmentRequest  = "assessment_request"
)

// Job is one unit of background work: a type naming the handler and
// the id of the row the handler operates on.
type Job struct {
	Type     string
	EntityID uuid.UUID
}

// Handler runs one job type. A returned error is logged and the job is
// dropped; handlers own their terminal failure states (e.g. marking a
// row failed) because there are no retries.
type Handler interface {
	Type() string
	Run(ctx context.Context, job Job) error
}

// Dispatcher is a bounded channel feeding a fixed worker pool. Enqueue
// never blocks the caller: a full queue is an error surfaced to the
// enqueuing request instead of unbounded buffering.
type Dispatcher struct {
	log      *logger.Logger
	queue    chan Job
	handlers map[string]Handler
	workers  int
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
}

func NewDispatcher(workers, queueSize int, log *logger.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		log:      log.With("component", "JobDispatcher"),
		queue:    make(chan Job, queueSize),
		handlers: make(map[string]Handler),
		workers:  workers,
	}
}

// Register wires a handler for its job type. Must be called before
// Start.
func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		panic(fmt.Sprintf("jobs: register %q after start", h.Type()))
	}
	d.handlers[h.Type()] = h
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled, then exit once the queue is empty.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	d.log.Info("Job dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case job := <-d.queue:
					d.run(context.Background(), job)
				default:
					return
				}
			}
		case job := <-d.queue:
			d.run(ctx, job)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("Job handler panicked", "type", job.Type, "entity_id", job.EntityID.String(), "panic", fmt.Sprint(rec))
		}
	}()

	h, ok := d.handlers[job.Type]
	if !ok {
		d.log.Error("No handler for job type", "type", job.Type)
		return
	}
	if err := h.Run(ctx, job); err != nil {
		d.log.Error("Job failed", "type", job.Type, "entity_id", job.EntityID.String(), "error", err)
		return
	}
	d.log.Info("Job completed", "type", job.Type, "entity_id", job.EntityID.String())
}

// Enqueue hands a job to the pool without blocking.
func (d *Dispatcher) Enqueue(job Job) error {
	select {
	case d.queue <- job:
		return nil
	default:
		return apierr.Externalf("job_queue_full", "job queue is full, try again later")
	}
}

// Wait blocks until all workers have exited. Call after cancelling the
// context passed to Start.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
