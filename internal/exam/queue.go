package exam

import (
	"context"
	"sync"
)

// DefaultConcurrency is the admission cap: how many submissions may be
// scored/persisted at the same time. Arrival is never capped.
const DefaultConcurrency = 25

// Outcome is the single response every enqueued submission eventually
// produces: a recorded result, or one of the errors in errors.go.
type Outcome struct {
	Result Result
	Err    error
}

type processFunc func(ctx context.Context, req SubmitRequest) (Result, error)

type queued struct {
	ctx context.Context
	req SubmitRequest
	out chan Outcome // buffered; the pipeline never blocks on a gone caller
}

// Queue admits submissions into processing in strict FIFO order while
// holding concurrent processing at or below the cap. Enqueue never
// blocks and never rejects; backpressure is visible only as latency.
// Drain is self-propelled: every completion admits the next waiter.
type Queue struct {
	mu       sync.Mutex
	waiting  []*queued
	inFlight int
	limit    int
	process  processFunc
}

func NewQueue(limit int, process processFunc) *Queue {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Queue{limit: limit, process: process}
}

// Enqueue appends the request to the queue tail and returns the channel
// its outcome will arrive on. The channel is buffered so a caller that
// went away does not stall the slot; side effects still run.
func (q *Queue) Enqueue(ctx context.Context, req SubmitRequest) <-chan Outcome {
	t := &queued{ctx: ctx, req: req, out: make(chan Outcome, 1)}
	q.mu.Lock()
	q.waiting = append(q.waiting, t)
	q.admitLocked()
	q.mu.Unlock()
	return t.out
}

// admitLocked moves heads into processing while slots remain. Caller
// holds q.mu.
func (q *Queue) admitLocked() {
	for q.inFlight < q.limit && len(q.waiting) > 0 {
		t := q.waiting[0]
		q.waiting = q.waiting[1:]
		q.inFlight++
		go q.run(t)
	}
}

func (q *Queue) run(t *queued) {
	// Client disconnects must not skip or corrupt persistence, so the
	// processing step runs detached from the request's cancellation.
	res, err := q.process(context.WithoutCancel(t.ctx), t.req)

	// Free the slot and admit the next waiter before answering the
	// caller, so a slow reader never delays the drain.
	q.mu.Lock()
	q.inFlight--
	q.admitLocked()
	q.mu.Unlock()

	t.out <- Outcome{Result: res, Err: err}
}

// Depth reports how many submissions are waiting for a slot. Arrivals
// are never capped, so this is the number operators watch.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// InFlight reports how many submissions hold a processing slot.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}
