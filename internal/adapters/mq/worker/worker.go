// Package worker applies queued result submissions to the match store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/pkg/logger"
	"github.com/okian/tatami/pkg/metrics"
)

// Submission is what workers read off the queue.
type Submission = model.ResultSubmission

// Applier writes a match into the store.
type Applier interface {
	Upsert(ctx context.Context, m model.Match) (bool, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// InMemoryWorker drains the queue and applies each submission.
type InMemoryWorker struct {
	queue     Queue
	applier   Applier
	name      string
	onFailure FailureFunc
	logger    logger.Logger

	done chan struct{}
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		applier:   applier,
		name:      "worker",
		onFailure: func(Submission, error) {},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes submissions until the queue is closed and drained or ctx ends.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-items:
			if !ok {
				return
			}
			if err := w.apply(ctx, s); err != nil {
				w.onFailure(s, err)
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) apply(ctx context.Context, s Submission) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	m := s.Match
	if m.PhaseID == "" {
		m.PhaseID = s.PhaseID
	}
	if m.PhaseID != s.PhaseID {
		err := fmt.Errorf("%w: match phase %q differs from submission phase %q",
			model.ErrInvalidMatch, m.PhaseID, s.PhaseID)
		w.fail(ctx, s, "phase_mismatch", err)
		return err
	}
	if err := m.Validate(); err != nil {
		w.fail(ctx, s, "invalid_match", err)
		return err
	}

	replaced, err := w.applier.Upsert(ctx, m)
	if err != nil {
		w.fail(ctx, s, "store_error", err)
		return fmt.Errorf("apply submission %s: %w", s.SubmissionID, err)
	}

	if !s.ReceivedAt.IsZero() {
		metrics.RecordResultApplied(float64(time.Since(s.ReceivedAt).Microseconds()) / 1000)
	} else {
		metrics.RecordResultApplied(0)
	}
	w.logger.Debug(ctx, "result applied",
		logger.String("submission_id", s.SubmissionID),
		logger.String("phase_id", m.PhaseID),
		logger.String("match_id", m.ID),
		logger.Bool("replaced", replaced),
	)
	return nil
}

func (w *InMemoryWorker) fail(ctx context.Context, s Submission, kind string, err error) { //nolint:gocritic // hugeParam
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	w.logger.Error(ctx, "result not applied",
		logger.String("submission_id", s.SubmissionID),
		logger.String("match_id", s.Match.ID),
		logger.Error(err),
	)
}

// laneBuffer is how many submissions may wait on one worker's lane.
const laneBuffer = 64

// lane is one worker's share of the queue.
type lane chan Submission

// Dequeue implements Queue.
func (l lane) Dequeue(context.Context) <-chan Submission { return l }

// laneFor keys a submission by phase and match id, so every entry for one
// match is applied by the same worker in queue order.
func laneFor(s Submission, lanes int) int { //nolint:gocritic // hugeParam
	key := s.PhaseID + "\x00" + s.Match.ID
	return int(xxhash.Sum64String(key) % uint64(lanes))
}

// Pool manages multiple workers fed from one queue. A dispatcher routes each
// submission to a worker by match, so a later correction never lands before
// the entry it replaces.
type Pool struct {
	workers []*InMemoryWorker
	lanes   []lane
	queue   Queue
	logger  logger.Logger

	cancel context.CancelFunc
	once   sync.Once
}

// NewPool creates a pool of workerCount workers. opts apply to every worker.
func NewPool(workerCount int, q Queue, applier Applier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		lanes:   make([]lane, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		p.lanes[i] = make(lane, laneBuffer)
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(p.lanes[i], applier, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts the dispatcher and all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.dispatch(ctx)
	metrics.UpdateWorkerCount(len(p.workers))
}

// dispatch moves submissions from the queue onto the worker lanes until the
// queue is closed and drained or ctx ends. Lanes are closed on return.
func (p *Pool) dispatch(ctx context.Context) {
	defer func() {
		for _, l := range p.lanes {
			close(l)
		}
	}()

	items := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-items:
			if !ok {
				return
			}
			select {
			case p.lanes[laneFor(s, len(p.lanes))] <- s:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx ends are cancelled and the remaining submissions
// are dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		if p.cancel == nil {
			return
		}
		for i, w := range p.workers {
			select {
			case <-w.Done():
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown timed out: %w", ctx.Err())
			}
			if err != nil {
				break
			}
		}
		p.cancel()
		metrics.UpdateWorkerCount(0)
	})
	return err
}
