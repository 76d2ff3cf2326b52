package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/tatami/internal/adapters/mq/queue"
	"github.com/okian/tatami/internal/adapters/mq/worker"
	"github.com/okian/tatami/internal/adapters/repository"
	"github.com/okian/tatami/internal/domain/model"
	logging "github.com/okian/tatami/pkg/logger"
)

type failingApplier struct {
	err error
}

func (f failingApplier) Upsert(context.Context, model.Match) (bool, error) {
	return false, f.err
}

// slowFirstWrite delays its first write so a later one could overtake it.
type slowFirstWrite struct {
	store *repository.MemoryStore
	delay time.Duration
	calls atomic.Int32
}

func (s *slowFirstWrite) Upsert(ctx context.Context, m model.Match) (bool, error) {
	if s.calls.Add(1) == 1 {
		time.Sleep(s.delay)
	}
	return s.store.Upsert(ctx, m)
}

type failureLog struct {
	mu   sync.Mutex
	seen map[string]error
}

func (l *failureLog) record(s worker.Submission, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[s.SubmissionID] = err
}

func (l *failureLog) get(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id]
}

func result(id, phase string) worker.Submission {
	return worker.Submission{
		SubmissionID: "sub-" + id,
		PhaseID:      phase,
		ReceivedAt:   time.Now(),
		Match: model.Match{
			ID: id,
			Participants: [2]model.Participant{
				{CompetitorID: id + "-red"},
				{CompetitorID: id + "-blue"},
			},
			ScoreA:      model.IntPtr(4),
			ScoreB:      model.IntPtr(1),
			WinnerID:    id + "-red",
			VictoryType: "VPO1",
			Status:      model.StatusFinished,
		},
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a queue into a store", t, func() {
		_ = logging.Init()
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		store := repository.NewMemoryStore()
		failures := &failureLog{seen: map[string]error{}}
		w := worker.NewInMemoryWorker(q, store,
			worker.WithName("test-worker"),
			worker.WithFailureHandler(failures.record),
		)

		convey.Convey("When valid submissions are queued and the queue is closed", func() {
			convey.So(q.Enqueue(ctx, result("m1", "seniors-74")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, result("m2", "seniors-74")), convey.ShouldBeNil)
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then each match lands in the submission's phase", func() {
				ms, err := store.Matches(ctx, "seniors-74")
				convey.So(err, convey.ShouldBeNil)
				convey.So(ms, convey.ShouldHaveLength, 2)
				convey.So(ms[0].PhaseID, convey.ShouldEqual, "seniors-74")
				convey.So(ms[0].WinnerID, convey.ShouldEqual, "m1-red")
			})

			convey.Convey("Then Done is closed", func() {
				closed := false
				select {
				case <-w.Done():
					closed = true
				default:
				}
				convey.So(closed, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a submission carries an invalid match", func() {
			bad := result("m3", "seniors-74")
			bad.Match.Status = "paused"
			clash := result("m4", "seniors-74")
			clash.Match.PhaseID = "juniors-60"
			convey.So(q.Enqueue(ctx, bad), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, clash), convey.ShouldBeNil)
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then nothing is stored and the failures are reported", func() {
				convey.So(store.Count(ctx), convey.ShouldEqual, 0)
				convey.So(errors.Is(failures.get("sub-m3"), model.ErrInvalidMatch), convey.ShouldBeTrue)
				convey.So(errors.Is(failures.get("sub-m4"), model.ErrInvalidMatch), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			w.Run(cctx)

			convey.Convey("Then the worker stops without the queue being closed", func() {
				convey.So(q.IsClosed(), convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given a store that refuses writes", t, func() {
		_ = logging.Init()
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		failures := &failureLog{seen: map[string]error{}}
		storeErr := errors.New("disk on fire")
		w := worker.NewInMemoryWorker(q, failingApplier{err: storeErr}, worker.WithFailureHandler(failures.record))

		convey.So(q.Enqueue(ctx, result("m1", "p")), convey.ShouldBeNil)
		_ = q.Close()
		w.Run(ctx)

		convey.Convey("Then the store error reaches the failure handler", func() {
			convey.So(errors.Is(failures.get("sub-m1"), storeErr), convey.ShouldBeTrue)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		store := repository.NewMemoryStore()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, q, store)

			convey.Convey("Then it runs one worker", func() {
				convey.So(p.Size(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When many submissions are processed concurrently", func() {
			p := worker.NewPool(4, q, store)
			p.Start(ctx)
			for i := range 200 {
				convey.So(q.Enqueue(ctx, result(fmt.Sprintf("m%03d", i), fmt.Sprintf("phase-%d", i%3))), convey.ShouldBeNil)
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := p.Shutdown(shutdownCtx)

			convey.Convey("Then shutdown drains every queued submission", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Count(ctx), convey.ShouldEqual, 200)
				convey.So(store.Phases(ctx), convey.ShouldHaveLength, 3)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})

			convey.Convey("Then a second shutdown is a no-op", func() {
				convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a result and its correction are queued back to back", func() {
			slow := &slowFirstWrite{store: store, delay: 100 * time.Millisecond}
			p := worker.NewPool(4, q, slow)
			p.Start(ctx)

			entry := result("m1", "seniors-74")
			correction := result("m1", "seniors-74")
			correction.SubmissionID = "sub-m1-fix"
			correction.Match.WinnerID = "m1-blue"
			convey.So(q.Enqueue(ctx, entry), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, correction), convey.ShouldBeNil)

			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			convey.So(p.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then the correction is what the store keeps", func() {
				ms, err := store.Matches(ctx, "seniors-74")
				convey.So(err, convey.ShouldBeNil)
				convey.So(ms, convey.ShouldHaveLength, 1)
				convey.So(ms[0].WinnerID, convey.ShouldEqual, "m1-blue")
			})
		})

		convey.Convey("When many matches are corrected concurrently", func() {
			p := worker.NewPool(4, q, store)
			p.Start(ctx)
			for round := range 3 {
				for i := range 20 {
					s := result(fmt.Sprintf("m%02d", i), "seniors-74")
					s.SubmissionID = fmt.Sprintf("sub-%d-%d", i, round)
					s.Match.ScoreA = model.IntPtr(round)
					convey.So(q.Enqueue(ctx, s), convey.ShouldBeNil)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			convey.So(p.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then every match holds its last queued state", func() {
				ms, err := store.Matches(ctx, "seniors-74")
				convey.So(err, convey.ShouldBeNil)
				convey.So(ms, convey.ShouldHaveLength, 20)
				for _, m := range ms {
					convey.So(m.Score(0), convey.ShouldEqual, 2)
				}
			})
		})

		convey.Convey("When shut down before starting", func() {
			p := worker.NewPool(2, q, store)

			convey.Convey("Then it closes the queue and returns", func() {
				convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
