// Package service wires the match store, the submission pipeline and the
// ranking engine into the operations the HTTP API and CLI need.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tatami/internal/adapters/mq/queue"
	"github.com/okian/tatami/internal/adapters/mq/worker"
	"github.com/okian/tatami/internal/adapters/repository"
	"github.com/okian/tatami/internal/domain/dedupe"
	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/internal/domain/scoring"
	"github.com/okian/tatami/internal/domain/types"
	"github.com/okian/tatami/pkg/logger"
	"github.com/okian/tatami/pkg/metrics"
)

// Receipt acknowledges a result submission.
type Receipt struct {
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	store    repository.MatchStore
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	fixtures *repository.Fixtures

	workerCount int
	queueSize   int
	dedupeSize  int

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  100_000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start seeds fixtures and starts the submission pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.fixtures != nil {
		n, err := s.fixtures.Seed(ctx, s.store)
		if err != nil {
			return fmt.Errorf("seed fixtures: %w", err)
		}
		s.logger.Info(ctx, "fixtures loaded",
			logger.Int("phases", len(s.fixtures.Phases)),
			logger.Int("matches", n),
		)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithFailureHandler(s.onApplyFailure),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains queued submissions and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping ranking service")
	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		s.logger.Warn(ctx, "queued submissions dropped on shutdown", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "ranking service stopped")
	return nil
}

// onApplyFailure forgets the submission id so a corrected retry is accepted.
func (s *Service) onApplyFailure(sub model.ResultSubmission, _ error) {
	s.deduper.Unrecord(context.Background(), sub.SubmissionID)
}

// Submit validates a result entry and queues it for the workers. A
// submission id seen before is acknowledged as a duplicate and dropped.
func (s *Service) Submit(ctx context.Context, sub model.ResultSubmission) (Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Receipt{}, ErrNotStarted
	}

	if err := s.validate(&sub); err != nil {
		metrics.RecordResultRejected("invalid")
		return Receipt{}, err
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	sub.ReceivedAt = s.now()

	if s.deduper.SeenAndRecord(ctx, sub.SubmissionID) {
		metrics.RecordResultDuplicate()
		s.logger.Debug(ctx, "duplicate submission dropped",
			logger.String("submission_id", sub.SubmissionID),
		)
		return Receipt{SubmissionID: sub.SubmissionID, Duplicate: true}, nil
	}

	if err := s.queue.Enqueue(ctx, sub); err != nil {
		s.deduper.Unrecord(ctx, sub.SubmissionID)
		metrics.RecordResultRejected("backpressure")
		return Receipt{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}

	metrics.RecordResultSubmitted()
	return Receipt{SubmissionID: sub.SubmissionID}, nil
}

func (s *Service) validate(sub *model.ResultSubmission) error {
	if sub.PhaseID == "" {
		return fmt.Errorf("%w: missing phase_id", ErrInvalidSubmission)
	}
	if sub.Match.PhaseID == "" {
		sub.Match.PhaseID = sub.PhaseID
	}
	if sub.Match.PhaseID != sub.PhaseID {
		return fmt.Errorf("%w: match phase %q differs from %q", ErrInvalidSubmission, sub.Match.PhaseID, sub.PhaseID)
	}
	if err := sub.Match.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	return nil
}

// Phases lists the phases known to the store.
func (s *Service) Phases(ctx context.Context) []types.PhaseSummary {
	return s.store.Phases(ctx)
}

// Matches returns the raw matches of a phase.
func (s *Service) Matches(ctx context.Context, phaseID string) ([]model.Match, error) {
	return s.store.Matches(ctx, phaseID)
}

// Ranking computes the final ranking of a phase.
func (s *Service) Ranking(ctx context.Context, phaseID string) (types.Ranking, error) {
	return s.table(ctx, phaseID, types.ViewRanking, scoring.Rank)
}

// Standings computes the simplified standings of a phase.
func (s *Service) Standings(ctx context.Context, phaseID string) (types.Ranking, error) {
	return s.table(ctx, phaseID, types.ViewStandings, scoring.Standings)
}

func (s *Service) table(
	ctx context.Context,
	phaseID, view string,
	compute func([]model.Match) ([]scoring.Row, scoring.Report),
) (types.Ranking, error) {
	matches, err := s.store.Matches(ctx, phaseID)
	if err != nil {
		return types.Ranking{}, err
	}

	start := time.Now()
	rows, report := compute(matches)
	metrics.RecordRankingComputed(view, float64(time.Since(start).Microseconds())/1000)
	s.observe(ctx, phaseID, view, report)

	return types.Ranking{
		PhaseID:     phaseID,
		View:        view,
		Rows:        rows,
		Report:      report,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// observe surfaces data-quality conditions found while computing a table.
func (s *Service) observe(ctx context.Context, phaseID, view string, r scoring.Report) {
	if r.Clean() {
		return
	}
	metrics.RecordMatchesFlagged(metrics.ReasonIncompletePairing, len(r.IncompletePairings))
	metrics.RecordMatchesFlagged(metrics.ReasonWinnerMismatch, len(r.WinnerMismatches))
	metrics.RecordMatchesFlagged(metrics.ReasonUnknownVictoryType, len(r.UnknownVictoryTypes))
	s.log().Warn(ctx, "ranking computed from inconsistent results",
		logger.String("phase_id", phaseID),
		logger.String("view", view),
		logger.Strings("incomplete_pairings", r.IncompletePairings),
		logger.Strings("winner_mismatches", r.WinnerMismatches),
		logger.Strings("unknown_victory_types", r.UnknownVictoryTypes),
	)
}

// Rounds groups a phase's matches by normalized round.
func (s *Service) Rounds(ctx context.Context, phaseID string) (types.Rounds, error) {
	matches, err := s.store.Matches(ctx, phaseID)
	if err != nil {
		return types.Rounds{}, err
	}
	return types.Rounds{PhaseID: phaseID, Rounds: scoring.GroupByRound(matches)}, nil
}

// Teams computes the team classification of a phase from its ranking.
func (s *Service) Teams(ctx context.Context, phaseID string) (types.Teams, error) {
	ranking, err := s.Ranking(ctx, phaseID)
	if err != nil {
		return types.Teams{}, err
	}
	return ranking.TeamsOf(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"phases":      len(s.store.Phases(ctx)),
		"matches":     s.store.Count(ctx),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["submissionsSeen"] = s.deduper.Size()
	}
	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get().Named("service")
	}
	return s.logger
}
