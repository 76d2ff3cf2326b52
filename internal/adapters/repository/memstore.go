package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/internal/domain/types"
	"github.com/okian/tatami/pkg/metrics"
)

// MemoryStore is an in-memory MatchStore guarded by a RWMutex.
type MemoryStore struct {
	mu            sync.RWMutex
	phases        map[string]map[string]model.Match
	total         int
	phaseCapacity int
}

var _ MatchStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		phases: make(map[string]map[string]model.Match),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert stores m under m.PhaseID.
func (s *MemoryStore) Upsert(_ context.Context, m model.Match) (bool, error) {
	if m.PhaseID == "" {
		metrics.RecordErrorByComponent("repository", "missing_phase")
		return false, fmt.Errorf("%w: match %s", ErrMissingPhase, m.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	phase, ok := s.phases[m.PhaseID]
	if !ok {
		phase = make(map[string]model.Match)
		s.phases[m.PhaseID] = phase
	}
	_, replaced := phase[m.ID]
	if !replaced && s.phaseCapacity > 0 && len(phase) >= s.phaseCapacity {
		metrics.RecordErrorByComponent("repository", "phase_full")
		return false, fmt.Errorf("%w: phase %s holds %d matches", ErrPhaseFull, m.PhaseID, len(phase))
	}
	phase[m.ID] = m
	if !replaced {
		s.total++
	}
	metrics.UpdateStoreSize(len(s.phases), s.total)
	return replaced, nil
}

// Matches returns the phase's matches ordered by number then id.
func (s *MemoryStore) Matches(_ context.Context, phaseID string) ([]model.Match, error) {
	s.mu.RLock()
	phase, ok := s.phases[phaseID]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, phaseID)
	}
	out := make([]model.Match, 0, len(phase))
	for _, m := range phase {
		out = append(out, m)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Match) int {
		return cmp.Or(cmp.Compare(a.Number, b.Number), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Phases lists the known phases with their match counts.
func (s *MemoryStore) Phases(_ context.Context) []types.PhaseSummary {
	s.mu.RLock()
	out := make([]types.PhaseSummary, 0, len(s.phases))
	for id, phase := range s.phases {
		out = append(out, types.PhaseSummary{PhaseID: id, Matches: len(phase)})
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b types.PhaseSummary) int {
		return cmp.Compare(a.PhaseID, b.PhaseID)
	})
	return out
}

// Count returns the number of matches held.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
