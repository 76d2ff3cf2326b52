// Package repository holds the per-phase match store and fixture loading.
package repository

import (
	"context"

	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/internal/domain/types"
)

// MatchStore provides read/write access to the matches of every phase.
type MatchStore interface {
	// Upsert stores m under its phase, replacing any match with the same id.
	// Returns true when an existing match was replaced.
	Upsert(ctx context.Context, m model.Match) (bool, error)

	// Matches returns a copy of the phase's matches ordered by number then id.
	// Returns ErrNotFound if the phase is unknown.
	Matches(ctx context.Context, phaseID string) ([]model.Match, error)

	// Phases lists the known phases ordered by id.
	Phases(ctx context.Context) []types.PhaseSummary

	// Count returns the number of matches across all phases.
	Count(ctx context.Context) int
}
