// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/tatami/internal/domain/scoring"
)

// Views of a phase table.
const (
	ViewRanking   = "ranking"
	ViewStandings = "standings"
)

// Row is a ranking table line.
type Row = scoring.Row

// Report is the data-quality summary of one computation.
type Report = scoring.Report

// Ranking is a computed table for one phase.
type Ranking struct {
	PhaseID     string    `json:"phase_id"`
	View        string    `json:"view"`
	Rows        []Row     `json:"rows"`
	Report      Report    `json:"report"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Teams is the team classification of one phase.
type Teams struct {
	PhaseID string            `json:"phase_id"`
	Teams   []scoring.TeamRow `json:"teams"`
}

// TeamsOf classifies teams from the rows of r.
func (r Ranking) TeamsOf() Teams {
	return Teams{PhaseID: r.PhaseID, Teams: scoring.TeamClassification(r.Rows)}
}

// Rounds is the bracket of one phase grouped by round.
type Rounds struct {
	PhaseID string               `json:"phase_id"`
	Rounds  []scoring.RoundGroup `json:"rounds"`
}

// PhaseSummary describes a phase known to the match store.
type PhaseSummary struct {
	PhaseID string `json:"phase_id"`
	Matches int    `json:"matches"`
}

// Placed returns the number of rows holding a medal place (1 to 3).
func (r Ranking) Placed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Place >= 1 && row.Place <= 3 {
			n++
		}
	}
	return n
}
