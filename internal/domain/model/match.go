// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the officiating state of a match.
type Status string

// Known match statuses. An empty status is treated as scheduled.
const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Participant is one slot of a bout. An empty CompetitorID means the slot is
// not filled yet (bye or pending bracket progression).
type Participant struct {
	CompetitorID string `json:"competitor_id,omitempty" yaml:"competitor_id,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Team         string `json:"team,omitempty" yaml:"team,omitempty"`
}

// Match is a single bout of a phase as entered by the officials.
type Match struct {
	ID           string         `json:"id" yaml:"id"`
	PhaseID      string         `json:"phase_id,omitempty" yaml:"phase_id,omitempty"`
	Number       int            `json:"number,omitempty" yaml:"number,omitempty"`
	Round        string         `json:"round,omitempty" yaml:"round,omitempty"`
	Participants [2]Participant `json:"participants" yaml:"participants"`
	ScoreA       *int           `json:"score_a,omitempty" yaml:"score_a,omitempty"`
	ScoreB       *int           `json:"score_b,omitempty" yaml:"score_b,omitempty"`
	WinnerID     string         `json:"winner_id,omitempty" yaml:"winner_id,omitempty"`
	VictoryType  string         `json:"victory_type,omitempty" yaml:"victory_type,omitempty"`
	Status       Status         `json:"status,omitempty" yaml:"status,omitempty"`
}

// Paired reports whether both slots are bound to distinct competitors.
func (m Match) Paired() bool {
	a, b := m.Participants[0].CompetitorID, m.Participants[1].CompetitorID
	return a != "" && b != "" && a != b
}

// Finished reports whether the officials closed the bout.
func (m Match) Finished() bool {
	return m.Status == StatusFinished
}

// Score returns the technical points of slot i, treating a missing score as 0.
func (m Match) Score(i int) int {
	var p *int
	if i == 0 {
		p = m.ScoreA
	} else {
		p = m.ScoreB
	}
	if p == nil {
		return 0
	}
	return *p
}

// Validate checks the fields that must hold before a match enters the system.
// An unfilled slot is legal; a mismatching winner is left to the engine,
// which reports it instead of rejecting the bout.
func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMatch)
	}
	switch m.Status {
	case "", StatusScheduled, StatusInProgress, StatusFinished:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMatch, m.Status)
	}
	if m.ScoreA != nil && *m.ScoreA < 0 {
		return fmt.Errorf("%w: negative score_a", ErrInvalidMatch)
	}
	if m.ScoreB != nil && *m.ScoreB < 0 {
		return fmt.Errorf("%w: negative score_b", ErrInvalidMatch)
	}
	a, b := m.Participants[0].CompetitorID, m.Participants[1].CompetitorID
	if a != "" && a == b {
		return fmt.Errorf("%w: competitor %s occupies both slots", ErrInvalidMatch, a)
	}
	return nil
}

// ResultSubmission is a result entry travelling through the ingest pipeline.
type ResultSubmission struct {
	SubmissionID string    // unique id for idempotency
	PhaseID      string    // phase the match belongs to
	Match        Match     // full match state as entered
	ReceivedAt   time.Time // acceptance time at the API
}

// IntPtr is a helper for building scores in fixtures and tests.
func IntPtr(v int) *int { return &v }
