package scoring

import (
	"sort"

	"github.com/okian/tatami/internal/domain/model"
)

// Aggregate holds one competitor's totals over a phase.
type Aggregate struct {
	CompetitorID string
	Name         string
	Team         string

	ClassificationPoints int // CP
	FallVictories        int // VT
	SuperiorityVictories int // ST
	TechnicalPoints      int // TP
	TechnicalPointsGiven int // TPGvn

	Wins    int
	Losses  int
	Matches int

	// Place is the final placement, 0 while unassigned.
	Place int

	// labelFrom is the id of the match that supplied Name/Team.
	labelFrom string
}

// Report counts the data-quality conditions met while tallying. Match ids are
// sorted so the report does not depend on input order.
type Report struct {
	Considered          int      `json:"considered"`
	Undecided           int      `json:"undecided"`
	IncompletePairings  []string `json:"incomplete_pairings,omitempty"`
	WinnerMismatches    []string `json:"winner_mismatches,omitempty"`
	UnknownVictoryTypes []string `json:"unknown_victory_types,omitempty"`
}

// Clean reports whether no data-quality condition was met.
func (r Report) Clean() bool {
	return len(r.IncompletePairings) == 0 && len(r.WinnerMismatches) == 0 && len(r.UnknownVictoryTypes) == 0
}

// Skipped is the number of matches left out of the totals entirely.
func (r Report) Skipped() int {
	return len(r.IncompletePairings)
}

// noWinner marks a bout without a determined winner.
const noWinner = -1

// winnerIndex resolves the winning slot. mismatch is true when a winner id
// was declared but matches neither slot.
func winnerIndex(m model.Match) (idx int, mismatch bool) {
	if m.WinnerID == "" {
		return noWinner, false
	}
	for i, p := range m.Participants {
		if p.CompetitorID == m.WinnerID {
			return i, false
		}
	}
	return noWinner, true
}

// Tally folds the match list into one aggregate per competitor that appears in
// at least one fully paired match. The result is independent of input order.
func Tally(matches []model.Match) (map[string]*Aggregate, Report) {
	aggs := make(map[string]*Aggregate)
	var report Report

	get := func(m model.Match, p model.Participant) *Aggregate {
		a, ok := aggs[p.CompetitorID]
		if !ok {
			a = &Aggregate{CompetitorID: p.CompetitorID}
			aggs[p.CompetitorID] = a
		}
		if (p.Name != "" || p.Team != "") && (a.labelFrom == "" || m.ID < a.labelFrom) {
			a.Name, a.Team, a.labelFrom = p.Name, p.Team, m.ID
		}
		return a
	}

	for _, m := range matches {
		if !m.Paired() {
			report.IncompletePairings = append(report.IncompletePairings, m.ID)
			continue
		}
		report.Considered++

		sides := [2]*Aggregate{get(m, m.Participants[0]), get(m, m.Participants[1])}
		for i, a := range sides {
			a.Matches++
			a.TechnicalPoints += m.Score(i)
			a.TechnicalPointsGiven += m.Score(1 - i)
		}

		w, mismatch := winnerIndex(m)
		if mismatch {
			report.WinnerMismatches = append(report.WinnerMismatches, m.ID)
		}
		if w == noWinner {
			report.Undecided++
			continue
		}

		class := ClassOf(m.VictoryType)
		if class == ClassUnknown {
			report.UnknownVictoryTypes = append(report.UnknownVictoryTypes, m.ID)
		}
		winPts, losePts := class.Split()
		winner, loser := sides[w], sides[1-w]
		winner.ClassificationPoints += winPts
		loser.ClassificationPoints += losePts
		winner.Wins++
		loser.Losses++
		switch {
		case class.IsFall():
			winner.FallVictories++
		case class.IsSuperiority():
			winner.SuperiorityVictories++
		}
	}

	sort.Strings(report.IncompletePairings)
	sort.Strings(report.WinnerMismatches)
	sort.Strings(report.UnknownVictoryTypes)
	return aggs, report
}
