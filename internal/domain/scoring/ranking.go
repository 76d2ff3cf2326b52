package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/tatami/internal/domain/model"
)

// Row is one line of a ranking table.
type Row struct {
	Place                int    `json:"place"`
	CompetitorID         string `json:"competitor_id"`
	Name                 string `json:"name"`
	Team                 string `json:"team,omitempty"`
	ClassificationPoints int    `json:"cp"`
	FallVictories        int    `json:"vt"`
	SuperiorityVictories int    `json:"st"`
	TechnicalPoints      int    `json:"tp"`
	TechnicalPointsGiven int    `json:"tp_given"`
	Wins                 int    `json:"wins"`
	Losses               int    `json:"losses"`
	TeamPoints           int    `json:"team_points,omitempty"`
}

// compareMetrics orders by CP, VT, ST and TP descending, then TPGvn
// ascending, then name and id.
func compareMetrics(a, b *Aggregate) int {
	if c := cmp.Compare(b.ClassificationPoints, a.ClassificationPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.FallVictories, a.FallVictories); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SuperiorityVictories, a.SuperiorityVictories); c != 0 {
		return c
	}
	if c := cmp.Compare(b.TechnicalPoints, a.TechnicalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TechnicalPointsGiven, b.TechnicalPointsGiven); c != 0 {
		return c
	}
	return compareIdentity(a, b)
}

// compareIdentity is the last resort: name, then competitor id. Ids are
// unique, so no two distinct competitors ever compare equal.
func compareIdentity(a, b *Aggregate) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.CompetitorID, b.CompetitorID)
}

// CompareRanking is the final ranking order: explicit place first
// (unassigned last), then the metric order.
func CompareRanking(a, b *Aggregate) int {
	switch {
	case a.Place != 0 && b.Place == 0:
		return -1
	case a.Place == 0 && b.Place != 0:
		return 1
	}
	if c := cmp.Compare(a.Place, b.Place); c != 0 {
		return c
	}
	return compareMetrics(a, b)
}

// CompareStandings is the in-progress order: CP, wins, TP descending, TPGvn
// ascending, then name and id.
func CompareStandings(a, b *Aggregate) int {
	if c := cmp.Compare(b.ClassificationPoints, a.ClassificationPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
		return c
	}
	if c := cmp.Compare(b.TechnicalPoints, a.TechnicalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TechnicalPointsGiven, b.TechnicalPointsGiven); c != 0 {
		return c
	}
	return compareIdentity(a, b)
}

// Rank computes the final ranking of a phase, placements included.
func Rank(matches []model.Match) ([]Row, Report) {
	aggs, report := Tally(matches)
	AssignPlaces(matches, aggs)
	list := sortedAggregates(aggs, CompareRanking)

	rows := make([]Row, len(list))
	for i, a := range list {
		rows[i] = toRow(a, a.Place)
		if pts, ok := TeamPoints(a.Place); ok {
			rows[i].TeamPoints = pts
		}
	}
	return rows, report
}

// Standings computes the in-progress table. Places are table positions.
func Standings(matches []model.Match) ([]Row, Report) {
	aggs, report := Tally(matches)
	list := sortedAggregates(aggs, CompareStandings)

	rows := make([]Row, len(list))
	for i, a := range list {
		rows[i] = toRow(a, i+1)
	}
	return rows, report
}

func sortedAggregates(aggs map[string]*Aggregate, order func(a, b *Aggregate) int) []*Aggregate {
	list := make([]*Aggregate, 0, len(aggs))
	for _, a := range aggs {
		list = append(list, a)
	}
	slices.SortFunc(list, order)
	return list
}

func toRow(a *Aggregate, place int) Row {
	return Row{
		Place:                place,
		CompetitorID:         a.CompetitorID,
		Name:                 a.Name,
		Team:                 a.Team,
		ClassificationPoints: a.ClassificationPoints,
		FallVictories:        a.FallVictories,
		SuperiorityVictories: a.SuperiorityVictories,
		TechnicalPoints:      a.TechnicalPoints,
		TechnicalPointsGiven: a.TechnicalPointsGiven,
		Wins:                 a.Wins,
		Losses:               a.Losses,
	}
}
