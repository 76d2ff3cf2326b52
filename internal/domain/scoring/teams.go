package scoring

import (
	"cmp"
	"slices"
)

var teamPointsByPlace = map[int]int{
	1: 25,
	2: 20,
	3: 15,
	5: 10,
	7: 8,
	8: 2,
}

// TeamPoints maps a final individual place to its team-classification
// points. Places outside the table score nothing.
func TeamPoints(place int) (int, bool) {
	pts, ok := teamPointsByPlace[place]
	return pts, ok
}

// TeamRow is one line of the team classification.
type TeamRow struct {
	Position int    `json:"position"`
	Team     string `json:"team"`
	Points   int    `json:"points"`
	Firsts   int    `json:"firsts"`
	Seconds  int    `json:"seconds"`
	Thirds   int    `json:"thirds"`
}

// TeamClassification sums team points of a final ranking per team label.
// Rows without a team are ignored.
func TeamClassification(rows []Row) []TeamRow {
	byTeam := make(map[string]*TeamRow)
	for _, r := range rows {
		if r.Team == "" {
			continue
		}
		t, ok := byTeam[r.Team]
		if !ok {
			t = &TeamRow{Team: r.Team}
			byTeam[r.Team] = t
		}
		pts, _ := TeamPoints(r.Place)
		t.Points += pts
		switch r.Place {
		case 1:
			t.Firsts++
		case 2:
			t.Seconds++
		case 3:
			t.Thirds++
		}
	}

	out := make([]TeamRow, 0, len(byTeam))
	for _, t := range byTeam {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b TeamRow) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Firsts, a.Firsts); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Seconds, a.Seconds); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Thirds, a.Thirds); c != 0 {
			return c
		}
		return cmp.Compare(a.Team, b.Team)
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}
