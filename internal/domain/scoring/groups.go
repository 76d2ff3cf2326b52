package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/tatami/internal/domain/model"
)

// RoundGroup is the set of bouts sharing a normalized round.
type RoundGroup struct {
	Round   Round         `json:"round"`
	Matches []model.Match `json:"matches"`
}

// GroupByRound groups bouts for bracket display, decided or not. Canonical
// rounds come in bracket order, then unrecognized labels alphabetically, then
// Unranked.
func GroupByRound(matches []model.Match) []RoundGroup {
	byRound := make(map[Round][]model.Match)
	for _, m := range matches {
		r := NormalizeRound(m.Round)
		byRound[r] = append(byRound[r], m)
	}

	groups := make([]RoundGroup, 0, len(byRound))
	for r, ms := range byRound {
		slices.SortFunc(ms, func(a, b model.Match) int {
			if c := cmp.Compare(a.Number, b.Number); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		groups = append(groups, RoundGroup{Round: r, Matches: ms})
	}
	slices.SortFunc(groups, func(a, b RoundGroup) int {
		return compareRounds(a.Round, b.Round)
	})
	return groups
}

// roundRank buckets a round: canonical, other label, unranked.
func roundRank(r Round) int {
	switch {
	case r.Canonical():
		return 0
	case r == Unranked:
		return 2
	default:
		return 1
	}
}

func compareRounds(a, b Round) int {
	if c := cmp.Compare(roundRank(a), roundRank(b)); c != 0 {
		return c
	}
	if a.Canonical() {
		return cmp.Compare(a.index(), b.index())
	}
	return cmp.Compare(a, b)
}
