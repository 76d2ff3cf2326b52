package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/tatami/internal/domain/model"
)

// firstThirdPlace is where the third-place playoffs start counting, and
// thirdPlaceStride is how far each further playoff moves the cursor.
const (
	firstThirdPlace  = 3
	thirdPlaceStride = 4
)

// decided is a bout with a resolved winner, reduced to what placement needs.
type decided struct {
	round  Round
	winner string
	loser  string
}

// decidedInOrder returns the decided, paired bouts sorted by match number and
// id so placement does not depend on input order.
func decidedInOrder(matches []model.Match) []decided {
	sorted := slices.Clone(matches)
	slices.SortFunc(sorted, func(a, b model.Match) int {
		if c := cmp.Compare(a.Number, b.Number); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]decided, 0, len(sorted))
	for _, m := range sorted {
		if !m.Paired() {
			continue
		}
		w, _ := winnerIndex(m)
		if w == noWinner {
			continue
		}
		out = append(out, decided{
			round:  NormalizeRound(m.Round),
			winner: m.Participants[w].CompetitorID,
			loser:  m.Participants[1-w].CompetitorID,
		})
	}
	return out
}

// AssignPlaces sets Place on every aggregate. Terminal bouts place their
// wrestlers first; everybody else follows in metric order.
func AssignPlaces(matches []model.Match, aggs map[string]*Aggregate) {
	bouts := decidedInOrder(matches)

	place := func(id string, p int) {
		if a, ok := aggs[id]; ok && a.Place == 0 {
			a.Place = p
		}
	}

	final, ok := findRound(bouts, Final12)
	if !ok {
		final, ok = findRound(bouts, Final)
	}
	if ok {
		place(final.winner, 1)
		place(final.loser, 2)
	}

	cursor := firstThirdPlace
	for _, b := range bouts {
		if !b.round.thirdPlace() {
			continue
		}
		place(b.winner, cursor)
		place(b.loser, cursor+2)
		cursor += thirdPlaceStride
	}

	maxPlace := 0
	unplaced := make([]*Aggregate, 0, len(aggs))
	for _, a := range aggs {
		if a.Place == 0 {
			unplaced = append(unplaced, a)
			continue
		}
		maxPlace = max(maxPlace, a.Place)
	}
	slices.SortFunc(unplaced, compareMetrics)
	for i, a := range unplaced {
		a.Place = maxPlace + 1 + i
	}
}

func findRound(bouts []decided, r Round) (decided, bool) {
	for _, b := range bouts {
		if b.round == r {
			return b, true
		}
	}
	return decided{}, false
}
