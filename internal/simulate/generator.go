package simulate

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/internal/domain/scoring"
)

// Bracket size bounds.
const (
	minBracket = 4
	maxBracket = 32
)

var weightClasses = []int{57, 61, 65, 70, 74, 79, 86, 92, 97, 125}

var victoryCodes = []string{"VFA", "VIN", "VCA", "VFO", "DSQ", "VSU", "VSU1", "VPO", "VPO1"}

// Wrestler is a generated competitor.
type Wrestler struct {
	ID   string
	Name string
	Team string
}

// Phase is one generated single-elimination weight class.
type Phase struct {
	ID        string
	Wrestlers []Wrestler
	Matches   []model.Match
}

// Final returns the gold medal bout.
func (p Phase) Final() (model.Match, bool) {
	for _, m := range p.Matches {
		if scoring.NormalizeRound(m.Round) == scoring.Final12 {
			return m, true
		}
	}
	return model.Match{}, false
}

// Generator builds deterministic brackets from a seed.
type Generator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(uint64(seed)), seed: seed}
}

// Seed returns the seed the generator was built with.
func (g *Generator) Seed() int64 { return g.seed }

// BracketSize is the largest power of two not above wrestlers, clamped to
// the supported range.
func BracketSize(wrestlers int) int {
	size := minBracket
	for size*2 <= wrestlers && size < maxBracket {
		size *= 2
	}
	return size
}

// Phases generates count phases of the given bracket size.
func (g *Generator) Phases(count, wrestlers int) []Phase {
	out := make([]Phase, 0, count)
	for i := range count {
		id := fmt.Sprintf("freestyle-%d", weightClasses[i%len(weightClasses)])
		if i >= len(weightClasses) {
			id = fmt.Sprintf("%s-%d", id, i/len(weightClasses))
		}
		out = append(out, g.Phase(id, wrestlers))
	}
	return out
}

// Phase generates a complete single-elimination bracket: every round down
// to the final plus one bronze bout between the semifinal losers.
func (g *Generator) Phase(id string, wrestlers int) Phase {
	size := BracketSize(wrestlers)
	teams := g.teams(max(2, size/4))

	field := make([]Wrestler, size)
	for i := range field {
		field[i] = Wrestler{
			ID:   g.faker.UUID(),
			Name: g.faker.Name(),
			Team: g.faker.RandomString(teams),
		}
	}

	phase := Phase{ID: id, Wrestlers: field, Matches: make([]model.Match, 0, size)}
	number := 0
	next := func(round scoring.Round, a, b Wrestler) (Wrestler, Wrestler) {
		number++
		m, w, l := g.bout(id, number, round, a, b)
		phase.Matches = append(phase.Matches, m)
		return w, l
	}

	alive := field
	var semiLosers []Wrestler
	for len(alive) > 2 {
		round := roundFor(len(alive) / 2)
		winners := make([]Wrestler, 0, len(alive)/2)
		for i := 0; i < len(alive); i += 2 {
			w, l := next(round, alive[i], alive[i+1])
			winners = append(winners, w)
			if round == scoring.Semifinal {
				semiLosers = append(semiLosers, l)
			}
		}
		alive = winners
	}
	next(scoring.Final35, semiLosers[0], semiLosers[1])
	next(scoring.Final12, alive[0], alive[1])
	return phase
}

func (g *Generator) teams(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := g.faker.City()
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, len(out)+1)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// roundFor names the round that has the given number of bouts.
func roundFor(bouts int) scoring.Round {
	switch bouts {
	case 16:
		return scoring.RoundOf32
	case 8:
		return scoring.RoundOf16
	case 4:
		return scoring.Quarterfinal
	default:
		return scoring.Semifinal
	}
}

func (g *Generator) bout(phaseID string, number int, round scoring.Round, a, b Wrestler) (model.Match, Wrestler, Wrestler) {
	code := g.faker.RandomString(victoryCodes)
	win, lose := g.scores(code)

	winner, loser := a, b
	scoreA, scoreB := win, lose
	if g.faker.IntRange(0, 1) == 1 {
		winner, loser = b, a
		scoreA, scoreB = lose, win
	}

	m := model.Match{
		ID:      fmt.Sprintf("%s-m%03d", phaseID, number),
		PhaseID: phaseID,
		Number:  number,
		Round:   string(round),
		Participants: [2]model.Participant{
			{CompetitorID: a.ID, Name: a.Name, Team: a.Team},
			{CompetitorID: b.ID, Name: b.Name, Team: b.Team},
		},
		ScoreA:      model.IntPtr(scoreA),
		ScoreB:      model.IntPtr(scoreB),
		WinnerID:    winner.ID,
		VictoryType: code,
		Status:      model.StatusFinished,
	}
	return m, winner, loser
}

// scores picks technical points that fit the victory code.
func (g *Generator) scores(code string) (winner, loser int) {
	switch code {
	case "VSU":
		return g.faker.IntRange(10, 12), 0
	case "VSU1":
		return g.faker.IntRange(10, 14), g.faker.IntRange(1, 4)
	case "VPO":
		return g.faker.IntRange(1, 9), 0
	case "VPO1":
		l := g.faker.IntRange(1, 6)
		return l + g.faker.IntRange(1, 5), l
	case "VFO", "DSQ":
		return 0, 0
	default:
		return g.faker.IntRange(0, 8), g.faker.IntRange(0, 4)
	}
}
