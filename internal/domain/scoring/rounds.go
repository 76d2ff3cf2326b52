package scoring

import "strings"

// Round is a normalized bracket stage label.
type Round string

// Canonical rounds in bracket order, plus the sentinel for unlabeled bouts.
const (
	RoundOf32    Round = "1/16 Final"
	RoundOf16    Round = "1/8 Final"
	Quarterfinal Round = "1/4 Final"
	Semifinal    Round = "1/2 Final"
	Repechage    Round = "Repechage"
	Final35      Round = "Final 3-5"
	Final34      Round = "Final 3-4"
	Final12      Round = "Final 1-2"
	Final        Round = "Final"
	Unranked     Round = "Unranked"
)

var canonicalRounds = []Round{
	RoundOf32, RoundOf16, Quarterfinal, Semifinal, Repechage, Final35, Final34, Final12, Final,
}

// legacyRoundCodes covers numeric round codes still present in older events.
var legacyRoundCodes = map[string]Round{
	"1": RoundOf16,
	"2": Quarterfinal,
	"3": Semifinal,
	"4": Final12,
	"5": Repechage,
	"6": Final35,
}

// roundAliases is keyed by the compact spelling (lowercase, no spaces).
var roundAliases = func() map[string]Round {
	m := map[string]Round{
		"semifinal":     Semifinal,
		"semifinals":    Semifinal,
		"quarterfinal":  Quarterfinal,
		"quarterfinals": Quarterfinal,
		"bronze":        Final34,
	}
	for _, r := range canonicalRounds {
		m[compactRound(string(r))] = r
	}
	return m
}()

func compactRound(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// NormalizeRound maps a raw round label or legacy code onto the canonical
// vocabulary. Unrecognized labels pass through trimmed; empty ones become
// Unranked.
func NormalizeRound(raw string) Round {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unranked
	}
	if r, ok := legacyRoundCodes[s]; ok {
		return r
	}
	if r, ok := roundAliases[compactRound(s)]; ok {
		return r
	}
	return Round(s)
}

// Canonical reports whether r is part of the known bracket vocabulary.
func (r Round) Canonical() bool {
	return r.index() >= 0
}

// index is the position of r in bracket order, or -1.
func (r Round) index() int {
	for i, c := range canonicalRounds {
		if c == r {
			return i
		}
	}
	return -1
}

// thirdPlace reports whether r decides a pair of places below the final.
func (r Round) thirdPlace() bool {
	return r == Final35 || r == Final34
}
