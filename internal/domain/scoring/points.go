// Package scoring implements wrestling classification points, per-competitor
// aggregation, bracket placement and the ranking order for a phase.
//
// Every function here is pure: it reads an immutable match list and allocates
// its own working state, so callers may invoke it concurrently.
package scoring

import "strings"

// Class groups victory codes that share a classification point split.
type Class int

// Outcome classes.
const (
	ClassUnknown Class = iota
	ClassFall
	ClassSuperiority
	ClassSuperiorityWithPoints
	ClassDecision
)

// Victory codes as entered by the officials.
const (
	VictoryFall           = "VFA"
	VictoryInjury         = "VIN"
	VictoryCautions       = "VCA"
	VictoryForfeit        = "VFO"
	VictoryDisqualified   = "DSQ"
	VictorySuperiority    = "VSU"
	VictorySuperiority1   = "VSU1"
	VictoryPoints         = "VPO"
	VictoryPointsConceded = "VPO1"
)

var victoryClasses = map[string]Class{
	VictoryFall:           ClassFall,
	VictoryInjury:         ClassFall,
	VictoryCautions:       ClassFall,
	VictoryForfeit:        ClassFall,
	VictoryDisqualified:   ClassFall,
	VictorySuperiority:    ClassSuperiority,
	VictorySuperiority1:   ClassSuperiorityWithPoints,
	VictoryPoints:         ClassDecision,
	VictoryPointsConceded: ClassDecision,
}

// ClassOf maps a victory code to its outcome class. Codes are matched
// case-insensitively; anything unrecognized, including "", is ClassUnknown.
func ClassOf(code string) Class {
	return victoryClasses[strings.ToUpper(strings.TrimSpace(code))]
}

// Split returns the classification points of the winner and the loser.
func (c Class) Split() (winner, loser int) {
	switch c {
	case ClassFall:
		return 5, 0
	case ClassSuperiority:
		return 4, 0
	case ClassSuperiorityWithPoints:
		return 4, 1
	case ClassDecision:
		return 3, 1
	default:
		return 3, 0
	}
}

// IsFall reports whether a win of this class counts as a VT victory.
func (c Class) IsFall() bool { return c == ClassFall }

// IsSuperiority reports whether a win of this class counts as an ST victory.
func (c Class) IsSuperiority() bool {
	return c == ClassSuperiority || c == ClassSuperiorityWithPoints
}

func (c Class) String() string {
	switch c {
	case ClassFall:
		return "fall"
	case ClassSuperiority:
		return "superiority"
	case ClassSuperiorityWithPoints:
		return "superiority_with_points"
	case ClassDecision:
		return "decision"
	default:
		return "unknown"
	}
}

// Split computes both sides of a decided bout from one victory code.
func Split(code string) (winner, loser int) {
	return ClassOf(code).Split()
}

// PointsFor returns the classification points for one side of a decided bout.
func PointsFor(code string, isWinner bool) int {
	w, l := Split(code)
	if isWinner {
		return w
	}
	return l
}
