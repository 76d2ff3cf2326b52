package scoring_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/tatami/internal/domain/model"
	scoring "github.com/okian/tatami/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func bout(id, round, a, b, winner, victory string, scoreA, scoreB int) model.Match {
	return model.Match{
		ID:    id,
		Round: round,
		Participants: [2]model.Participant{
			{CompetitorID: a, Name: "Name " + a, Team: "Team " + a},
			{CompetitorID: b, Name: "Name " + b, Team: "Team " + b},
		},
		ScoreA:      model.IntPtr(scoreA),
		ScoreB:      model.IntPtr(scoreB),
		WinnerID:    winner,
		VictoryType: victory,
		Status:      model.StatusFinished,
	}
}

func byID(rows []scoring.Row) map[string]scoring.Row {
	out := make(map[string]scoring.Row, len(rows))
	for _, r := range rows {
		out[r.CompetitorID] = r
	}
	return out
}

func TestPointsFor(t *testing.T) {
	Convey("Given the victory codes", t, func() {
		cases := []struct {
			code          string
			winner, loser int
		}{
			{"VFA", 5, 0}, {"VIN", 5, 0}, {"VCA", 5, 0}, {"VFO", 5, 0}, {"DSQ", 5, 0},
			{"VSU", 4, 0},
			{"VSU1", 4, 1},
			{"VPO", 3, 1}, {"VPO1", 3, 1},
			{"", 3, 0}, {"XYZ", 3, 0},
		}

		Convey("Then each side gets the points of its class", func() {
			for _, c := range cases {
				So(scoring.PointsFor(c.code, true), ShouldEqual, c.winner)
				So(scoring.PointsFor(c.code, false), ShouldEqual, c.loser)
			}
		})

		Convey("Then the split matches the one-sided lookups", func() {
			for _, c := range cases {
				w, l := scoring.Split(c.code)
				So(w, ShouldEqual, scoring.PointsFor(c.code, true))
				So(l, ShouldEqual, scoring.PointsFor(c.code, false))
			}
		})

		Convey("Then every class distributes a fixed total", func() {
			totals := map[scoring.Class]int{
				scoring.ClassFall:                  5,
				scoring.ClassSuperiority:           4,
				scoring.ClassSuperiorityWithPoints: 5,
				scoring.ClassDecision:              4,
			}
			for class, total := range totals {
				w, l := class.Split()
				So(w+l, ShouldEqual, total)
			}
		})

		Convey("Then codes are matched case-insensitively", func() {
			So(scoring.ClassOf(" vfa "), ShouldEqual, scoring.ClassFall)
			So(scoring.ClassOf("vsu1"), ShouldEqual, scoring.ClassSuperiorityWithPoints)
			So(scoring.ClassOf("nope"), ShouldEqual, scoring.ClassUnknown)
		})
	})
}

func TestNormalizeRound(t *testing.T) {
	Convey("Given raw round labels", t, func() {
		Convey("Then canonical labels and spelling variants normalize", func() {
			So(scoring.NormalizeRound("Final 1-2"), ShouldEqual, scoring.Final12)
			So(scoring.NormalizeRound("final 1 - 2"), ShouldEqual, scoring.Final12)
			So(scoring.NormalizeRound(" 1/4 Final "), ShouldEqual, scoring.Quarterfinal)
			So(scoring.NormalizeRound("REPECHAGE"), ShouldEqual, scoring.Repechage)
			So(scoring.NormalizeRound("Semifinal"), ShouldEqual, scoring.Semifinal)
			So(scoring.NormalizeRound("Final"), ShouldEqual, scoring.Final)
			So(scoring.NormalizeRound("Bronze"), ShouldEqual, scoring.Final34)
			So(scoring.NormalizeRound(" bronze "), ShouldEqual, scoring.Final34)
		})

		Convey("Then legacy numeric codes use the fixed table", func() {
			So(scoring.NormalizeRound("1"), ShouldEqual, scoring.RoundOf16)
			So(scoring.NormalizeRound("2"), ShouldEqual, scoring.Quarterfinal)
			So(scoring.NormalizeRound("3"), ShouldEqual, scoring.Semifinal)
			So(scoring.NormalizeRound("4"), ShouldEqual, scoring.Final12)
			So(scoring.NormalizeRound("5"), ShouldEqual, scoring.Repechage)
			So(scoring.NormalizeRound("6"), ShouldEqual, scoring.Final35)
		})

		Convey("Then unknown labels pass through and empty ones are unranked", func() {
			So(scoring.NormalizeRound("Pool A"), ShouldEqual, scoring.Round("Pool A"))
			So(scoring.NormalizeRound("7"), ShouldEqual, scoring.Round("7"))
			So(scoring.NormalizeRound("   "), ShouldEqual, scoring.Unranked)
			So(scoring.Round("Pool A").Canonical(), ShouldBeFalse)
		})
	})
}

func TestTally(t *testing.T) {
	Convey("Given a phase with mixed outcomes", t, func() {
		matches := []model.Match{
			bout("m1", "1/4 Final", "a", "b", "a", "VSU1", 12, 2),
			bout("m2", "1/4 Final", "c", "d", "d", "VFA", 0, 4),
			bout("m3", "1/2 Final", "a", "d", "a", "VPO", 5, 3),
			bout("m4", "1/2 Final", "e", "f", "", "", 1, 1),
		}

		aggs, report := scoring.Tally(matches)

		Convey("Then points and victory counts are summed per competitor", func() {
			So(aggs["a"].ClassificationPoints, ShouldEqual, 7)
			So(aggs["a"].SuperiorityVictories, ShouldEqual, 1)
			So(aggs["a"].FallVictories, ShouldEqual, 0)
			So(aggs["a"].Wins, ShouldEqual, 2)
			So(aggs["b"].ClassificationPoints, ShouldEqual, 1)
			So(aggs["d"].ClassificationPoints, ShouldEqual, 6)
			So(aggs["d"].FallVictories, ShouldEqual, 1)
			So(aggs["d"].Losses, ShouldEqual, 1)
		})

		Convey("Then technical points are attributed to each side", func() {
			So(aggs["a"].TechnicalPoints, ShouldEqual, 17)
			So(aggs["a"].TechnicalPointsGiven, ShouldEqual, 5)
			So(aggs["d"].TechnicalPoints, ShouldEqual, 7)
			So(aggs["d"].TechnicalPointsGiven, ShouldEqual, 5)
		})

		Convey("Then undecided bouts add technical points but no classification points", func() {
			So(aggs["e"].ClassificationPoints, ShouldEqual, 0)
			So(aggs["e"].TechnicalPoints, ShouldEqual, 1)
			So(aggs["f"].TechnicalPointsGiven, ShouldEqual, 1)
			So(report.Undecided, ShouldEqual, 1)
			So(report.Considered, ShouldEqual, 4)
			So(report.Clean(), ShouldBeTrue)
		})
	})

	Convey("Given malformed matches", t, func() {
		unpaired := bout("u1", "1/8 Final", "a", "", "", "", 0, 0)
		mismatch := bout("w1", "1/8 Final", "a", "b", "zzz", "VFA", 3, 0)

		aggs, report := scoring.Tally([]model.Match{unpaired, mismatch})

		Convey("Then incomplete pairings are skipped and reported", func() {
			So(report.IncompletePairings, ShouldResemble, []string{"u1"})
			So(report.Skipped(), ShouldEqual, 1)
			So(aggs["a"].Matches, ShouldEqual, 1)
		})

		Convey("Then a winner matching neither slot counts as no winner", func() {
			So(report.WinnerMismatches, ShouldResemble, []string{"w1"})
			So(aggs["a"].ClassificationPoints, ShouldEqual, 0)
			So(aggs["b"].ClassificationPoints, ShouldEqual, 0)
			So(aggs["a"].FallVictories, ShouldEqual, 0)
			So(report.Clean(), ShouldBeFalse)
		})
	})

	Convey("Given a decided bout without a victory type", t, func() {
		aggs, report := scoring.Tally([]model.Match{bout("m1", "1/8 Final", "a", "b", "a", "", 2, 1)})

		Convey("Then the fallback split applies without VT or ST", func() {
			So(aggs["a"].ClassificationPoints, ShouldEqual, 3)
			So(aggs["b"].ClassificationPoints, ShouldEqual, 0)
			So(aggs["a"].FallVictories+aggs["a"].SuperiorityVictories, ShouldEqual, 0)
			So(aggs["b"].FallVictories+aggs["b"].SuperiorityVictories, ShouldEqual, 0)
			So(report.UnknownVictoryTypes, ShouldResemble, []string{"m1"})
		})
	})

	Convey("Given the same matches in different orders", t, func() {
		matches := []model.Match{
			bout("m1", "1/4 Final", "a", "b", "a", "VSU", 10, 0),
			bout("m2", "1/4 Final", "c", "d", "c", "VPO1", 4, 2),
			bout("m3", "1/2 Final", "a", "c", "c", "VFA", 2, 6),
			bout("m4", "Final 1-2", "c", "x", "x", "VIN", 1, 1),
			bout("m5", "Repechage", "b", "d", "", "", 0, 0),
		}
		reversed := slices.Clone(matches)
		slices.Reverse(reversed)
		rotated := append(slices.Clone(matches[2:]), matches[:2]...)

		Convey("Then the totals and rankings are identical", func() {
			base, baseReport := scoring.Rank(matches)
			for _, perm := range [][]model.Match{reversed, rotated} {
				rows, report := scoring.Rank(perm)
				So(cmp.Diff(base, rows), ShouldBeEmpty)
				So(cmp.Diff(baseReport, report), ShouldBeEmpty)
			}
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a final and a third-place bout", t, func() {
		matches := []model.Match{
			bout("A", "Final 1-2", "X", "Y", "X", "VFA", 10, 0),
			bout("B", "Final 3-5", "Z", "W", "Z", "VPO", 6, 4),
		}

		rows, report := scoring.Rank(matches)
		got := byID(rows)

		Convey("Then terminal bouts decide the places", func() {
			So(got["X"].Place, ShouldEqual, 1)
			So(got["Y"].Place, ShouldEqual, 2)
			So(got["Z"].Place, ShouldEqual, 3)
			So(got["W"].Place, ShouldEqual, 5)
		})

		Convey("Then classification points follow the outcome", func() {
			So(got["X"].ClassificationPoints, ShouldEqual, 5)
			So(got["Y"].ClassificationPoints, ShouldEqual, 0)
			So(got["X"].FallVictories, ShouldEqual, 1)
			So(got["Z"].ClassificationPoints, ShouldEqual, 3)
			So(got["W"].ClassificationPoints, ShouldEqual, 1)
		})

		Convey("Then rows come out in place order with team points", func() {
			ids := make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.CompetitorID
			}
			So(ids, ShouldResemble, []string{"X", "Y", "Z", "W"})
			So(got["X"].TeamPoints, ShouldEqual, 25)
			So(got["W"].TeamPoints, ShouldEqual, 10)
			So(report.Considered, ShouldEqual, 2)
		})

		Convey("When an athlete only lost an early round", func() {
			matches = append(matches,
				bout("C", "1/4 Final", "X", "V", "X", "VSU", 8, 0),
				bout("D", "1/4 Final", "Z", "U", "Z", "VFA", 2, 0),
			)
			rows, _ := scoring.Rank(matches)
			got := byID(rows)

			Convey("Then they are placed after every explicit place, fewer points conceded first", func() {
				So(got["X"].Place, ShouldEqual, 1)
				So(got["U"].Place, ShouldEqual, 6)
				So(got["V"].Place, ShouldEqual, 7)
				So(rows[len(rows)-1].CompetitorID, ShouldEqual, "V")
			})
		})
	})

	Convey("Given several third-place playoffs", t, func() {
		first := bout("t1", "Final 3-5", "a", "b", "a", "VPO", 3, 1)
		first.Number = 1
		second := bout("t2", "Final 3-4", "c", "d", "d", "VPO", 1, 3)
		second.Number = 2

		rows, _ := scoring.Rank([]model.Match{second, first})
		got := byID(rows)

		Convey("Then the cursor advances by four per playoff", func() {
			So(got["a"].Place, ShouldEqual, 3)
			So(got["b"].Place, ShouldEqual, 5)
			So(got["d"].Place, ShouldEqual, 7)
			So(got["c"].Place, ShouldEqual, 9)
		})
	})

	Convey("Given a bronze bout labelled by its common name", t, func() {
		rows, _ := scoring.Rank([]model.Match{
			bout("f", "Final 1-2", "a", "b", "a", "VFA", 4, 0),
			bout("br", "Bronze", "c", "d", "c", "VPO", 3, 1),
		})
		got := byID(rows)

		Convey("Then it counts as a third-place playoff", func() {
			So(got["c"].Place, ShouldEqual, 3)
			So(got["d"].Place, ShouldEqual, 5)
		})
	})

	Convey("Given a bracket with a plain Final and no Final 1-2", t, func() {
		rows, _ := scoring.Rank([]model.Match{bout("f", "Final", "a", "b", "b", "VSU", 0, 8)})
		got := byID(rows)

		Convey("Then the Final decides first and second", func() {
			So(got["b"].Place, ShouldEqual, 1)
			So(got["a"].Place, ShouldEqual, 2)
		})
	})

	Convey("Given a competitor placed by the final who also wrestles a third-place bout", t, func() {
		rows, _ := scoring.Rank([]model.Match{
			bout("f", "Final 1-2", "a", "b", "a", "VFA", 4, 0),
			bout("t", "Final 3-5", "a", "c", "a", "VPO", 3, 1),
		})
		got := byID(rows)

		Convey("Then the earlier place is never overwritten", func() {
			So(got["a"].Place, ShouldEqual, 1)
			So(got["c"].Place, ShouldEqual, 5)
		})
	})

	Convey("Given a larger bracket", t, func() {
		matches := []model.Match{
			bout("q1", "1/4 Final", "a", "b", "a", "VFA", 4, 0),
			bout("q2", "1/4 Final", "c", "d", "c", "VSU", 10, 0),
			bout("q3", "1/4 Final", "e", "f", "f", "VPO1", 2, 5),
			bout("q4", "1/4 Final", "g", "h", "g", "", 3, 2),
			bout("s1", "1/2 Final", "a", "c", "a", "VPO", 5, 4),
			bout("s2", "1/2 Final", "f", "g", "g", "VSU1", 3, 12),
			bout("r1", "Repechage", "b", "d", "d", "VPO", 2, 4),
			bout("b1", "Final 3-5", "c", "d", "c", "VFA", 6, 0),
			bout("b2", "Final 3-5", "f", "h", "h", "VPO", 0, 2),
			bout("f1", "Final 1-2", "a", "g", "g", "VPO", 1, 3),
		}

		rows, _ := scoring.Rank(matches)

		Convey("Then no two competitors share a place", func() {
			seen := map[int]bool{}
			for _, r := range rows {
				So(r.Place, ShouldBeGreaterThan, 0)
				So(seen[r.Place], ShouldBeFalse)
				seen[r.Place] = true
			}
			So(len(rows), ShouldEqual, 8)
		})

		Convey("Then places ascend down the table", func() {
			for i := 1; i < len(rows); i++ {
				So(rows[i].Place, ShouldBeGreaterThan, rows[i-1].Place)
			}
		})
	})

	Convey("Given no matches", t, func() {
		rows, report := scoring.Rank(nil)

		Convey("Then the ranking is empty", func() {
			So(rows, ShouldBeEmpty)
			So(report.Clean(), ShouldBeTrue)
		})
	})
}

func TestCompareRanking(t *testing.T) {
	Convey("Given two competitors with identical metrics and names", t, func() {
		a := &scoring.Aggregate{CompetitorID: "1", Name: "Same"}
		b := &scoring.Aggregate{CompetitorID: "2", Name: "Same"}

		Convey("Then they never compare equal", func() {
			So(scoring.CompareRanking(a, b), ShouldBeLessThan, 0)
			So(scoring.CompareRanking(b, a), ShouldBeGreaterThan, 0)
			So(scoring.CompareStandings(a, b), ShouldNotEqual, 0)
		})
	})

	Convey("Given an assigned and an unassigned place", t, func() {
		placed := &scoring.Aggregate{CompetitorID: "p", Place: 9}
		strong := &scoring.Aggregate{CompetitorID: "s", ClassificationPoints: 50}

		Convey("Then the placed competitor ranks first", func() {
			So(scoring.CompareRanking(placed, strong), ShouldBeLessThan, 0)
		})
	})

	Convey("Given competitors tied on CP", t, func() {
		base := scoring.Aggregate{ClassificationPoints: 8}

		Convey("Then VT, ST, TP and conceded TP break the tie in turn", func() {
			vt, other := base, base
			vt.FallVictories = 1
			So(scoring.CompareRanking(&vt, &other), ShouldBeLessThan, 0)

			st, other := base, base
			st.SuperiorityVictories = 1
			So(scoring.CompareRanking(&st, &other), ShouldBeLessThan, 0)

			tp, other := base, base
			tp.TechnicalPoints = 3
			So(scoring.CompareRanking(&tp, &other), ShouldBeLessThan, 0)

			given, other := base, base
			other.TechnicalPointsGiven = 4
			So(scoring.CompareRanking(&given, &other), ShouldBeLessThan, 0)
		})
	})
}

func competitorIDs(rows []scoring.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.CompetitorID
	}
	return out
}

func TestStandings(t *testing.T) {
	Convey("Given an in-progress phase whose final is already decided", t, func() {
		matches := []model.Match{
			bout("m1", "Pool A", "a", "b", "a", "VPO", 3, 1),
			bout("m2", "Pool A", "c", "d", "c", "VFA", 4, 0),
			bout("m3", "Pool A", "b", "d", "b", "VPO", 5, 2),
			bout("m4", "Final 1-2", "d", "b", "d", "VFA", 2, 0),
		}

		rows, _ := scoring.Standings(matches)
		ranked, _ := scoring.Rank(matches)

		Convey("Then the table ignores placements and orders by CP", func() {
			for i, r := range rows {
				So(r.Place, ShouldEqual, i+1)
				So(r.TeamPoints, ShouldEqual, 0)
			}
			So(competitorIDs(rows), ShouldResemble, []string{"d", "c", "b", "a"})
		})

		Convey("Then the final ranking keeps the runner-up in second place", func() {
			So(competitorIDs(ranked), ShouldResemble, []string{"d", "b", "c", "a"})
		})
	})

	Convey("Given two competitors tied on CP, one with more wins and one with a fall", t, func() {
		matches := []model.Match{
			bout("m1", "Pool A", "p", "x", "p", "VPO", 3, 1),
			bout("m2", "Pool A", "p", "y", "p", "VPO", 3, 1),
			bout("m3", "Pool A", "q", "z", "q", "VFA", 4, 0),
			bout("m4", "Pool A", "w", "q", "w", "VPO", 3, 1),
		}

		rows, _ := scoring.Standings(matches)
		ranked, _ := scoring.Rank(matches)
		got := byID(rows)

		Convey("Then both sit on the same CP", func() {
			So(got["p"].ClassificationPoints, ShouldEqual, 6)
			So(got["q"].ClassificationPoints, ShouldEqual, 6)
			So(got["p"].Wins, ShouldEqual, 2)
			So(got["q"].FallVictories, ShouldEqual, 1)
		})

		Convey("Then standings break the tie on wins and skip VT", func() {
			So(competitorIDs(rows), ShouldResemble, []string{"p", "q", "w", "x", "y", "z"})
		})

		Convey("Then the final ranking breaks the tie on VT", func() {
			So(competitorIDs(ranked), ShouldResemble, []string{"q", "p", "w", "x", "y", "z"})
		})
	})
}

func TestTeamPoints(t *testing.T) {
	Convey("Given final places", t, func() {
		Convey("Then the fixed table applies", func() {
			pts, ok := scoring.TeamPoints(1)
			So(ok, ShouldBeTrue)
			So(pts, ShouldEqual, 25)

			_, ok = scoring.TeamPoints(4)
			So(ok, ShouldBeFalse)

			pts, ok = scoring.TeamPoints(7)
			So(ok, ShouldBeTrue)
			So(pts, ShouldEqual, 8)

			pts, _ = scoring.TeamPoints(8)
			So(pts, ShouldEqual, 2)
		})
	})

	Convey("Given a final ranking with teams", t, func() {
		rows := []scoring.Row{
			{Place: 1, CompetitorID: "a", Team: "North"},
			{Place: 2, CompetitorID: "b", Team: "South"},
			{Place: 3, CompetitorID: "c", Team: "South"},
			{Place: 5, CompetitorID: "d", Team: "North"},
			{Place: 6, CompetitorID: "e", Team: "East"},
			{Place: 7, CompetitorID: "f"},
		}

		teams := scoring.TeamClassification(rows)

		Convey("Then points are summed per team and ordered", func() {
			So(len(teams), ShouldEqual, 3)
			So(teams[0].Team, ShouldEqual, "North")
			So(teams[0].Points, ShouldEqual, 35)
			So(teams[0].Firsts, ShouldEqual, 1)
			So(teams[1].Team, ShouldEqual, "South")
			So(teams[1].Points, ShouldEqual, 35)
			So(teams[1].Seconds, ShouldEqual, 1)
			So(teams[2].Team, ShouldEqual, "East")
			So(teams[2].Points, ShouldEqual, 0)
			So(teams[2].Position, ShouldEqual, 3)
		})
	})
}

func TestGroupByRound(t *testing.T) {
	Convey("Given bouts across rounds", t, func() {
		matches := []model.Match{
			bout("f", "4", "a", "b", "", "", 0, 0),
			bout("x", "", "a", "b", "", "", 0, 0),
			bout("p", "Pool B", "a", "b", "", "", 0, 0),
			bout("q2", "1/4 Final", "a", "b", "", "", 0, 0),
			bout("q1", "2", "a", "b", "", "", 0, 0),
			bout("o", "Pool A", "a", "", "", "", 0, 0),
		}

		groups := scoring.GroupByRound(matches)

		Convey("Then groups follow bracket order, then labels, then unranked", func() {
			rounds := make([]scoring.Round, len(groups))
			for i, g := range groups {
				rounds[i] = g.Round
			}
			So(rounds, ShouldResemble, []scoring.Round{
				scoring.Quarterfinal, scoring.Final12, "Pool A", "Pool B", scoring.Unranked,
			})
			So(groups[0].Matches[0].ID, ShouldEqual, "q1")
			So(groups[0].Matches[1].ID, ShouldEqual, "q2")
		})
	})
}
