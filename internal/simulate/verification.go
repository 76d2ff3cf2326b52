package simulate

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/tatami/internal/domain/scoring"
	"github.com/okian/tatami/internal/domain/types"
)

// verifyRanking checks a served ranking against the locally computed rows
// and the bracket's own outcome.
func verifyRanking(p Phase, want []scoring.Row, got types.Ranking) error {
	if !got.Report.Clean() {
		return fmt.Errorf("%w: %s: report not clean: %+v", ErrVerification, p.ID, got.Report)
	}
	if len(got.Rows) != len(p.Wrestlers) {
		return fmt.Errorf("%w: %s: %d rows for %d wrestlers", ErrVerification, p.ID, len(got.Rows), len(p.Wrestlers))
	}

	seen := make(map[int]string, len(got.Rows))
	for _, r := range got.Rows {
		if r.Place <= 0 {
			return fmt.Errorf("%w: %s: %s has no place", ErrVerification, p.ID, r.CompetitorID)
		}
		if other, dup := seen[r.Place]; dup {
			return fmt.Errorf("%w: %s: place %d held by %s and %s", ErrVerification, p.ID, r.Place, other, r.CompetitorID)
		}
		seen[r.Place] = r.CompetitorID
	}

	if final, ok := p.Final(); ok {
		loser := final.Participants[0].CompetitorID
		if loser == final.WinnerID {
			loser = final.Participants[1].CompetitorID
		}
		if seen[1] != final.WinnerID || seen[2] != loser {
			return fmt.Errorf("%w: %s: final outcome not reflected in places 1 and 2", ErrVerification, p.ID)
		}
	}

	if diff := cmp.Diff(want, got.Rows); diff != "" {
		return fmt.Errorf("%w: %s: rows differ (-want +got):\n%s", ErrVerification, p.ID, diff)
	}
	return nil
}
