// Package export renders computed tables as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/tatami/internal/domain/types"
)

// Sheet names written by WriteRanking.
const (
	SheetRanking = "Ranking"
	SheetTeams   = "Teams"
	SheetReport  = "Report"
)

var rankingHeader = []any{
	"Place", "Competitor", "Name", "Team",
	"CP", "VT", "ST", "TP", "TP Given", "Wins", "Losses", "Team Points",
}

var teamsHeader = []any{"Position", "Team", "Points", "1st", "2nd", "3rd"}

// WriteRanking writes the ranking and optional team classification of a
// phase as a workbook to w.
func WriteRanking(w io.Writer, r types.Ranking, teams *types.Teams) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetRanking); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	rows := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []any{
			row.Place, row.CompetitorID, row.Name, row.Team,
			row.ClassificationPoints, row.FallVictories, row.SuperiorityVictories,
			row.TechnicalPoints, row.TechnicalPointsGiven, row.Wins, row.Losses, row.TeamPoints,
		})
	}
	if err := writeTable(f, SheetRanking, bold, rankingHeader, rows); err != nil {
		return err
	}

	if teams != nil {
		if _, err := f.NewSheet(SheetTeams); err != nil {
			return fmt.Errorf("add sheet %s: %w", SheetTeams, err)
		}
		rows := make([][]any, 0, len(teams.Teams))
		for _, t := range teams.Teams {
			rows = append(rows, []any{t.Position, t.Team, t.Points, t.Firsts, t.Seconds, t.Thirds})
		}
		if err := writeTable(f, SheetTeams, bold, teamsHeader, rows); err != nil {
			return err
		}
	}

	if !r.Report.Clean() {
		if err := writeReport(f, bold, r.Report); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header of %s: %w", sheet, err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 12)
}

func writeReport(f *excelize.File, headerStyle int, r types.Report) error {
	if _, err := f.NewSheet(SheetReport); err != nil {
		return fmt.Errorf("add sheet %s: %w", SheetReport, err)
	}
	rows := make([][]any, 0)
	add := func(condition string, ids []string) {
		for _, id := range ids {
			rows = append(rows, []any{condition, id})
		}
	}
	add("incomplete pairing", r.IncompletePairings)
	add("winner mismatch", r.WinnerMismatches)
	add("unknown victory type", r.UnknownVictoryTypes)
	return writeTable(f, SheetReport, headerStyle, []any{"Condition", "Match"}, rows)
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
