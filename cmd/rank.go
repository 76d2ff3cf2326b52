package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/tatami/internal/adapters/repository"
	service "github.com/okian/tatami/internal/app"
	"github.com/okian/tatami/internal/domain/types"
	"github.com/okian/tatami/internal/export"
)

const (
	viewRanking   = types.ViewRanking
	viewStandings = types.ViewStandings
	viewTeams     = "teams"
)

var errUnknownView = errors.New("unknown view")

type rankOptions struct {
	file  string
	phase string
	view  string
	xlsx  string
}

// runRank loads a fixture file into a throwaway service and prints one table.
func runRank(ctx context.Context, out io.Writer, opts rankOptions) error {
	switch opts.view {
	case viewRanking, viewStandings, viewTeams:
	default:
		return fmt.Errorf("%w %q: want ranking, standings or teams", errUnknownView, opts.view)
	}

	fx, err := repository.LoadFixtures(opts.file)
	if err != nil {
		return err
	}
	svc := service.New(service.WithFixtures(fx), service.WithWorkerCount(1))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(ctx) }()

	var table types.Ranking
	if opts.view == viewStandings {
		table, err = svc.Standings(ctx, opts.phase)
	} else {
		table, err = svc.Ranking(ctx, opts.phase)
	}
	if err != nil {
		return err
	}

	// Standings places are table positions, not final places.
	teams := table.TeamsOf()
	if opts.view == viewStandings {
		if teams, err = svc.Teams(ctx, opts.phase); err != nil {
			return err
		}
	}

	if opts.xlsx != "" {
		return writeWorkbook(opts.xlsx, table, &teams)
	}

	var doc any = table
	if opts.view == viewTeams {
		doc = teams
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeWorkbook(path string, table types.Ranking, teams *types.Teams) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteRanking(f, table, teams)
}
