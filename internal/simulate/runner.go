// Package simulate generates synthetic wrestling brackets, submits them to a
// running server and checks the served rankings against a local computation.
package simulate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/tatami/internal/domain/model"
	"github.com/okian/tatami/internal/domain/scoring"
	"github.com/okian/tatami/internal/domain/types"
	"github.com/okian/tatami/pkg/logger"
)

const (
	settlePollInterval = 100 * time.Millisecond
	retryBackoff       = 100 * time.Millisecond
)

// resultRequest is the POST /results body.
type resultRequest struct {
	SubmissionID string      `json:"submission_id"`
	PhaseID      string      `json:"phase_id"`
	Match        model.Match `json:"match"`
}

type phasesResponse struct {
	Phases []types.PhaseSummary `json:"phases"`
}

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg.applyDefaults()
	log := logger.Get().Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("wrestlers", cfg.Wrestlers),
		logger.Int("phases", cfg.Phases),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
		logger.Bool("duplicates", cfg.Duplicates))

	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	phases := NewGenerator(cfg.Seed).Phases(cfg.Phases, cfg.Wrestlers)
	stats.Phases = len(phases)
	for _, p := range phases {
		stats.Matches += len(p.Matches)
	}

	if err := submitAll(ctx, client, cfg, phases, stats); err != nil {
		return stats, err
	}
	if err := awaitApplied(ctx, client, cfg.Settle, phases); err != nil {
		return stats, err
	}

	for _, p := range phases {
		var got types.Ranking
		if err := client.getJSON(ctx, "/phases/"+url.PathEscape(p.ID)+"/ranking", &got); err != nil {
			return stats, fmt.Errorf("%w: %w", ErrVerification, err)
		}
		want, _ := scoring.Rank(p.Matches)
		if err := verifyRanking(p, want, got); err != nil {
			return stats, err
		}
		stats.Verified++
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "simulation finished",
		logger.Int("phases", stats.Phases),
		logger.Int("matches", stats.Matches),
		logger.Any("accepted", stats.Accepted),
		logger.Any("duplicates", stats.Duplicates),
		logger.Any("rateLimited", stats.RateLimited),
		logger.Int("verified", stats.Verified),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// submitAll posts every generated match with at most cfg.Workers in flight.
func submitAll(ctx context.Context, client *httpClient, cfg Config, phases []Phase, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, p := range phases {
		for _, m := range p.Matches {
			req := resultRequest{SubmissionID: uuid.NewString(), PhaseID: p.ID, Match: m}
			g.Go(func() error {
				if err := submit(gctx, client, req, cfg.Retries, stats); err != nil {
					return err
				}
				if cfg.Duplicates {
					return submit(gctx, client, req, cfg.Retries, stats)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// submit delivers one result, retrying while the server answers 429.
func submit(ctx context.Context, client *httpClient, req resultRequest, retries int, stats *Stats) error {
	for attempt := 1; ; attempt++ {
		atomic.AddInt64(&stats.Submitted, 1)
		status, err := client.postJSON(ctx, "/results", req)
		if err != nil {
			atomic.AddInt64(&stats.Failed, 1)
			return fmt.Errorf("%w: %s: %w", ErrSubmit, req.Match.ID, err)
		}

		switch status {
		case http.StatusAccepted:
			atomic.AddInt64(&stats.Accepted, 1)
			return nil
		case http.StatusOK:
			atomic.AddInt64(&stats.Duplicates, 1)
			return nil
		case http.StatusTooManyRequests:
			atomic.AddInt64(&stats.RateLimited, 1)
			if attempt >= retries {
				atomic.AddInt64(&stats.Failed, 1)
				return fmt.Errorf("%w: %s: still rate limited after %d attempts", ErrSubmit, req.Match.ID, attempt)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		default:
			atomic.AddInt64(&stats.Failed, 1)
			return fmt.Errorf("%w: %s: status %d", ErrSubmit, req.Match.ID, status)
		}
	}
}

// awaitApplied polls /phases until every generated match is stored.
func awaitApplied(ctx context.Context, client *httpClient, settle time.Duration, phases []Phase) error {
	want := make(map[string]int, len(phases))
	for _, p := range phases {
		want[p.ID] = len(p.Matches)
	}

	deadline := time.Now().Add(settle)
	ticker := time.NewTicker(settlePollInterval)
	defer ticker.Stop()
	for {
		var resp phasesResponse
		if err := client.getJSON(ctx, "/phases", &resp); err != nil {
			return err
		}
		if applied(want, resp.Phases) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s", ErrNotSettled, settle)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func applied(want map[string]int, have []types.PhaseSummary) bool {
	done := 0
	for _, s := range have {
		if n, ok := want[s.PhaseID]; ok && s.Matches >= n {
			done++
		}
	}
	return done == len(want)
}
