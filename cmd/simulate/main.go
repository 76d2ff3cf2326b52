// Command simulate drives a running tatami server with generated brackets
// and verifies the rankings it serves.
//
// Usage:
//
//	simulate --url http://localhost:9080 --wrestlers 16 --phases 4
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/tatami/internal/config"
	"github.com/okian/tatami/internal/simulate"
	"github.com/okian/tatami/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg       simulate.Config
		runFor    time.Duration
		verbose   bool
		logFormat string
	)
	cmd := &cobra.Command{
		Use:          "simulate",
		Short:        "Submit generated brackets to a tatami server and verify its rankings",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runFor)
			defer cancel()

			stats, err := simulate.Run(ctx, cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"phases=%d matches=%d accepted=%d duplicates=%d rate_limited=%d verified=%d duration=%s\n",
				stats.Phases, stats.Matches, stats.Accepted, stats.Duplicates, stats.RateLimited, stats.Verified,
				stats.Duration.Round(time.Millisecond))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Wrestlers, "wrestlers", simulate.DefaultWrestlers, "Wrestlers per phase (rounded down to a power of two, 4 to 32)")
	f.IntVar(&cfg.Phases, "phases", simulate.DefaultPhases, "Number of phases to generate")
	f.IntVar(&cfg.Workers, "workers", simulate.DefaultWorkers, "Concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", simulate.DefaultTimeout, "HTTP request timeout")
	f.DurationVar(&cfg.Settle, "settle", simulate.DefaultSettle, "How long to wait for results to be applied")
	f.Int64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	f.BoolVar(&cfg.Duplicates, "duplicates", false, "Resubmit every result once to exercise deduplication")
	f.IntVar(&cfg.Retries, "retries", simulate.DefaultRetries, "Attempts per result while rate limited")
	f.DurationVar(&runFor, "deadline", defaultRunTimeout, "Overall run deadline")
	f.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	f.StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text or json")
	return cmd
}
