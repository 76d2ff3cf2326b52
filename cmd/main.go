// Command tatami runs the wrestling results server and its offline tools.
//
// Usage:
//
//	tatami serve
//	tatami rank --file fixtures.yaml --phase seniors-74 --view standings
//	tatami rank --file fixtures.yaml --phase seniors-74 --xlsx seniors-74.xlsx
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/tatami/internal/config"
	"github.com/okian/tatami/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tatami",
		Short:        "Wrestling results and ranking server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Diagnostics go to stderr so command output stays clean.
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(rankCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the result ingest pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func rankCmd() *cobra.Command {
	var opts rankOptions
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Compute a phase table from a fixture file without a server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "YAML fixture file")
	cmd.Flags().StringVar(&opts.phase, "phase", "", "Phase id")
	cmd.Flags().StringVar(&opts.view, "view", viewRanking, "Table to print: ranking, standings or teams")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "Write the table as an XLSX workbook to this path instead of printing JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("phase")
	return cmd
}
