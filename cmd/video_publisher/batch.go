package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/video-publisher/internal/jobfile"
	"github.com/jonathan/video-publisher/internal/observability"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Upload a batch of videos sequentially",
	Long: `Runs every job in a job file one at a time. A failed job never stops the
batch; each outcome is collected into the final summary.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runBatch,
}

var (
	batchFlags    commonFlags
	batchJobsPath string
)

func init() {
	batchFlags.register(batchCmd)
	batchCmd.Flags().StringVar(&batchJobsPath, "jobs", "", "Path to the batch job file (JSON or YAML)")
	_ = batchCmd.MarkFlagRequired("jobs")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := batchFlags.resolve(cmd)
	if err != nil {
		return err
	}

	jobs, err := jobfile.Load(batchJobsPath)
	if err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}

	st, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	printer := observability.NewPrinter(os.Stdout)
	summary := st.orchestrator.Run(ctx, jobs)

	if cfg.Verbose {
		for _, r := range summary.Results {
			printer.PrintRunResult(r)
		}
	}
	printer.PrintBatchSummary(summary)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total)
	}
	return nil
}
