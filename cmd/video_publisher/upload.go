package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/video-publisher/internal/jobfile"
	"github.com/jonathan/video-publisher/internal/observability"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload and publish one video",
	Long: `Uploads a single video described by a job file and reports the outcome.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runUpload,
}

var (
	uploadFlags   commonFlags
	uploadJobPath string
)

func init() {
	uploadFlags.register(uploadCmd)
	uploadCmd.Flags().StringVarP(&uploadJobPath, "job", "j", "", "Path to the job file (JSON or YAML)")
	_ = uploadCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := uploadFlags.resolve(cmd)
	if err != nil {
		return err
	}

	jobs, err := jobfile.Load(uploadJobPath)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if len(jobs) != 1 {
		return fmt.Errorf("%s holds %d jobs; use the batch command for multi-job files", uploadJobPath, len(jobs))
	}

	st, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintJob(jobs[0])
	}

	summary := st.orchestrator.Run(ctx, jobs)
	result := summary.Results[0]
	printer.PrintRunResult(result)

	if !result.Confirmed() {
		if result.Unconfirmed() {
			return fmt.Errorf("publish issued but not confirmed; verify manually on the platform")
		}
		return fmt.Errorf("upload failed: %v", result.Err)
	}
	return nil
}
