package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethereal77/codesync/internal/execute"
	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/report"
	"github.com/ethereal77/codesync/internal/util"
)

var (
	syncDryRun    bool
	syncFreshness bool
	syncLog       string
)

var syncCmd = &cobra.Command{
	Use:   "sync <plan>",
	Short: "Apply a plan's Copy entries to the filesystem",
	Long: `sync applies every Copy entry in a plan, overwriting the
destination from the source, sequentially and in document order. Use
--dry-run to see what would happen without touching any file, and
--freshness to skip entries whose source is no newer than the plan's
recorded ModifiedTime or the existing destination's own mtime.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report what would be copied without touching the filesystem")
	syncCmd.Flags().BoolVar(&syncFreshness, "freshness", false, "skip entries whose source is no newer than the plan's or destination's recorded time")
	syncCmd.Flags().StringVar(&syncLog, "log", "", "write a JSONL event log of every copy decision to FILE")
}

func runSync(cmd *cobra.Command, args []string) error {
	planPath := args[0]
	runID := report.NewRunID()

	plan, err := planxml.Load(planPath)
	if err != nil {
		return err
	}

	if err := checkDirectory("source", plan.SourceDirectory); err != nil {
		return err
	}
	if err := checkDirectory("destination", plan.DestDirectory); err != nil {
		return err
	}

	logger, err := report.NewEventLogger(syncLog, runID)
	if err != nil {
		util.WarnLog("failed to open event log: %v", err)
	}
	defer logger.Close()

	res := execute.Run(execute.Options{
		DryRun:    syncDryRun,
		Freshness: syncFreshness,
		OnCopy:    logger.LogCopy,
	}, plan)

	report.NewCopySummary(runID, res).Print()

	if res.Errors > 0 {
		return fmt.Errorf("sync completed with %d error(s)", res.Errors)
	}
	return nil
}
