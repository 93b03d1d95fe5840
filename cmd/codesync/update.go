package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/report"
	"github.com/ethereal77/codesync/internal/update"
	"github.com/ethereal77/codesync/internal/util"
)

var (
	updateOutput       string
	updateHash         bool
	updateDiscardOlder bool
	updateLog          string
)

var updateCmd = &cobra.Command{
	Use:   "update <plan>",
	Short: "Re-validate a prior plan against the current filesystem and resolve the residual",
	Long: `update loads a prior plan, validates each of its Copy entries against
the current state of both trees, carries forward whatever is still
valid, re-enumerates both roots, and drives the matcher over whatever
is left. Prior Ignore entries are always carried forward.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateOutput, "output", "", "path to write the updated plan (default: overwrite the input plan)")
	updateCmd.Flags().BoolVar(&updateHash, "hash", false, "escalate to content-hash comparison on the residual trees")
	updateCmd.Flags().BoolVar(&updateDiscardOlder, "discard-older", false, "re-evaluate matches whose source is no newer than the prior plan's ModifiedTime")
	updateCmd.Flags().StringVar(&updateLog, "log", "", "write a JSONL event log of every matcher decision to FILE")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	planPath := args[0]
	output := updateOutput
	if output == "" {
		output = planPath
	}
	runID := report.NewRunID()

	prior, err := planxml.Load(planPath)
	if err != nil {
		return err
	}

	if err := checkDirectory("source", prior.SourceDirectory); err != nil {
		return err
	}
	if err := checkDirectory("destination", prior.DestDirectory); err != nil {
		return err
	}

	logger, err := report.NewEventLogger(updateLog, runID)
	if err != nil {
		util.WarnLog("failed to open event log: %v", err)
	}
	defer logger.Close()

	res, err := update.Run(update.Config{
		SourceRoot:   prior.SourceDirectory,
		DestRoot:     prior.DestDirectory,
		EnableHash:   updateHash,
		DiscardOlder: updateDiscardOlder,
	}, prior)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	logger.LogMatchResult(res.Matched)
	report.NewMatchSummary(runID, prior.SourceDirectory, res.Matched).Print()
	util.InfoLog("carried forward %d matches, %d partials, %d+%d ignores",
		len(res.Prior.Matches), len(res.Prior.Partials), len(res.Prior.IgnoreSource), len(res.Prior.IgnoreDest))

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", util.ErrIOError, output, err)
	}
	defer f.Close()

	now := time.Now()
	w := planxml.NewWriter(f)
	if err := planxml.EmitUpdateResult(w, prior.SourceDirectory, prior.DestDirectory, &now, &res.Prior, res.Matched); err != nil {
		return fmt.Errorf("%w: writing plan: %v", util.ErrIOError, err)
	}

	util.SuccessLog("plan written to %s", output)
	return nil
}
