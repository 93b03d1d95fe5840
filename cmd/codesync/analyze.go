package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethereal77/codesync/internal/destindex"
	"github.com/ethereal77/codesync/internal/enumerate"
	"github.com/ethereal77/codesync/internal/match"
	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/report"
	"github.com/ethereal77/codesync/internal/util"
)

var (
	analyzeOutput string
	analyzeHash   bool
	analyzeLog    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <src> <dst>",
	Short: "Reconcile two trees from scratch and write a new sync plan",
	Long: `analyze enumerates both the source and destination trees, builds a
destination index from the destination files, runs the matcher over the
source files, and writes a fresh plan document: current matches, one-left entries, ambiguous sources,
source orphans, and destination orphans (as comments).`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "codesync.xml", "path to write the plan document")
	analyzeCmd.Flags().BoolVar(&analyzeHash, "hash", false, "escalate to content-hash comparison when names disagree or sizes match")
	analyzeCmd.Flags().StringVar(&analyzeLog, "log", "", "write a JSONL event log of every matcher decision to FILE")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sourceRoot, destRoot := args[0], args[1]
	runID := report.NewRunID()

	if err := checkDirectory("source", sourceRoot); err != nil {
		return err
	}
	if err := checkDirectory("destination", destRoot); err != nil {
		return err
	}

	logger, err := report.NewEventLogger(analyzeLog, runID)
	if err != nil {
		util.WarnLog("failed to open event log: %v", err)
	}
	defer logger.Close()

	util.InfoLog("enumerating source: %s", sourceRoot)
	sources, err := enumerate.CollectWithProgress(sourceRoot, enumerate.Config{}, "Enumerating source")
	if err != nil {
		return fmt.Errorf("%w: enumerating source: %v", util.ErrIOError, err)
	}

	util.InfoLog("enumerating destination: %s", destRoot)
	dests, err := enumerate.CollectWithProgress(destRoot, enumerate.Config{}, "Enumerating destination")
	if err != nil {
		return fmt.Errorf("%w: enumerating destination: %v", util.ErrIOError, err)
	}
	util.InfoLog("found %d source files, %d destination files", len(sources), len(dests))

	dest := destindex.New(dests)
	m := match.New(match.Config{
		SourceRoot:   sourceRoot,
		DestRoot:     destRoot,
		EnableHash:   analyzeHash,
		ShowProgress: true,
	}, dest)

	res, err := m.Run(sources)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	logger.LogMatchResult(res)
	report.NewMatchSummary(runID, sourceRoot, res).Print()

	if err := writePlan(analyzeOutput, sourceRoot, destRoot, res); err != nil {
		return err
	}
	util.SuccessLog("plan written to %s", analyzeOutput)
	return nil
}

func checkDirectory(label, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s directory %s", util.ErrInputNotFound, label, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %s", label, path)
	}
	return nil
}

func writePlan(outputPath, sourceRoot, destRoot string, res *match.Result) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", util.ErrIOError, outputPath, err)
	}
	defer f.Close()

	now := time.Now()
	w := planxml.NewWriter(f)
	if err := planxml.EmitMatchResult(w, sourceRoot, destRoot, &now, res); err != nil {
		return fmt.Errorf("%w: writing plan: %v", util.ErrIOError, err)
	}
	return nil
}
