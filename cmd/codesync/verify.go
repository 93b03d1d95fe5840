package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethereal77/codesync/internal/planxml"
	"github.com/ethereal77/codesync/internal/report"
	"github.com/ethereal77/codesync/internal/util"
	"github.com/ethereal77/codesync/internal/verify"
)

var (
	verifyOutput              string
	verifyCheckRepeats        bool
	verifyCheckExisting       bool
	verifyCheckExistingCopy   bool
	verifyCheckExistingIgnore bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify <plan>",
	Short: "Lint a plan: drop duplicates and malformed entries, resolve conflicts in favor of Ignore",
	Long: `verify loads a plan without touching the filesystem it describes
(beyond the optional existence checks), removes duplicate Copy and
Ignore entries, resolves any Copy whose source or destination also
appears as an Ignore in favor of the Ignore, drops partial entries, and
writes a reorganized plan sorted for easy diffing.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyOutput, "output", "", "path to write the verified plan (default: overwrite the input plan)")
	verifyCmd.Flags().BoolVar(&verifyCheckRepeats, "check-repeats", true, "detect and drop duplicate entries")
	verifyCmd.Flags().BoolVar(&verifyCheckExisting, "check-existing", false, "drop entries whose copy and ignore files no longer exist (sets both --check-existing-copy and --check-existing-ignore)")
	verifyCmd.Flags().BoolVar(&verifyCheckExistingCopy, "check-existing-copy", false, "drop Copy entries whose source or destination no longer exists")
	verifyCmd.Flags().BoolVar(&verifyCheckExistingIgnore, "check-existing-ignore", false, "drop Ignore entries whose file no longer exists")
}

func runVerify(cmd *cobra.Command, args []string) error {
	planPath := args[0]
	output := verifyOutput
	if output == "" {
		output = planPath
	}
	runID := report.NewRunID()

	plan, err := planxml.Load(planPath)
	if err != nil {
		return err
	}

	checkCopy := verifyCheckExistingCopy || verifyCheckExisting
	checkIgnore := verifyCheckExistingIgnore || verifyCheckExisting

	res := verify.Run(verify.Options{
		CheckRepeats:        verifyCheckRepeats,
		CheckExistingCopy:   checkCopy,
		CheckExistingIgnore: checkIgnore,
	}, plan.SourceDirectory, plan.DestDirectory, plan)

	report.NewVerifySummary(runID, res).Print()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", util.ErrIOError, output, err)
	}
	defer f.Close()

	now := time.Now()
	w := planxml.NewWriter(f)
	if err := planxml.EmitVerified(w, plan.SourceDirectory, plan.DestDirectory, &now, res.Copies, res.IgnoreSource, res.IgnoreDest); err != nil {
		return fmt.Errorf("%w: writing plan: %v", util.ErrIOError, err)
	}

	util.SuccessLog("plan written to %s", output)
	return nil
}
