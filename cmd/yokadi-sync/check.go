package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kotenev/yokadi/internal/dump"
	"github.com/kotenev/yokadi/internal/sync"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check dump and database for divergence",
	Long: `Compare the dump on disk with the database and report every
divergence: items present on one side only, duplicated project or alias
names, and tasks pointing to a non existing project.

The check is read-only; it reports problems but fixes nothing.`,
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		report, err := e.manager.CheckDumpIntegrity(rootCtx)
		if err != nil {
			fatal("checking dump: %v", err)
		}

		renderReport(report)
		if report.Clean() {
			fmt.Printf("%s Dump and database are consistent\n", color.GreenString("✓"))
		}
	},
}

// renderReport prints every discrepancy of an integrity report
func renderReport(report *sync.IntegrityReport) {
	warn := color.New(color.FgYellow)

	for _, c := range dump.AllCollections {
		diff := report.Diffs[c]
		if diff == nil {
			continue
		}
		for _, uuid := range diff.MissingInDB {
			warn.Printf("%s %s exists in the dump but not in the database\n", c, uuid)
		}
		for _, uuid := range diff.MissingInDump {
			warn.Printf("%s %s exists in the database but not in the dump\n", c, uuid)
		}
	}

	for _, c := range []dump.Collection{dump.Projects, dump.Aliases} {
		for name, paths := range report.NameConflicts[c] {
			warn.Printf("%s name %q exists %d times:\n", c, name, len(paths))
			for _, path := range paths {
				fmt.Printf("  %s\n", path)
			}
		}
	}

	if len(report.DanglingTasks) > 0 {
		warn.Println("These tasks point to a non existing project:")
		for _, path := range report.DanglingTasks {
			fmt.Printf("  %s\n", path)
		}
	}
}

var abortMergeCmd = &cobra.Command{
	Use:   "abort-merge",
	Short: "Abandon an interrupted merge and restore the pre-merge state",
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		if !e.manager.IsMergeInProgress() {
			fatal("no merge in progress")
		}

		if err := e.manager.AbortMerge(); err != nil {
			fatal("aborting merge: %v", err)
		}
		fmt.Printf("%s Merge aborted, pre-merge state restored\n", color.GreenString("✓"))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(abortMergeCmd)
}
