package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the database with the remote dump",
	Long: `Synchronize with the remote dump in a single operation:
1. Export pending database changes to the dump
2. Commit them
3. Pull remote changes (merge and import)
4. Push local commits

A push rejected because another replica pushed first is retried after
pulling its changes, with exponential backoff.`,
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		if e.manager.IsMergeInProgress() {
			fatal("a previous merge was interrupted, run 'yokadi-sync abort-merge' first")
		}

		if err := e.manager.Dump(rootCtx); err != nil {
			fatal("exporting database: %v", err)
		}

		if !e.manager.Sync(rootCtx, consoleReporter{}) {
			fatal("sync failed")
		}
		fmt.Printf("%s Sync complete\n", color.GreenString("✓"))
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch, merge and import remote changes without pushing",
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		if e.manager.IsMergeInProgress() {
			fatal("a previous merge was interrupted, run 'yokadi-sync abort-merge' first")
		}

		if !e.manager.Pull(rootCtx, consoleReporter{}) {
			fatal("pull failed")
		}
		fmt.Printf("%s Pull complete\n", color.GreenString("✓"))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the synchronization state of the dump",
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		if e.manager.IsMergeInProgress() {
			color.Yellow("A merge is in progress (interrupted?); 'yokadi-sync abort-merge' restores the pre-merge state")
		}

		toCommit, err := e.manager.HasChangesToCommit()
		if err != nil {
			fatal("%v", err)
		}
		toPush, err := e.manager.HasChangesToPush()
		if err != nil {
			fatal("%v", err)
		}

		fmt.Printf("Uncommitted dump changes: %s\n", yesNo(toCommit))
		fmt.Printf("Commits waiting for push:  %s\n", yesNo(toPush))
	},
}

func yesNo(b bool) string {
	if b {
		return color.YellowString("yes")
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(statusCmd)
}
