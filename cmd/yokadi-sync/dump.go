package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kotenev/yokadi/internal/config"
	"github.com/kotenev/yokadi/internal/db"
	"github.com/kotenev/yokadi/internal/sync"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new dump repository",
	Long: `Create the dump repository: directory, git tracking, version
marker, the three collection directories, and the initial commit.
Also creates the task database schema if needed.

This is a one-time bootstrap; the dump directory must not exist yet.`,
	Run: func(_ *cobra.Command, _ []string) {
		dumpDir := config.GetString(config.KeyDumpDir)
		if _, err := os.Stat(dumpDir); err == nil {
			fatal("dump directory %s already exists", dumpDir)
		}

		database, err := db.Open(config.GetString(config.KeyDatabase))
		if err != nil {
			fatal("%v", err)
		}
		defer database.Close()
		if err := database.InitSchema(); err != nil {
			fatal("%v", err)
		}

		manager := sync.NewManager(newVCS(dumpDir), sync.WithDatabase(database))
		if err := manager.InitDumpRepository(); err != nil {
			fatal("initializing dump: %v", err)
		}
		fmt.Printf("%s Created dump repository in %s\n", color.GreenString("✓"), dumpDir)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Export the database into the dump",
	Long: `Export every database row into the dump directory, removing
files whose row no longer exists. Use 'sync' to commit and share the
result.

With --clear, instead remove every item file from the dump.`,
	Run: func(cmd *cobra.Command, _ []string) {
		clear, _ := cmd.Flags().GetBool("clear")

		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		if clear {
			if err := e.manager.ClearDump(); err != nil {
				fatal("clearing dump: %v", err)
			}
			fmt.Printf("%s Dump cleared\n", color.GreenString("✓"))
			return
		}

		if err := e.manager.Dump(rootCtx); err != nil {
			fatal("exporting database: %v", err)
		}
		fmt.Printf("%s Database exported\n", color.GreenString("✓"))
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the database content with the dump content",
	Long: `Import every dump file into the database, replacing its
current content. Useful to set up a fresh replica from a cloned dump.`,
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		if e.manager.IsMergeInProgress() {
			fatal("a previous merge was interrupted, run 'yokadi-sync abort-merge' first")
		}

		if err := e.manager.ImportAll(rootCtx); err != nil {
			fatal("importing dump: %v", err)
		}
		fmt.Printf("%s Dump imported\n", color.GreenString("✓"))
	},
}

func init() {
	dumpCmd.Flags().Bool("clear", false, "remove every item file from the dump")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(importCmd)
}
