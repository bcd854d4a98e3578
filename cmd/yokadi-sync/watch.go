package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kotenev/yokadi/internal/config"
	"github.com/kotenev/yokadi/internal/sync"
	"github.com/kotenev/yokadi/internal/sync/daemon"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the dump directory and sync automatically",
	Long: `Run in the foreground, watching the dump for file changes. After
changes settle, a full dump and sync cycle runs automatically. Stop
with Ctrl-C.`,
	Run: func(_ *cobra.Command, _ []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		logger := log.New(os.Stderr, "[watch] ", log.LstdFlags)
		reporter := sync.NewLogReporter(logger)
		cycle := func(ctx context.Context) bool {
			if err := e.manager.Dump(ctx); err != nil {
				reporter.ReportError(fmt.Sprintf("dump failed: %v", err))
				return false
			}
			return e.manager.Sync(ctx, reporter)
		}

		d, err := daemon.New(config.GetString(config.KeyDumpDir), cycle, &daemon.Config{
			DebounceInterval: config.GetDuration(config.KeyWatchDebounce),
		}, logger)
		if err != nil {
			fatal("starting watcher: %v", err)
		}
		if err := d.Start(rootCtx); err != nil {
			fatal("starting watcher: %v", err)
		}
		defer d.Stop()

		fmt.Println("Watching for changes, press Ctrl-C to stop")
		<-rootCtx.Done()
		fmt.Println("\nStopping")
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
