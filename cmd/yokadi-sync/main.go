// Command yokadi-sync synchronizes a local task database with a shared,
// version-controlled dump so several machines can exchange changes
// asynchronously.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kotenev/yokadi/internal/config"
	"github.com/kotenev/yokadi/internal/db"
	"github.com/kotenev/yokadi/internal/lockfile"
	"github.com/kotenev/yokadi/internal/sync"
	"github.com/kotenev/yokadi/internal/vcs/git"
)

var rootCmd = &cobra.Command{
	Use:   "yokadi-sync",
	Short: "Synchronize the task database across machines",
	Long: `yokadi-sync mirrors the task database into a git-tracked dump
directory and uses git history to exchange changes with other replicas.

Every machine is a peer: changes are committed locally, pulled, merged,
imported into the database, and pushed. A push raced by another replica
is retried after pulling its changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		return config.Viper().BindPFlags(cmd.Flags())
	},
}

// rootCtx is canceled on SIGINT/SIGTERM
var rootCtx context.Context

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCtx = ctx

	if err := rootCmd.Execute(); err != nil {
		fatal("%v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().String(config.KeyDumpDir, "", "dump repository directory")
	rootCmd.PersistentFlags().String(config.KeyDatabase, "", "task database file")
	rootCmd.PersistentFlags().String(config.KeyRemoteRef, "", "remote reference to sync with (e.g. origin/master)")
}

// fatal prints an error and exits with status 1
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// engine bundles everything a command needs to run the sync protocol
type engine struct {
	manager  *sync.Manager
	database *db.DB
	lock     *lockfile.Lock
}

// close releases the lock and the database session
func (e *engine) close() {
	if e.lock != nil {
		_ = e.lock.Release()
	}
	if e.database != nil {
		_ = e.database.Close()
	}
}

// newVCS builds the git backend from configuration
func newVCS(dumpDir string) *git.Git {
	remote, branch := splitRemoteRef(config.GetString(config.KeyRemoteRef))
	return git.New(dumpDir, git.WithRemote(remote), git.WithBranch(branch))
}

// splitRemoteRef splits "origin/master" into remote and branch
func splitRemoteRef(ref string) (string, string) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return git.DefaultRemote, git.DefaultBranch
	}
	return parts[0], parts[1]
}

// openEngine locks the dump, opens the database session, and builds the
// synchronization engine. The caller must call close().
func openEngine() (*engine, error) {
	dumpDir := config.GetString(config.KeyDumpDir)
	if _, err := os.Stat(dumpDir); err != nil {
		return nil, fmt.Errorf("dump directory %s not found, run 'yokadi-sync init' first", dumpDir)
	}

	lock, err := lockfile.Acquire(dumpDir)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(config.GetString(config.KeyDatabase))
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	if err := database.InitSchema(); err != nil {
		_ = lock.Release()
		_ = database.Close()
		return nil, err
	}

	manager := sync.NewManager(newVCS(dumpDir),
		sync.WithDatabase(database),
		sync.WithRemoteRef(config.GetString(config.KeyRemoteRef)),
		sync.WithMaxPushRetries(config.GetInt(config.KeyMaxPushRetries)),
	)

	return &engine{manager: manager, database: database, lock: lock}, nil
}

// consoleReporter renders engine progress for terminal users
type consoleReporter struct{}

// ReportProgress implements sync.Reporter
func (consoleReporter) ReportProgress(message string) {
	fmt.Printf("→ %s\n", message)
}

// ReportError implements sync.Reporter
func (consoleReporter) ReportError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), message)
}
