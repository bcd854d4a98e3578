// Package git provides a Git implementation of the VCS interface.
//
// This package wraps the git binary to provide the operations the
// synchronization engine needs on the dump repository: tag management
// for the merge checkpoint, commit/fetch/merge/push, work-tree state
// queries, and file-level diffs between references.
//
// The implementation follows these design principles:
//   - Shell out to git rather than reimplementing plumbing
//   - Detect well-known failure modes (non-fast-forward, conflicts)
//     and map them to vcs sentinel errors
//   - Keep every command rooted in the dump directory
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kotenev/yokadi/internal/vcs"
)

// DefaultRemote is the remote name used when none is configured.
const DefaultRemote = "origin"

// DefaultBranch is the branch the dump repository lives on.
const DefaultBranch = "master"

// Git implements the vcs.VCS interface for git repositories.
type Git struct {
	// workDir is the dump repository root
	workDir string

	// remote is the remote name to fetch from and push to
	remote string

	// branch is the branch holding the dump history
	branch string
}

// Option configures a Git instance.
type Option func(*Git)

// WithRemote sets the remote name (default "origin")
func WithRemote(remote string) Option {
	return func(g *Git) {
		g.remote = remote
	}
}

// WithBranch sets the dump branch name (default "master")
func WithBranch(branch string) Option {
	return func(g *Git) {
		g.branch = branch
	}
}

// New creates a new Git VCS instance operating on workDir.
// The directory does not need to exist yet; Init creates tracking
// once the engine has created it.
func New(workDir string, opts ...Option) *Git {
	g := &Git{
		workDir: workDir,
		remote:  DefaultRemote,
		branch:  DefaultBranch,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the VCS type (git)
func (g *Git) Name() vcs.Type {
	return vcs.TypeGit
}

// WorkDir returns the dump repository root
func (g *Git) WorkDir() string {
	return g.workDir
}

// RemoteRef returns the remote tracking reference for the dump branch,
// e.g. "origin/master".
func (g *Git) RemoteRef() string {
	return g.remote + "/" + g.branch
}

// Init initializes a git repository in WorkDir.
// The directory must already exist.
func (g *Git) Init() error {
	_, err := g.run("init", "--initial-branch="+g.branch)
	if err != nil {
		// Older git versions don't know --initial-branch
		if _, retryErr := g.run("init"); retryErr != nil {
			return err
		}
	}
	return nil
}

// Version returns the git binary version string
func (g *Git) Version() (string, error) {
	output, err := exec.Command("git", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git version: %w", err)
	}

	// Output format: "git version 2.39.0"
	version := strings.TrimSpace(string(output))
	version = strings.TrimPrefix(version, "git version ")
	return version, nil
}

// HasRemote returns true if any remote is configured
func (g *Git) HasRemote() bool {
	output, err := g.run("remote")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) != ""
}

// run executes a git command rooted in the dump repository
func (g *Git) run(args ...string) ([]byte, error) {
	return g.runCtx(context.Background(), args...)
}

// runCtx executes a git command with context support
func (g *Git) runCtx(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\n%s",
			strings.Join(args, " "), err, string(output))
	}

	return output, nil
}
