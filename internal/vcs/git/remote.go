package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kotenev/yokadi/internal/vcs"
)

// Fetch downloads remote history without merging it.
// A repository with no remote configured is a valid local-only dump,
// so Fetch is a no-op in that case.
func (g *Git) Fetch(ctx context.Context) error {
	if !g.HasRemote() {
		return nil
	}

	if output, err := g.runCtx(ctx, "fetch", g.remote); err != nil {
		return fmt.Errorf("git fetch failed: %w\n%s", err, output)
	}
	return nil
}

// Merge merges the last fetched remote head into the working tree
func (g *Git) Merge(ctx context.Context) error {
	if !g.HasRemote() {
		return nil
	}

	cmd := exec.CommandContext(ctx, "git", "merge", "--no-edit", g.RemoteRef())
	cmd.Dir = g.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		outputStr := string(output)
		if strings.Contains(outputStr, "CONFLICT") || strings.Contains(outputStr, "conflict") {
			return vcs.ErrConflicts
		}
		return fmt.Errorf("git merge failed: %w\n%s", err, outputStr)
	}

	return nil
}

// Push publishes the dump branch to the remote.
// Returns vcs.ErrNotFastForward if the remote advanced concurrently.
func (g *Git) Push(ctx context.Context) error {
	if !g.HasRemote() {
		return nil
	}

	cmd := exec.CommandContext(ctx, "git", "push", g.remote, "HEAD:"+g.branch)
	cmd.Dir = g.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		outputStr := string(output)
		// Only the stale-history rejections are worth a pull-and-retry.
		// Hook rejections ("remote rejected") are not resolved by pulling.
		if strings.Contains(outputStr, "non-fast-forward") || strings.Contains(outputStr, "fetch first") {
			return vcs.ErrNotFastForward
		}
		return fmt.Errorf("git push failed: %w\n%s", err, outputStr)
	}

	return nil
}

// IsUpToDate returns true if the local head already contains everything
// the last fetched remote head has.
func (g *Git) IsUpToDate() (bool, error) {
	if !g.HasRemote() {
		return true, nil
	}

	cmd := exec.Command("git", "rev-list", "--count", "HEAD.."+g.RemoteRef())
	cmd.Dir = g.workDir

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to count remote commits: %w", err)
	}

	return strings.TrimSpace(string(output)) == "0", nil
}
