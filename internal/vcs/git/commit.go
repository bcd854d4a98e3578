package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// IsWorkTreeClean returns true if there are no uncommitted changes,
// including untracked files.
func (g *Git) IsWorkTreeClean() (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = g.workDir

	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status failed: %w", err)
	}

	return len(strings.TrimSpace(string(output))) == 0, nil
}

// CommitAll stages every change in the working tree and commits it
// with the given message.
func (g *Git) CommitAll(message string) error {
	if output, err := g.run("add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w\n%s", err, output)
	}

	if output, err := g.run("commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w\n%s", err, output)
	}
	return nil
}
