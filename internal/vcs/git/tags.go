package git

import (
	"fmt"
	"os/exec"

	"github.com/kotenev/yokadi/internal/vcs"
)

// CreateTag creates a tag with the given name at the current head
func (g *Git) CreateTag(name string) error {
	if g.HasTag(name) {
		return vcs.ErrTagExists
	}

	if output, err := g.run("tag", name); err != nil {
		return fmt.Errorf("failed to create tag %s: %w\n%s", name, err, output)
	}
	return nil
}

// DeleteTag deletes the named tag
func (g *Git) DeleteTag(name string) error {
	if !g.HasTag(name) {
		return vcs.ErrTagNotFound
	}

	if output, err := g.run("tag", "-d", name); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w\n%s", name, err, output)
	}
	return nil
}

// HasTag returns true if the named tag exists
func (g *Git) HasTag(name string) bool {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/tags/"+name)
	cmd.Dir = g.workDir
	return cmd.Run() == nil
}

// ResetTo discards the working tree and moves the current head back
// to the given reference.
func (g *Git) ResetTo(ref string) error {
	if output, err := g.run("reset", "--hard", ref); err != nil {
		return fmt.Errorf("failed to reset to %s: %w\n%s", ref, err, output)
	}
	// Merges can leave behind files that did not exist at ref
	if output, err := g.run("clean", "-fd"); err != nil {
		return fmt.Errorf("failed to clean work tree: %w\n%s", err, output)
	}
	return nil
}
