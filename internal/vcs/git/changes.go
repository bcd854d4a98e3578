package git

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/kotenev/yokadi/internal/vcs"
)

// ChangesSince returns the file-level changes between the given reference
// and the current head. Rename detection is disabled so every difference
// shows up as plain added/modified/removed paths, which is what the
// import pass expects for UUID-named dump files.
func (g *Git) ChangesSince(ref string) (*vcs.ChangeSet, error) {
	// A local-only dump has no remote tracking ref yet
	if ref == g.RemoteRef() && !g.HasRemote() {
		return &vcs.ChangeSet{}, nil
	}

	cmd := exec.Command("git", "diff", "--name-status", "--no-renames", ref, "HEAD")
	cmd.Dir = g.workDir

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff against %s failed: %w", ref, err)
	}

	changes := &vcs.ChangeSet{}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		status, path := parts[0], parts[1]
		switch {
		case strings.HasPrefix(status, "A"):
			changes.Added = append(changes.Added, path)
		case strings.HasPrefix(status, "M"):
			changes.Modified = append(changes.Modified, path)
		case strings.HasPrefix(status, "D"):
			changes.Removed = append(changes.Removed, path)
		}
	}

	return changes, nil
}

// FileAtRef returns the content of a file as recorded at the given
// reference, without touching the working tree.
func (g *Git) FileAtRef(ref, path string) ([]byte, error) {
	cmd := exec.Command("git", "show", ref+":"+path)
	cmd.Dir = g.workDir

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, ref, err)
	}

	return output, nil
}
