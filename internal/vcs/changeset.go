package vcs

// ChangeSet describes the file-level differences between two points in
// history. Paths are relative to the repository root.
type ChangeSet struct {
	// Added lists files present at the head but not at the base
	Added []string

	// Modified lists files present at both ends with different content
	Modified []string

	// Removed lists files present at the base but not at the head
	Removed []string
}

// HasChanges returns true if the set contains at least one difference
func (c *ChangeSet) HasChanges() bool {
	return len(c.Added)+len(c.Modified)+len(c.Removed) > 0
}

// Touched returns the paths that exist at the head of the change set
// (added or modified), in the order they were recorded.
func (c *ChangeSet) Touched() []string {
	paths := make([]string, 0, len(c.Added)+len(c.Modified))
	paths = append(paths, c.Added...)
	paths = append(paths, c.Modified...)
	return paths
}
