package git

import "github.com/kotenev/yokadi/internal/vcs"

// init registers the git VCS implementation with the registry.
// This is called automatically when the package is imported:
//
//	import _ "github.com/kotenev/yokadi/internal/vcs/git"
func init() {
	vcs.Register(vcs.TypeGit, func(workDir string) (vcs.VCS, error) {
		return New(workDir), nil
	})
}
