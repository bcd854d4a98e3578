package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Constructor creates a VCS instance operating on the given directory.
// Implementations register themselves with the registry using Register().
type Constructor func(workDir string) (VCS, error)

// registry maps VCS types to their constructors
var (
	registry      = make(map[Type]Constructor)
	registryMutex sync.RWMutex
)

// Register registers a VCS implementation constructor.
// This is called from init() functions in implementation packages.
//
// Example:
//
//	func init() {
//	    vcs.Register(vcs.TypeGit, New)
//	}
func Register(t Type, constructor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if constructor == nil {
		panic(fmt.Sprintf("vcs: Register constructor is nil for type %s", t))
	}

	if _, exists := registry[t]; exists {
		panic(fmt.Sprintf("vcs: Register called twice for type %s", t))
	}

	registry[t] = constructor
}

// IsRegistered returns true if a constructor is registered for the given type.
func IsRegistered(t Type) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, exists := registry[t]
	return exists
}

// New creates a VCS instance of the given type for workDir.
func New(t Type, workDir string) (VCS, error) {
	registryMutex.RLock()
	constructor := registry[t]
	registryMutex.RUnlock()

	if constructor == nil {
		return nil, fmt.Errorf("vcs: no implementation registered for type %s", t)
	}
	return constructor(workDir)
}

// Open detects the VCS backing workDir and creates an instance for it.
// Returns ErrNotInVCS if workDir exists but carries no known VCS metadata.
func Open(workDir string) (VCS, error) {
	gitDir := filepath.Join(workDir, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		return New(TypeGit, workDir)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotInVCS, workDir)
}
