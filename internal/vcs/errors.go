package vcs

import "errors"

// Common errors returned by VCS operations.
//
// These errors can be checked using errors.Is() for proper error handling:
//
//	if errors.Is(err, vcs.ErrNotFastForward) {
//	    // Remote advanced concurrently, pull again and retry
//	}
var (
	// ErrNotInVCS is returned when the operation requires being inside
	// a VCS repository but none was found.
	ErrNotInVCS = errors.New("not in a VCS repository")

	// ErrVCSNotAvailable is returned when the required VCS binary
	// is not installed or not in PATH.
	ErrVCSNotAvailable = errors.New("VCS binary not available")

	// ErrNotFastForward is returned by Push when the remote has other
	// changes the local history does not include. Pulling and retrying
	// usually resolves it.
	ErrNotFastForward = errors.New("push rejected: remote has diverged")

	// ErrTagExists is returned when attempting to create a tag
	// that already exists.
	ErrTagExists = errors.New("tag already exists")

	// ErrTagNotFound is returned when attempting to operate on
	// a tag that doesn't exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrNoRemote is returned when an operation requires a remote
	// but none is configured.
	ErrNoRemote = errors.New("no remote configured")

	// ErrConflicts is returned when a merge cannot complete
	// due to unresolved conflicts.
	ErrConflicts = errors.New("unresolved conflicts")
)

// IsRetryable returns true if the error is likely to succeed on retry.
// Not-fast-forward pushes succeed once the remote changes are pulled.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNotFastForward)
}

// IsFatal returns true if the error indicates a non-recoverable state
// that requires manual intervention or re-initialization.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotInVCS) || errors.Is(err, ErrVCSNotAvailable)
}
