package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kotenev/yokadi/internal/vcs"
)

// Sync is the top-level orchestration: commit pending local changes,
// then pull and push until the replica converges with the remote.
// Returns true on success.
//
// Not-fast-forward pushes mean another replica pushed concurrently;
// each retry re-pulls first, so every iteration pushes on top of the
// latest remote state. Retries back off exponentially and are capped at
// the configured maximum so pathological contention surfaces instead of
// spinning forever. Pull failures and generic push failures are never
// retried.
func (m *Manager) Sync(ctx context.Context, reporter Reporter) bool {
	hasLocal, err := m.HasChangesToCommit()
	if err != nil {
		reporter.ReportError(fmt.Sprintf("Failed to check work tree state: %v", err))
		return false
	}
	if hasLocal {
		reporter.ReportProgress("Committing local changes")
		if err := m.vcs.CommitAll(SyncCommitMessage); err != nil {
			reporter.ReportError(fmt.Sprintf("Failed to commit local changes: %v", err))
			return false
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(m.maxPushRetries)),
		ctx)

	for {
		if !m.Pull(ctx, reporter) {
			return false
		}

		hasPush, err := m.HasChangesToPush()
		if err != nil {
			reporter.ReportError(fmt.Sprintf("Failed to check push state: %v", err))
			return false
		}
		if !hasPush {
			return true
		}

		reporter.ReportProgress("Pushing local changes")
		err = m.vcs.Push(ctx)
		if err == nil {
			return true
		}

		if !errors.Is(err, vcs.ErrNotFastForward) {
			reporter.ReportError(fmt.Sprintf("Failed to push: %v", err))
			return false
		}

		reporter.ReportProgress("Remote has other changes, need to pull again")
		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			reporter.ReportError(fmt.Sprintf(
				"Gave up pushing after %d attempts: the remote keeps receiving other changes",
				m.maxPushRetries+1))
			return false
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			reporter.ReportError(fmt.Sprintf("Sync canceled: %v", ctx.Err()))
			return false
		}
	}
}
