package repository

import "context"

// JobGuard admits at most one generation job at a time.
type JobGuard interface {
	// TryAcquire returns domain.ErrAlreadyInProgress when another job holds the guard.
	// The returned release func must be called exactly once.
	TryAcquire(ctx context.Context) (release func(), err error)
}
