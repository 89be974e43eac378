package usecase

import (
	"context"
	"sync/atomic"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/ports/repository"
)

var _ repository.JobGuard = (*MemoryGuard)(nil)

// MemoryGuard admits one job per process.
type MemoryGuard struct {
	busy atomic.Bool
}

func NewMemoryGuard() *MemoryGuard { return &MemoryGuard{} }

func (g *MemoryGuard) TryAcquire(ctx context.Context) (func(), error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrAlreadyInProgress
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.busy.Store(false)
		}
	}, nil
}
