package repository

import (
	"context"

	"lecture-summary/internal/domain/model"
)

// GenerationStatusRepository persists the lifecycle of the single tracked job.
type GenerationStatusRepository interface {
	// SetStatus overwrites status and error. An empty errMsg clears the error.
	SetStatus(ctx context.Context, status model.GenerationStatus, errMsg string) error
	// Complete stores the summary, marks the job completed and clears the error in one write.
	Complete(ctx context.Context, result string) error
	// GetStatus returns the persisted record; a missing record reads as idle.
	GetStatus(ctx context.Context) (model.StatusRecord, error)
	// GetResult returns the stored summary or domain.ErrNotFound.
	GetResult(ctx context.Context) (string, error)
}
