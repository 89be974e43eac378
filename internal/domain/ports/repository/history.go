package repository

import (
	"context"

	"lecture-summary/internal/domain/model"
)

// HistoryRepository stores archived summaries newest-first, capped at limit.
type HistoryRepository interface {
	// Prepend inserts entry at the head and drops everything past limit.
	Prepend(ctx context.Context, entry *model.HistoryEntry, limit int) error
	List(ctx context.Context) ([]*model.HistoryEntry, error)
	FindByID(ctx context.Context, id string) (*model.HistoryEntry, error)
	Clear(ctx context.Context) error
}
