// File: internal/usecase/history_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/domain/ports/repository"
	"lecture-summary/internal/infra/metrics"
)

// Compile-time check
var _ HistoryUseCase = (*historyUC)(nil)

type HistoryUseCase interface {
	// Archive stores content as a new entry. It returns nil, nil when the
	// content is empty or already archived.
	Archive(ctx context.Context, content string) (*model.HistoryEntry, error)
	List(ctx context.Context) ([]*model.HistoryEntry, error)
	Get(ctx context.Context, id string) (*model.HistoryEntry, error)
	Clear(ctx context.Context) error
}

type historyUC struct {
	repo  repository.HistoryRepository
	limit int
	now   func() time.Time
	log   *zerolog.Logger
}

func NewHistoryUseCase(repo repository.HistoryRepository, limit int, logger *zerolog.Logger) *historyUC {
	if limit <= 0 {
		limit = model.HistoryLimit
	}
	l := logger.With().Str("component", "HistoryUC").Logger()
	return &historyUC{repo: repo, limit: limit, now: time.Now, log: &l}
}

func (h *historyUC) Archive(ctx context.Context, content string) (*model.HistoryEntry, error) {
	if strings.TrimSpace(content) == "" {
		metrics.IncHistoryArchive("empty")
		return nil, nil
	}
	existing, err := h.repo.List(ctx)
	if err != nil {
		metrics.IncHistoryArchive("failed")
		return nil, err
	}
	for _, e := range existing {
		if e.Content == content {
			metrics.IncHistoryArchive("duplicate")
			h.log.Debug().Str("entry_id", e.ID).Msg("summary already archived")
			return nil, nil
		}
	}

	now := h.now()
	// ids are millisecond timestamps; keep them unique under fast archiving
	if len(existing) > 0 && existing[0].Timestamp >= now.UnixMilli() {
		now = time.UnixMilli(existing[0].Timestamp + 1)
	}
	entry := model.NewHistoryEntry(content, now)
	if err := h.repo.Prepend(ctx, entry, h.limit); err != nil {
		metrics.IncHistoryArchive("failed")
		return nil, err
	}
	metrics.IncHistoryArchive("stored")
	h.log.Info().Str("entry_id", entry.ID).Str("title", entry.Title).Msg("summary archived")
	return entry, nil
}

func (h *historyUC) List(ctx context.Context) ([]*model.HistoryEntry, error) {
	return h.repo.List(ctx)
}

func (h *historyUC) Get(ctx context.Context, id string) (*model.HistoryEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	e, err := h.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (h *historyUC) Clear(ctx context.Context) error {
	return h.repo.Clear(ctx)
}
