package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/domain/ports/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const KeyLectureHistory = "lecture_history"

// HistoryRepo keeps archived summaries in a Redis list, head = newest.
type HistoryRepo struct {
	client *Client
	key    string
}

func NewHistoryRepo(client *Client, prefix string) *HistoryRepo {
	return &HistoryRepo{client: client, key: prefix + KeyLectureHistory}
}

// Prepend pushes and trims inside one MULTI so readers never see more than limit entries.
func (h *HistoryRepo) Prepend(ctx context.Context, entry *model.HistoryEntry, limit int) error {
	if limit <= 0 {
		limit = model.HistoryLimit
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = h.client.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, h.key, data)
		p.LTrim(ctx, h.key, 0, int64(limit-1))
		return nil
	})
	return err
}

func (h *HistoryRepo) List(ctx context.Context) ([]*model.HistoryEntry, error) {
	raw, err := h.client.cli.LRange(ctx, h.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*model.HistoryEntry, 0, len(raw))
	for i, r := range raw {
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode history entry %d: %w", i, err)
		}
		out = append(out, &e)
	}
	return out, nil
}

func (h *HistoryRepo) FindByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	entries, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (h *HistoryRepo) Clear(ctx context.Context) error {
	return h.client.Del(ctx, h.key)
}
