package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/domain/ports/repository"
)

var _ repository.GenerationStatusRepository = (*StatusStore)(nil)

// Persisted keys, shared with every reader of the job record.
const (
	KeyGenerationStatus = "generationStatus"
	KeyGenerationError  = "generationError"
	KeyLectureSummary   = "lecture_summary"
)

// StatusStore persists the generation job record. Keys have no TTL: terminal
// states stay until the next job overwrites them.
type StatusStore struct {
	client *Client
	prefix string
}

func NewStatusStore(client *Client, prefix string) *StatusStore {
	return &StatusStore{client: client, prefix: prefix}
}

func (s *StatusStore) key(k string) string { return s.prefix + k }

func (s *StatusStore) SetStatus(ctx context.Context, status model.GenerationStatus, errMsg string) error {
	return s.client.cli.MSet(ctx,
		s.key(KeyGenerationStatus), string(status),
		s.key(KeyGenerationError), errMsg,
	).Err()
}

func (s *StatusStore) Complete(ctx context.Context, result string) error {
	return s.client.cli.MSet(ctx,
		s.key(KeyLectureSummary), result,
		s.key(KeyGenerationStatus), string(model.GenerationCompleted),
		s.key(KeyGenerationError), "",
	).Err()
}

func (s *StatusStore) GetStatus(ctx context.Context) (model.StatusRecord, error) {
	vals, err := s.client.cli.MGet(ctx, s.key(KeyGenerationStatus), s.key(KeyGenerationError)).Result()
	if err != nil {
		return model.StatusRecord{}, err
	}
	st, err := model.ParseGenerationStatus(asString(vals[0]))
	if err != nil {
		return model.StatusRecord{}, err
	}
	return model.StatusRecord{Status: st, Error: asString(vals[1])}, nil
}

func (s *StatusStore) GetResult(ctx context.Context) (string, error) {
	v, err := s.client.cli.Get(ctx, s.key(KeyLectureSummary)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && v == "") {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get summary: %w", err)
	}
	return v, nil
}

// MGET yields nil for missing keys.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
