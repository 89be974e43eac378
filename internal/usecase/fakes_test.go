package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/domain/ports/adapter"
	"lecture-summary/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memStatusStore records every write so tests can check ordering.
type memStatusStore struct {
	mu      sync.Mutex
	rec     model.StatusRecord
	summary string
	writes  []model.GenerationStatus
	getErr  error
}

var _ repository.GenerationStatusRepository = (*memStatusStore)(nil)

func (m *memStatusStore) SetStatus(ctx context.Context, status model.GenerationStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = model.StatusRecord{Status: status, Error: errMsg}
	m.writes = append(m.writes, status)
	return nil
}

func (m *memStatusStore) Complete(ctx context.Context, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary = result
	m.rec = model.StatusRecord{Status: model.GenerationCompleted}
	m.writes = append(m.writes, model.GenerationCompleted)
	return nil
}

func (m *memStatusStore) GetStatus(ctx context.Context) (model.StatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return model.StatusRecord{}, m.getErr
	}
	if m.rec.Status == "" {
		return model.StatusRecord{Status: model.GenerationIdle}, nil
	}
	return m.rec, nil
}

func (m *memStatusStore) GetResult(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summary == "" {
		return "", domain.ErrNotFound
	}
	return m.summary, nil
}

func (m *memStatusStore) snapshot() (model.StatusRecord, string, []model.GenerationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.summary, append([]model.GenerationStatus(nil), m.writes...)
}

type fakeFetcher struct {
	calls atomic.Int32
	text  string
	err   error
	// block, when set, holds Fetch until closed.
	block chan struct{}
	// seen is the last status observed in the store while fetching.
	store *memStatusStore
	seen  model.GenerationStatus
}

var _ adapter.TranscriptFetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) Fetch(ctx context.Context, lessonID, mediaID, bearerToken string) (string, error) {
	f.calls.Add(1)
	if f.store != nil {
		rec, _ := f.store.GetStatus(ctx)
		f.seen = rec.Status
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type fakeGenerator struct {
	calls  atomic.Int32
	text   string
	err    error
	prompt string
	apiKey string
	// nilDeref makes Generate fail the way a broken SDK response decoder does.
	nilDeref bool
}

var _ adapter.SummaryGenerator = (*fakeGenerator)(nil)

func (g *fakeGenerator) Provider() string { return "fake" }
func (g *fakeGenerator) Model() string    { return "fake-model" }

func (g *fakeGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, adapter.Usage, error) {
	g.calls.Add(1)
	g.prompt = prompt
	g.apiKey = apiKey
	if g.nilDeref {
		var u *adapter.Usage
		return "", *u, nil
	}
	if g.err != nil {
		return "", adapter.Usage{}, g.err
	}
	return g.text, adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
}

type fakeCounter struct{ n int }

func (c fakeCounter) CountTokens(string) (int, error) { return c.n, nil }

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []*model.HistoryEntry
	err     error
}

var _ repository.HistoryRepository = (*memHistoryRepo)(nil)

func (m *memHistoryRepo) Prepend(ctx context.Context, e *model.HistoryEntry, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append([]*model.HistoryEntry{e}, m.entries...)
	if len(m.entries) > limit {
		m.entries = m.entries[:limit]
	}
	return nil
}

func (m *memHistoryRepo) List(ctx context.Context) ([]*model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.HistoryEntry(nil), m.entries...), nil
}

func (m *memHistoryRepo) FindByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memHistoryRepo) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

var errBoom = errors.New("boom")
