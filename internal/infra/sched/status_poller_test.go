package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain/model"
)

// scriptedSource replays a fixed status sequence, repeating the last one.
type scriptedSource struct {
	mu      sync.Mutex
	steps   []model.StatusRecord
	calls   int
	result  string
	results int
	errAt   int
}

func (s *scriptedSource) Status(ctx context.Context) (model.StatusSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.errAt > 0 && s.calls == s.errAt {
		return model.StatusSnapshot{}, errors.New("connection refused")
	}
	i := s.calls - 1
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return model.NewStatusSnapshot(s.steps[i], true), nil
}

func (s *scriptedSource) Result(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results++
	return s.result, nil
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPollerCompletes(t *testing.T) {
	src := &scriptedSource{
		steps: []model.StatusRecord{
			{Status: model.GenerationFetchingTranscript},
			{Status: model.GenerationGeneratingSummary},
			{Status: model.GenerationCompleted},
		},
		result: "# Done",
		errAt:  2,
	}
	var seen []string
	p := NewStatusPoller(time.Millisecond, src, func(_ model.GenerationStatus, msg string) {
		seen = append(seen, msg)
	}, newTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := p.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got != "# Done" || src.results != 1 {
		t.Errorf("unexpected result %q fetched %d times", got, src.results)
	}
	// the failed query at call 2 is skipped, not fatal
	if len(seen) == 0 || seen[0] != "Fetching transcript..." {
		t.Errorf("unexpected progress messages %v", seen)
	}
}

func TestPollerSurfacesJobError(t *testing.T) {
	src := &scriptedSource{steps: []model.StatusRecord{
		{Status: model.GenerationError, Error: "HTTP error! status: 403"},
	}}
	p := NewStatusPoller(time.Millisecond, src, nil, newTestLogger())

	_, err := p.Wait(context.Background())
	var je *JobError
	if !errors.As(err, &je) || je.Message != "HTTP error! status: 403" {
		t.Fatalf("expected JobError with message, got %v", err)
	}
	if src.results != 0 {
		t.Error("result must not be fetched on error")
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	src := &scriptedSource{steps: []model.StatusRecord{{Status: model.GenerationGeneratingSummary}}}
	p := NewStatusPoller(time.Millisecond, src, nil, newTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
