package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2, 8, newTestLogger())
	p.Start(context.Background())
	defer p.Stop()

	var n atomic.Int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		if err := p.Submit(func(ctx context.Context) error {
			n.Add(1)
			done <- struct{}{}
			return nil
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	if n.Load() != 5 {
		t.Errorf("expected 5 runs, got %d", n.Load())
	}
}

func TestPoolQueueFull(t *testing.T) {
	// not started, so nothing drains the queue
	p := NewPool(1, 1, newTestLogger())
	noop := func(context.Context) error { return nil }
	if err := p.Submit(noop); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := p.Submit(noop); !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestPoolSurvivesPanic(t *testing.T) {
	p := NewPool(1, 4, newTestLogger())
	p.Start(context.Background())
	defer p.Stop()

	_ = p.Submit(func(context.Context) error { panic("boom") })
	ran := make(chan struct{})
	_ = p.Submit(func(context.Context) error { close(ran); return nil })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover from panic")
	}
}
