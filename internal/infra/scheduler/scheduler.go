package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Collector is the periodic job the scheduler runs.
type Collector interface {
	Collect(ctx context.Context) error
}

// CollectorFunc adapts a plain function to Collector.
type CollectorFunc func(ctx context.Context) error

func (f CollectorFunc) Collect(ctx context.Context) error { return f(ctx) }

// Scheduler periodically runs a Collector.
type Scheduler struct {
	interval  time.Duration
	collector Collector
	log       *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler that runs collector every interval.
// If interval <= 0 it defaults to 15 seconds.
func NewScheduler(interval time.Duration, collector Collector, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	l := logger.With().Str("component", "Scheduler").Logger()
	return &Scheduler{
		interval:  interval,
		collector: collector,
		log:       &l,
		done:      make(chan struct{}),
	}
}

// Start begins the loop in a background goroutine; calling it twice has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	s.runOnce()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	runCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	if err := s.collector.Collect(runCtx); err != nil {
		s.log.Warn().Err(err).Msg("collect failed")
	}
}

// Stop cancels the loop and waits for it to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	s.log.Info().Msg("scheduler stopped")
}
