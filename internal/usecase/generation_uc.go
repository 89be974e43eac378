// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/domain/ports/adapter"
	"lecture-summary/internal/domain/ports/repository"
	"lecture-summary/internal/infra/logging"
	"lecture-summary/internal/infra/metrics"
	"lecture-summary/internal/infra/worker"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

// GenerationRequest identifies the lecture media and carries the caller's
// credentials. Neither credential is persisted.
type GenerationRequest struct {
	LessonID    string
	MediaID     string
	BearerToken string
	APIKey      string
}

type GenerationUseCase interface {
	// Run drives one job to a terminal state and returns the summary.
	Run(ctx context.Context, req GenerationRequest) (string, error)
	// Submit starts a job on the worker pool and returns its id. Guard and
	// API key checks happen before it returns.
	Submit(ctx context.Context, req GenerationRequest) (string, error)
	Status(ctx context.Context) (model.StatusSnapshot, error)
	Result(ctx context.Context) (string, error)
	// RecoverInterrupted marks a job left active by a previous process as failed.
	RecoverInterrupted(ctx context.Context) error
}

type generationUC struct {
	status   repository.GenerationStatusRepository
	fetcher  adapter.TranscriptFetcher
	gen      adapter.SummaryGenerator
	counter  adapter.TokenCounter
	history  HistoryUseCase
	guard    repository.JobGuard
	pool     *worker.Pool
	log      *zerolog.Logger
	now      func() time.Time
	inFlight atomic.Bool
}

// NewGenerationUseCase wires the orchestrator. counter, history and pool may
// be nil: without a pool Submit is unavailable.
func NewGenerationUseCase(
	status repository.GenerationStatusRepository,
	fetcher adapter.TranscriptFetcher,
	gen adapter.SummaryGenerator,
	counter adapter.TokenCounter,
	history HistoryUseCase,
	guard repository.JobGuard,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *generationUC {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	l := logger.With().Str("component", "GenerationUC").Logger()
	return &generationUC{
		status:  status,
		fetcher: fetcher,
		gen:     gen,
		counter: counter,
		history: history,
		guard:   guard,
		pool:    pool,
		log:     &l,
		now:     time.Now,
	}
}

func (uc *generationUC) Run(ctx context.Context, req GenerationRequest) (string, error) {
	job, release, err := uc.begin(ctx, req)
	if err != nil {
		return "", err
	}
	defer release()
	return uc.execute(logging.WithJobID(ctx, job.ID), job, req)
}

func (uc *generationUC) Submit(ctx context.Context, req GenerationRequest) (string, error) {
	if uc.pool == nil {
		return "", errors.New("generation: no worker pool configured")
	}
	job, release, err := uc.begin(ctx, req)
	if err != nil {
		return "", err
	}
	task := func(poolCtx context.Context) error {
		defer release()
		_, err := uc.execute(logging.WithJobID(poolCtx, job.ID), job, req)
		return err
	}
	if err := uc.pool.Submit(task); err != nil {
		metrics.IncGenerationRejected("queue_full")
		// the job never ran, so it must not stay active
		_ = uc.fail(ctx, job, err)
		release()
		return "", err
	}
	return job.ID, nil
}

// begin claims the guard, announces fetching_transcript and checks the API
// key. On error nothing needs releasing.
func (uc *generationUC) begin(ctx context.Context, req GenerationRequest) (*model.GenerationJob, func(), error) {
	unlock, err := uc.guard.TryAcquire(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyInProgress) {
			metrics.IncGenerationRejected("in_progress")
		}
		return nil, nil, err
	}
	uc.inFlight.Store(true)
	release := func() {
		uc.inFlight.Store(false)
		unlock()
	}

	prev, err := uc.status.GetStatus(ctx)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("read generation status: %w", err)
	}
	from := prev.Status
	if from.IsActive() {
		// we hold the guard, so the active record belongs to a dead job
		uc.log.Warn().Str("status", string(from)).Msg("overwriting stale active status")
		from = model.GenerationError
	}
	job, err := model.NewGenerationJob(from, uc.now())
	if err != nil {
		release()
		return nil, nil, err
	}

	log := logging.With(logging.WithJobID(ctx, job.ID), uc.log)
	log.Info().
		Str("lesson_id", req.LessonID).
		Str("media_id", req.MediaID).
		Msg("generation started")

	if err := uc.status.SetStatus(ctx, job.Status, ""); err != nil {
		release()
		return nil, nil, fmt.Errorf("write generation status: %w", err)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		err := uc.fail(ctx, job, domain.ErrInvalidAPIKey)
		release()
		return nil, nil, err
	}
	return job, release, nil
}

func (uc *generationUC) execute(ctx context.Context, job *model.GenerationJob, req GenerationRequest) (summary string, err error) {
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "GenerationUC.execute")()
	// a panicking adapter must still leave the record in the error state
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("generation panicked")
			summary, err = "", uc.fail(ctx, job, fmt.Errorf("%w: panic: %v", domain.ErrProvider, r))
		}
	}()

	start := uc.now()
	transcript, err := uc.fetcher.Fetch(ctx, req.LessonID, req.MediaID, req.BearerToken)
	metrics.ObserveStage(string(model.GenerationFetchingTranscript), time.Since(start))
	if err != nil {
		return "", uc.fail(ctx, job, err)
	}
	log.Debug().Int("transcript_bytes", len(transcript)).Msg("transcript fetched")

	if err := job.StartGenerating(uc.now()); err != nil {
		return "", uc.fail(ctx, job, err)
	}
	if err := uc.status.SetStatus(ctx, job.Status, ""); err != nil {
		return "", uc.fail(ctx, job, fmt.Errorf("write generation status: %w", err))
	}

	prompt := BuildPrompt(transcript)
	uc.estimatePrompt(log, prompt)

	start = time.Now()
	summary, usage, err := uc.gen.Generate(ctx, req.APIKey, prompt)
	elapsed := time.Since(start)
	metrics.ObserveStage(string(model.GenerationGeneratingSummary), elapsed)
	metrics.ObserveGeneration(uc.gen.Provider(), uc.gen.Model(),
		usage.PromptTokens, usage.CompletionTokens, int(elapsed.Milliseconds()), err == nil)
	if err != nil {
		return "", uc.fail(ctx, job, err)
	}

	if err := job.Complete(summary, uc.now()); err != nil {
		return "", uc.fail(ctx, job, err)
	}
	if err := uc.status.Complete(ctx, summary); err != nil {
		return "", uc.fail(ctx, job, fmt.Errorf("store summary: %w", err))
	}
	metrics.IncGenerationJob(string(model.GenerationCompleted))
	log.Info().
		Int("summary_bytes", len(summary)).
		Int("total_tokens", usage.TotalTokens).
		Dur("elapsed", time.Since(job.StartedAt)).
		Msg("generation completed")

	uc.notify(ctx, log, summary)
	return summary, nil
}

// fail records cause as the job error. The write survives a cancelled ctx so
// a shutdown does not leave the record active.
func (uc *generationUC) fail(ctx context.Context, job *model.GenerationJob, cause error) error {
	msg := cause.Error()
	if err := job.Fail(msg, uc.now()); err != nil {
		uc.log.Error().Err(err).Msg("fail transition rejected")
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.status.SetStatus(wctx, model.GenerationError, msg); err != nil {
		logging.With(ctx, uc.log).Error().Err(err).Msg("write error status")
	}
	metrics.IncGenerationJob(string(model.GenerationError))
	logging.With(ctx, uc.log).Warn().Err(cause).Msg("generation failed")
	return cause
}

func (uc *generationUC) notify(ctx context.Context, log *zerolog.Logger, summary string) {
	if uc.history == nil {
		return
	}
	if _, err := uc.history.Archive(context.WithoutCancel(ctx), summary); err != nil {
		log.Error().Err(err).Msg("archive summary")
	}
}

func (uc *generationUC) estimatePrompt(log *zerolog.Logger, prompt string) {
	if uc.counter == nil {
		return
	}
	n, err := uc.counter.CountTokens(prompt)
	if err != nil {
		log.Debug().Err(err).Msg("prompt token estimate")
		return
	}
	metrics.ObservePromptEstimate(n)
	log.Debug().Int("prompt_tokens_est", n).Msg("prompt built")
}

func (uc *generationUC) Status(ctx context.Context) (model.StatusSnapshot, error) {
	rec, err := uc.status.GetStatus(ctx)
	if err != nil {
		return model.StatusSnapshot{}, err
	}
	return model.NewStatusSnapshot(rec, uc.inFlight.Load()), nil
}

func (uc *generationUC) Result(ctx context.Context) (string, error) {
	return uc.status.GetResult(ctx)
}

func (uc *generationUC) RecoverInterrupted(ctx context.Context) error {
	if uc.inFlight.Load() {
		return nil
	}
	rec, err := uc.status.GetStatus(ctx)
	if err != nil {
		return err
	}
	if !rec.Status.IsActive() {
		return nil
	}
	// with a shared lock another replica may own the active record
	unlock, err := uc.guard.TryAcquire(ctx)
	if errors.Is(err, domain.ErrAlreadyInProgress) {
		// a crashed holder keeps the lock until its TTL lapses
		uc.log.Warn().
			Str("status", string(rec.Status)).
			Msg("active generation record left in place: lock held elsewhere, pollers wait until the holder finishes or its lock expires")
		return nil
	}
	if err != nil {
		return err
	}
	defer unlock()
	uc.log.Warn().Str("status", string(rec.Status)).Msg("recovering interrupted generation")
	return uc.status.SetStatus(ctx, model.GenerationError, domain.ErrInterrupted.Error())
}
