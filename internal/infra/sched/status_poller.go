package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain/model"
)

// StatusSource is anything that can report the job record, locally or over HTTP.
type StatusSource interface {
	Status(ctx context.Context) (model.StatusSnapshot, error)
	Result(ctx context.Context) (string, error)
}

// ProgressFunc receives a display message while the job is active.
type ProgressFunc func(status model.GenerationStatus, message string)

// JobError is a job that finished in the error state. Message is the
// persisted error text, unchanged.
type JobError struct {
	Message string
}

func (e *JobError) Error() string { return e.Message }

// ProgressMessage is the text shown for an active status.
func ProgressMessage(s model.GenerationStatus) string {
	switch s {
	case model.GenerationFetchingTranscript:
		return "Fetching transcript..."
	case model.GenerationGeneratingSummary:
		return "Generating summary..."
	}
	return ""
}

// StatusPoller queries a StatusSource on a fixed interval until the job
// reaches a terminal state. There is no backoff and no deadline; stop it
// through ctx.
type StatusPoller struct {
	interval   time.Duration
	src        StatusSource
	onProgress ProgressFunc
	log        *zerolog.Logger
}

func NewStatusPoller(interval time.Duration, src StatusSource, onProgress ProgressFunc, logger *zerolog.Logger) *StatusPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	pollLog := logger.With().Str("component", "StatusPoller").Logger()
	return &StatusPoller{interval: interval, src: src, onProgress: onProgress, log: &pollLog}
}

// Wait returns the summary once the job completes, or a *JobError when it fails.
func (p *StatusPoller) Wait(ctx context.Context) (string, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			snap, err := p.src.Status(ctx)
			if err != nil {
				p.log.Warn().Err(err).Msg("status query failed")
				continue
			}
			switch snap.Status {
			case model.GenerationCompleted:
				return p.src.Result(ctx)
			case model.GenerationError:
				msg := ""
				if snap.Error != nil {
					msg = *snap.Error
				}
				return "", &JobError{Message: msg}
			case model.GenerationFetchingTranscript, model.GenerationGeneratingSummary:
				if p.onProgress != nil {
					p.onProgress(snap.Status, ProgressMessage(snap.Status))
				}
			default:
				p.log.Debug().Str("status", string(snap.Status)).Msg("waiting for job")
			}
		}
	}
}
