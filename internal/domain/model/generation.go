package model

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"lecture-summary/internal/domain"
)

type GenerationStatus string

const (
	GenerationIdle               GenerationStatus = "idle"
	GenerationFetchingTranscript GenerationStatus = "fetching_transcript"
	GenerationGeneratingSummary  GenerationStatus = "generating_summary"
	GenerationCompleted          GenerationStatus = "completed"
	GenerationError              GenerationStatus = "error"
)

// ParseGenerationStatus maps a persisted value back to a status.
// An empty value reads as idle.
func ParseGenerationStatus(s string) (GenerationStatus, error) {
	switch st := GenerationStatus(s); st {
	case "":
		return GenerationIdle, nil
	case GenerationIdle, GenerationFetchingTranscript, GenerationGeneratingSummary, GenerationCompleted, GenerationError:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown generation status %q", domain.ErrInvalidArgument, s)
}

func (s GenerationStatus) IsActive() bool {
	return s == GenerationFetchingTranscript || s == GenerationGeneratingSummary
}

func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationCompleted || s == GenerationError
}

// CanTransition reports whether the state machine allows from -> to.
func (s GenerationStatus) CanTransition(to GenerationStatus) bool {
	switch s {
	case GenerationIdle, GenerationCompleted, GenerationError:
		return to == GenerationFetchingTranscript
	case GenerationFetchingTranscript:
		return to == GenerationGeneratingSummary || to == GenerationError
	case GenerationGeneratingSummary:
		return to == GenerationCompleted || to == GenerationError
	}
	return false
}

// GenerationJob is the single job tracked by the orchestrator.
type GenerationJob struct {
	ID        string
	Status    GenerationStatus
	Error     string
	Result    string
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewGenerationJob starts a job from the previous persisted status.
func NewGenerationJob(previous GenerationStatus, now time.Time) (*GenerationJob, error) {
	if !previous.CanTransition(GenerationFetchingTranscript) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, previous, GenerationFetchingTranscript)
	}
	return &GenerationJob{
		ID:        ulid.Make().String(),
		Status:    GenerationFetchingTranscript,
		StartedAt: now,
		UpdatedAt: now,
	}, nil
}

func (j *GenerationJob) transition(to GenerationStatus, now time.Time) error {
	if !j.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	j.UpdatedAt = now
	return nil
}

func (j *GenerationJob) StartGenerating(now time.Time) error {
	return j.transition(GenerationGeneratingSummary, now)
}

func (j *GenerationJob) Complete(result string, now time.Time) error {
	if err := j.transition(GenerationCompleted, now); err != nil {
		return err
	}
	j.Result = result
	j.Error = ""
	return nil
}

func (j *GenerationJob) Fail(msg string, now time.Time) error {
	if err := j.transition(GenerationError, now); err != nil {
		return err
	}
	j.Error = msg
	return nil
}

// StatusRecord is what the status store persists.
type StatusRecord struct {
	Status GenerationStatus
	Error  string
}

// StatusSnapshot is the copy handed to readers.
type StatusSnapshot struct {
	Status     GenerationStatus `json:"status"`
	Error      *string          `json:"error"`
	InProgress bool             `json:"inProgress"`
}

func NewStatusSnapshot(rec StatusRecord, inProgress bool) StatusSnapshot {
	snap := StatusSnapshot{Status: rec.Status, InProgress: inProgress}
	if snap.Status == "" {
		snap.Status = GenerationIdle
	}
	if rec.Error != "" {
		msg := rec.Error
		snap.Error = &msg
	}
	return snap
}
