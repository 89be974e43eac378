package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Generation workflow errors
	ErrInvalidAPIKey     = errors.New("Invalid API Key, please provide a valid key")
	ErrAlreadyInProgress = errors.New("a generation is already in progress")
	ErrNetworkFailure    = errors.New("network failure")
	ErrTranscriptFetch   = errors.New("transcript fetch failed")
	ErrProvider          = errors.New("generation provider error")
	ErrQueueFull         = errors.New("worker queue full")
	ErrInterrupted       = errors.New("generation interrupted by restart")
)

// HTTPStatusError is returned when the transcript endpoint answers with a
// non-2xx status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrTranscriptFetch
}
