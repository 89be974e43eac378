package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/ports/adapter"
)

var _ adapter.SummaryGenerator = (*NoopGenerator)(nil)

// NoopGenerator implements adapter.SummaryGenerator for local/dev testing.
// It logs the prompt size instead of sending real AI requests.
type NoopGenerator struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewNoopGenerator(delay time.Duration, logger *zerolog.Logger) *NoopGenerator {
	l := logger.With().Str("component", "NoopGenerator").Logger()
	return &NoopGenerator{delay: delay, log: &l}
}

func (n *NoopGenerator) Provider() string { return "noop" }
func (n *NoopGenerator) Model() string    { return "noop-model" }

func (n *NoopGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, adapter.Usage, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", adapter.Usage{}, domain.ErrInvalidAPIKey
	}
	// Simulate processing time and respect ctx
	select {
	case <-time.After(n.delay):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	n.log.Info().Int("prompt_chars", len(prompt)).Msg("noop generation")
	words := len(strings.Fields(prompt))
	return fmt.Sprintf("# Noop Summary\n\n- Prompt contained **%d** words.\n", words), adapter.Usage{}, nil
}
