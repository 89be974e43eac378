package ai

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/config"
	"lecture-summary/internal/domain/ports/adapter"
)

// NewGenerator picks the provider named in config.
func NewGenerator(cfg config.AIConfig, logger *zerolog.Logger) (adapter.SummaryGenerator, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiGenerator(cfg.GeminiURL, cfg.Model, logger), nil
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.Model, logger), nil
	case "noop":
		return NewNoopGenerator(500*time.Millisecond, logger), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}
