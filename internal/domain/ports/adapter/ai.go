package adapter

import "context"

// Usage for a single generation call, when the provider reports it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// SummaryGenerator is the port for the text-generation provider. The API key
// arrives with each call; implementations build their client from it.
type SummaryGenerator interface {
	// Provider names the backend for logs and metrics ("gemini", "openai", "noop").
	Provider() string
	Model() string

	// Generate returns domain.ErrInvalidAPIKey when the provider rejects the key
	// and wraps domain.ErrProvider for every other provider failure.
	Generate(ctx context.Context, apiKey, prompt string) (string, Usage, error)
}

// TokenCounter estimates prompt size. Used for metrics only.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}
