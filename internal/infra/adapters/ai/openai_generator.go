package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.SummaryGenerator = (*OpenAIGenerator)(nil)

// OpenAIGenerator targets the Chat Completions API or any compatible gateway.
type OpenAIGenerator struct {
	base  string // e.g., https://api.openai.com/v1
	model string
	log   *zerolog.Logger
}

func NewOpenAIGenerator(base, model string, logger *zerolog.Logger) *OpenAIGenerator {
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	l := logger.With().Str("component", "OpenAIGenerator").Logger()
	return &OpenAIGenerator{
		base:  strings.TrimRight(base, "/"),
		model: modelOrDefault(model, "gpt-4o-mini"),
		log:   &l,
	}
}

func (o *OpenAIGenerator) Provider() string { return "openai" }
func (o *OpenAIGenerator) Model() string    { return o.model }

func (o *OpenAIGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, adapter.Usage, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", adapter.Usage{}, domain.ErrInvalidAPIKey
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(o.base+"/"),
		option.WithMaxRetries(0),
	)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(1),
	})
	if err != nil {
		o.log.Error().Err(err).Str("model", o.model).Msg("prompt failed")
		return "", adapter.Usage{}, ClassifyProviderError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", adapter.Usage{}, fmt.Errorf("%w: empty response from openai", domain.ErrProvider)
	}
	return resp.Choices[0].Message.Content, adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}, nil
}
