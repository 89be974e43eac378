package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/ports/adapter"
)

var _ adapter.SummaryGenerator = (*GeminiGenerator)(nil)

// GeminiGenerator calls Gemini through the official SDK. A client is built
// per call because the API key travels with each request.
type GeminiGenerator struct {
	baseURL string
	model   string
	log     *zerolog.Logger
}

func NewGeminiGenerator(baseURL, model string, logger *zerolog.Logger) *GeminiGenerator {
	l := logger.With().Str("component", "GeminiGenerator").Logger()
	return &GeminiGenerator{baseURL: baseURL, model: modelOrDefault(model, defaultGeminiModel), log: &l}
}

const defaultGeminiModel = "gemini-2.5-flash"

func (g *GeminiGenerator) Provider() string { return "gemini" }
func (g *GeminiGenerator) Model() string    { return g.model }

// generationConfig: temperature 1, dangerous-content filter disabled.
func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](1),
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryDangerousContent,
				Threshold: genai.HarmBlockThresholdBlockNone,
			},
		},
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, apiKey, prompt string) (text string, u adapter.Usage, err error) {
	// the SDK can panic while decoding an error body that lacks "error"
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Str("model", g.model).Msg("gemini client panicked")
			text, u, err = "", adapter.Usage{}, fmt.Errorf("%w: gemini client panic: %v", domain.ErrProvider, r)
		}
	}()
	if strings.TrimSpace(apiKey) == "" {
		return "", adapter.Usage{}, domain.ErrInvalidAPIKey
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: g.baseURL,
		},
	})
	if err != nil {
		return "", adapter.Usage{}, ClassifyProviderError(err)
	}

	resp, err := c.Models.GenerateContent(ctx, g.model, genai.Text(prompt), generationConfig())
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("prompt failed")
		return "", adapter.Usage{}, ClassifyProviderError(err)
	}

	text = responseText(resp)
	if text == "" {
		return "", adapter.Usage{}, fmt.Errorf("%w: empty response from gemini", domain.ErrProvider)
	}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return text, u, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
