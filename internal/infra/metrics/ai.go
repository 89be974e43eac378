package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiTokensOut,
		aiPromptTokensEstimated,
		aiCallsLatencyMs,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens reported per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens reported per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiPromptTokensEstimated = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_prompt_tokens_estimated",
			Help:    "Locally estimated prompt size in tokens, before the provider call.",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
		},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 32000, 64000, 128000},
		},
		[]string{"provider", "model", "success"},
	)
)

func ObserveGeneration(provider, model string, tokensIn, tokensOut, latencyMs int, success bool) {
	lbl := []string{norm(provider), norm(model)}
	aiTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObservePromptEstimate(tokens int) {
	aiPromptTokensEstimated.Observe(float64(tokens))
}
