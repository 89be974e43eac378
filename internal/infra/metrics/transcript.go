package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(transcriptFetchTotal) }

var transcriptFetchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "transcript_fetch_total",
		Help: "Transcript fetches by HTTP status code ('network' when no response).",
	},
	[]string{"code"},
)

func IncTranscriptFetch(statusCode int) {
	code := "network"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	transcriptFetchTotal.WithLabelValues(code).Inc()
}
