package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(historyArchivedTotal, historyEntries) }

var (
	historyArchivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_archived_total",
			Help: "Archive attempts for finished summaries.",
		},
		[]string{"result"}, // 'stored', 'duplicate', 'empty', 'failed'
	)

	historyEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "history_entries",
		Help: "Entries currently kept in the history archive.",
	})
)

func IncHistoryArchive(result string) {
	historyArchivedTotal.WithLabelValues(norm(result)).Inc()
}

func SetHistoryEntries(n int) { historyEntries.Set(float64(n)) }
