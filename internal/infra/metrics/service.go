package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(serviceInfo, historyPoolConns) }

var (
	serviceInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lecture_summary_info",
			Help: "Constant 1, labeled with version, go runtime and the configured providers.",
		},
		[]string{"version", "go_version", "ai_provider", "history_backend"},
	)

	historyPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "history_db_pool_conns",
			Help: "Postgres history pool connections by state.",
		},
		[]string{"state"}, // 'total', 'idle', 'acquired'
	)
)

func SetServiceInfo(version, aiProvider, historyBackend string) {
	serviceInfo.WithLabelValues(version, runtime.Version(), norm(aiProvider), norm(historyBackend)).Set(1)
}

func SetHistoryPoolConns(total, idle, acquired int32) {
	historyPoolConns.WithLabelValues("total").Set(float64(total))
	historyPoolConns.WithLabelValues("idle").Set(float64(idle))
	historyPoolConns.WithLabelValues("acquired").Set(float64(acquired))
}
