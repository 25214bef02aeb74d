package frozencheck

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusFrozenCheckRejected *prometheus.CounterVec
	prometheusMetricsInitOnce     sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusFrozenCheckRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frozentxo",
			Subsystem: "check",
			Name:      "rejected",
			Help:      "Number of spends of frozen TXOs rejected, by check mode and enforcement level",
		},
		[]string{"mode", "blacklist"},
	)
}
