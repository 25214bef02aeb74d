package frozentxo

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusFrozenTXOFreeze         *prometheus.CounterVec
	prometheusFrozenTXOUnfreeze       *prometheus.CounterVec
	prometheusFrozenTXOWhitelist      *prometheus.CounterVec
	prometheusFrozenTXOCleanExpired   prometheus.Histogram
	prometheusFrozenTXOMaxStopHeight  prometheus.Gauge
	prometheusFrozenTXOMaxWhitelisted prometheus.Gauge
)

var prometheusMetricsInitOnce sync.Once

var metricsBucketsMilliLongSeconds = []float64{
	64e-3, 128e-3, 256e-3, 512e-3, 1024e-3, 2048e-3, 4096e-3, 8192e-3, 16384e-3, 32768e-3, 65536e-3, 131072e-3,
}

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusFrozenTXOFreeze = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frozentxo",
			Subsystem: "registry",
			Name:      "freeze",
			Help:      "Number of freeze requests by blacklist and result",
		},
		[]string{"blacklist", "result"},
	)

	prometheusFrozenTXOUnfreeze = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frozentxo",
			Subsystem: "registry",
			Name:      "unfreeze",
			Help:      "Number of TXOs removed from the registry by operation",
		},
		[]string{"operation"},
	)

	prometheusFrozenTXOWhitelist = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frozentxo",
			Subsystem: "registry",
			Name:      "whitelist",
			Help:      "Number of confiscation transaction whitelist requests by result",
		},
		[]string{"result"},
	)

	prometheusFrozenTXOCleanExpired = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "frozentxo",
			Subsystem: "registry",
			Name:      "clean_expired",
			Help:      "Histogram of the duration of expired record cleanups",
			Buckets:   metricsBucketsMilliLongSeconds,
		},
	)

	prometheusFrozenTXOMaxStopHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "frozentxo",
			Subsystem: "registry",
			Name:      "max_frozen_stop_height",
			Help:      "Current max frozen stop height watermark",
		},
	)

	prometheusFrozenTXOMaxWhitelisted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "frozentxo",
			Subsystem: "registry",
			Name:      "max_whitelist_enforce_height",
			Help:      "Current max whitelist enforce height watermark",
		},
	)
}
