package arbiter

import "github.com/prometheus/client_golang/prometheus"

var (
	switchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "laned",
			Subsystem: "arbiter",
			Name:      "switches_total",
			Help:      "Total lane switch attempts by outcome",
		},
		[]string{"outcome"},
	)

	switchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "laned",
			Subsystem: "arbiter",
			Name:      "switch_duration_seconds",
			Help:      "Duration of successful lane switches in seconds",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 300},
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "laned",
			Subsystem: "arbiter",
			Name:      "queue_depth",
			Help:      "Requests waiting for their lane to become ready",
		},
	)

	queuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "laned",
			Subsystem: "arbiter",
			Name:      "queued_total",
			Help:      "Total requests that took the queued path",
		},
	)

	fastpathTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "laned",
			Subsystem: "arbiter",
			Name:      "fastpath_total",
			Help:      "Total requests served inline without queueing",
		},
	)

	queueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "laned",
			Subsystem: "arbiter",
			Name:      "queue_wait_seconds",
			Help:      "Time queued requests waited before execution",
			Buckets:   []float64{0.01, 0.1, 1, 5, 10, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(switchesTotal, switchDuration, queueDepth, queuedTotal, fastpathTotal, queueWait)
}
