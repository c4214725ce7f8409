package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EstimateLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homeval",
			Subsystem: "engine",
			Name:      "latency_seconds",
			Help:      "Latency of engine endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EstimateErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homeval",
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Errors by engine endpoint and kind",
		},
		[]string{"endpoint", "kind"},
	)

	SuppressedEstimates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homeval",
			Subsystem: "engine",
			Name:      "suppressed_estimates_total",
			Help:      "Estimates returned without a displayable price",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EstimateLatency, EstimateErrors, SuppressedEstimates)
	})
}
