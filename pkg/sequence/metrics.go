package sequence

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	assignTotal    *prometheus.CounterVec
	malformedTotal *prometheus.CounterVec
	malformedRows  *prometheus.GaugeVec
	lockWait       *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		assignTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sequence",
			Name:      "assign_total",
			Help:      "Total number of identifier assignments by result.",
		}, []string{"prefix", "result"}),
		malformedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sequence",
			Name:      "malformed_fallback_total",
			Help:      "Assignments that fell back to counting because the partition held no well-formed identifier.",
		}, []string{"prefix", "partition"}),
		malformedRows: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sequence",
			Name:      "malformed_identifiers",
			Help:      "Malformed identifiers seen in the partition at its last assignment.",
		}, []string{"prefix", "partition"}),
		lockWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sequence",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for the partition lock.",
			Buckets: []float64{
				0.0005, 0.001, 0.005,
				0.01, 0.05,
				0.1, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"prefix"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
