package broker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	pagesOpen prometheus.Gauge
}

// NewMetrics registers the broker collectors on reg. A nil reg keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pneuma",
			Subsystem: "broker",
			Name:      "requests_total",
			Help:      "Bridge requests handled by the broker, by operation and outcome.",
		}, []string{"op", "outcome"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pneuma",
			Subsystem: "broker",
			Name:      "request_duration_seconds",
			Help:      "Time spent by the engine serving a bridge request.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"op"}),
		pagesOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "pneuma",
			Subsystem: "broker",
			Name:      "pages_open",
			Help:      "Pages currently open in the engine.",
		}),
	}
}

func (m *Metrics) observe(op op, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(op.String(), outcome).Inc()
	m.durations.WithLabelValues(op.String()).Observe(time.Since(start).Seconds())
}
