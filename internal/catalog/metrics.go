package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments catalog requests. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Histogram
}

// NewMetrics creates the catalog collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goreef",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog record requests by outcome (ok, http_error, transport_error, decode_error).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goreef",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Catalog request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goreef",
			Subsystem: "catalog",
			Name:      "rows_returned",
			Help:      "Rows returned per successful catalog request.",
			Buckets:   []float64{0, 1, 10, 50, 100, 200, 500},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.rows)
	}
	return m
}

const (
	outcomeOK             = "ok"
	outcomeHTTPError      = "http_error"
	outcomeTransportError = "transport_error"
	outcomeDecodeError    = "decode_error"
)

func (m *Metrics) observe(outcome string, elapsed time.Duration, rows int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome == outcomeOK {
		m.rows.Observe(float64(rows))
	}
}
