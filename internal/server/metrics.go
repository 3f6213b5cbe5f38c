package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
)

const metricsNamespace = "a11yfix"

// metrics holds the service collectors on a private registry so that
// several servers can coexist in one process (tests).
type metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fixes     *prometheus.CounterVec
	bodyBytes prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "requests_total",
		Help:      "Filter requests by hook and HTTP status",
	}, []string{"hook", "status"})

	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "transform_duration_seconds",
		Help:      "Time spent filtering a document",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"hook"})

	m.fixes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "fixes_total",
		Help:      "Accessibility fixes applied, by pass",
	}, []string{"kind"}) // kind: iframes, tables, headings, tags

	m.bodyBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "request_body_bytes",
		Help:      "Size of filtered documents",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B to 4MB
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: metricsNamespace}),
		m.requests,
		m.duration,
		m.fixes,
		m.bodyBytes,
	)
	return m
}

// observe is installed as the cleaner observer.
func (m *metrics) observe(result *a11y.Result) {
	if result.Stats == nil {
		return
	}
	for _, p := range result.Stats.Phases {
		if p.Changes > 0 {
			m.fixes.WithLabelValues(p.Name).Add(float64(p.Changes))
		}
	}
}
