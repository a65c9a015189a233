package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "samaajseva"

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	NeedsCreated      prometheus.Counter
	Commitments       *prometheus.CounterVec
	QuantityCommitted prometheus.Counter
	Classifications   *prometheus.CounterVec
	ClassifierLatency prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NeedsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "needs_created_total",
			Help:      "Needs created in the ledger.",
		}),
		Commitments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commitments_total",
			Help:      "Commit calls by result (new, repeat, missing, rejected).",
		}, []string{"result"}),
		QuantityCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_committed_total",
			Help:      "Sum of all committed quantities.",
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Urgency classifications by outcome (classified, fallback, skipped).",
		}, []string{"outcome"}),
		ClassifierLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classifier_request_seconds",
			Help:      "Round trip time of urgency classifier calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.NeedsCreated,
		m.Commitments,
		m.QuantityCommitted,
		m.Classifications,
		m.ClassifierLatency,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
