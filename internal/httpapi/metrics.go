package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the embedding server's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	embedRequests   *prometheus.CounterVec
	embedTexts      prometheus.Counter
	backendDuration prometheus.Histogram
}

// NewMetrics creates the collectors, registered on a fresh registry together
// with the Go and process collectors.
func NewMetrics(model string) *Metrics {
	labels := prometheus.Labels{"model": model}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		embedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "faq_embed_requests_total",
				Help:        "Embed requests by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		embedTexts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "faq_embed_texts_total",
			Help:        "Texts embedded successfully",
			ConstLabels: labels,
		}),
		backendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "faq_embed_backend_duration_seconds",
			Help:        "Time spent in the embedding backend per request",
			ConstLabels: labels,
			Buckets:     []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}
	m.registry.MustRegister(
		m.embedRequests,
		m.embedTexts,
		m.backendDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeEmbed(outcome string, texts int) {
	if m == nil {
		return
	}
	m.embedRequests.WithLabelValues(outcome).Inc()
	if texts > 0 {
		m.embedTexts.Add(float64(texts))
	}
}

func (m *Metrics) startEmbed() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.backendDuration.Observe(time.Since(start).Seconds())
	}
}
