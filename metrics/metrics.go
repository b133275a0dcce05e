// Package metrics exposes Prometheus counters for the scraper and extraction flows.
// All record methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookscraper"

// Extraction outcomes
const (
	OutcomeOK                 = "ok"
	OutcomeInsufficientTokens = "insufficient_tokens"
	OutcomeModelError         = "model_error"
	OutcomeCanceled           = "canceled" // deadline exceeded or client gone
	OutcomeError              = "error"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	PagesFetched      *prometheus.CounterVec
	BooksScraped      prometheus.Counter
	Extractions       *prometheus.CounterVec
	InferenceDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration against the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_pages_fetched_total",
			Help:      "Catalog pages fetched, by HTTP status class (2xx, 4xx, 5xx, error)",
		}, []string{"status"}),
		BooksScraped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_books_scraped_total",
			Help:      "Book records extracted from catalog pages",
		}),
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Attribute extraction requests by outcome",
		}, []string{"outcome"}),
		InferenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Round-trip time of masked-language model calls",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		gatherer: reg,
	}
}

// Handler returns the /metrics HTTP handler for the registry the metrics were created with
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordPage counts a fetched page. statusCode 0 means the page was unreachable.
func (m *Metrics) RecordPage(statusCode int) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(StatusClass(statusCode)).Inc()
}

// RecordBooks adds n scraped books
func (m *Metrics) RecordBooks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BooksScraped.Add(float64(n))
}

// RecordExtraction counts an extraction request outcome
func (m *Metrics) RecordExtraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

// ObserveInference records one model call duration
func (m *Metrics) ObserveInference(d time.Duration) {
	if m == nil {
		return
	}
	m.InferenceDuration.Observe(d.Seconds())
}

// StatusClass buckets an HTTP status code as "2xx", "4xx", ... or "error" for 0
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}
