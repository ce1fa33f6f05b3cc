// Package metrics exposes Prometheus instruments for parsing, importing and
// stratum resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "borelog"

// Metrics groups the service's instruments. A nil *Metrics is valid and
// records nothing, so callers never need to guard it.
type Metrics struct {
	registry prometheus.Gatherer

	parses         *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	layersParsed   prometheus.Histogram
	imports        *prometheus.CounterVec
	importDuration prometheus.Histogram
	activeImports  prometheus.Gauge
	resolves       *prometheus.CounterVec
	probeFailures  *prometheus.CounterVec
}

// New registers the instruments with a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the instruments with reg. Tests pass an isolated
// registry.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "total",
			Help:      "Parse attempts by outcome (ok, missing_metadata, error).",
		}, []string{"outcome"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "duration_seconds",
			Help:      "Time spent parsing one export.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		layersParsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "layers",
			Help:      "Number of soil layers recovered per successful parse.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "total",
			Help:      "Import attempts by status (succeeded, failed, rejected).",
		}, []string{"status"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Time from slot acquisition to completion of one import.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		activeImports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "active",
			Help:      "Imports currently holding a slot.",
		}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stratum",
			Name:      "resolve_total",
			Help:      "Stratum resolutions by winning source, or none.",
		}, []string{"source"}),
		probeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stratum",
			Name:      "probe_failures_total",
			Help:      "Candidates skipped because they could not be read or decoded.",
		}, []string{"source"}),
	}
	reg.MustRegister(
		m.parses, m.parseDuration, m.layersParsed,
		m.imports, m.importDuration, m.activeImports,
		m.resolves, m.probeFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveParse records one parse attempt.
func (m *Metrics) ObserveParse(outcome string, layers int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(outcome).Inc()
	m.parseDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		m.layersParsed.Observe(float64(layers))
	}
}

// ImportStarted marks a slot as taken and returns a func that records the
// import's final status.
func (m *Metrics) ImportStarted() func(status string) {
	if m == nil {
		return func(string) {}
	}
	start := time.Now()
	m.activeImports.Inc()
	return func(status string) {
		m.activeImports.Dec()
		m.imports.WithLabelValues(status).Inc()
		m.importDuration.Observe(time.Since(start).Seconds())
	}
}

// ImportRejected counts an import turned away before taking a slot.
func (m *Metrics) ImportRejected() {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(StatusRejected).Inc()
}

// ObserveResolve records which source won a stratum resolution; source is
// empty when nothing was found.
func (m *Metrics) ObserveResolve(source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "none"
	}
	m.resolves.WithLabelValues(source).Inc()
}

// ObserveProbeFailure counts one skipped candidate.
func (m *Metrics) ObserveProbeFailure(source string) {
	if m == nil {
		return
	}
	m.probeFailures.WithLabelValues(source).Inc()
}

// Parse outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeMissingMetadata = "missing_metadata"
	OutcomeError           = "error"
)

// Import statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)
