package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
)

// ScoreBuckets cover the 0-100 range used by both scores.
var ScoreBuckets = []float64{0, 20, 40, 60, 80, 90, 95, 100}

// DurationBuckets are comparison duration buckets in seconds
var DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}

// Collector tracks comparison metrics on its own Prometheus registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	comparisons *prometheus.CounterVec
	changes     *prometheus.CounterVec
	parseErrors *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	impacts     *prometheus.HistogramVec
	durations   *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemadiff_comparisons_total",
			Help: "Compatibility analyses by format and verdict.",
		}, []string{"format", "result"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemadiff_changes_total",
			Help: "Detected schema changes by format and change type.",
		}, []string{"format", "type"}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemadiff_parse_errors_total",
			Help: "Schemas that failed to parse, by format.",
		}, []string{"format"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemadiff_compatibility_score",
			Help:    "Distribution of compatibility scores.",
			Buckets: ScoreBuckets,
		}, []string{"format"}),
		impacts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemadiff_migration_impact",
			Help:    "Distribution of migration impact scores.",
			Buckets: ScoreBuckets,
		}, []string{"format"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemadiff_comparison_duration_seconds",
			Help:    "Time spent parsing and diffing a schema pair.",
			Buckets: DurationBuckets,
		}, []string{"format"}),
	}
	c.registry.MustRegister(c.comparisons, c.changes, c.parseErrors, c.scores, c.impacts, c.durations)
	return c
}

// ObserveReport records a finished compatibility analysis.
func (c *Collector) ObserveReport(format string, r *report.CompatibilityReport, elapsed time.Duration) {
	if c == nil || r == nil {
		return
	}
	result := "incompatible"
	if r.IsCompatible {
		result = "compatible"
	}
	c.comparisons.WithLabelValues(format, result).Inc()
	for _, ch := range r.Changes {
		c.changes.WithLabelValues(format, string(ch.Type)).Inc()
	}
	c.scores.WithLabelValues(format).Observe(float64(r.Score))
	c.durations.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObservePlan records a generated migration plan.
func (c *Collector) ObservePlan(format string, p *migration.Plan, elapsed time.Duration) {
	if c == nil || p == nil {
		return
	}
	c.impacts.WithLabelValues(format).Observe(float64(p.ImpactScore))
	c.durations.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveParseError records a schema that could not be parsed.
func (c *Collector) ObserveParseError(format string) {
	if c == nil {
		return
	}
	c.parseErrors.WithLabelValues(format).Inc()
}

// Registry exposes the underlying registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
