// Package analyzer defines the contract shared by every schema dialect and
// the generic engine that implements it.
package analyzer

import (
	"time"

	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/metrics"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
	"go.uber.org/zap"
)

// Analyzer compares two versions of a schema written in one dialect.
// Implementations are safe for concurrent use.
type Analyzer interface {
	Format() schema.Format
	AnalyzeCompatibility(old, new *schema.Schema) (*report.CompatibilityReport, error)
	GenerateMigrationPath(old, new *schema.Schema) (*migration.Plan, error)
	ValidateChanges(changes []change.Change) *report.ValidationResult
}

// Strategy is the dialect-specific half of an Engine: it parses content into
// a document of type D and diffs two documents into a change sequence.
// Diff must not mutate its arguments.
type Strategy[D any] interface {
	Parse(content string) (D, error)
	Diff(old, new D) []change.Change
}

// MetadataStrategy is implemented by strategies that attach metadata to
// compatibility reports.
type MetadataStrategy[D any] interface {
	Metadata(old, new D) map[string]string
}

// Classifier maps a change to a validation error. It returns false for
// changes that need no attention.
type Classifier func(change.Change) (report.ValidationError, bool)

// Rules carry a dialect's scoring and classification policy.
type Rules struct {
	Weights report.Weights
	// Deduct overrides Weights when a dialect scores beyond change type.
	Deduct   func(change.Change) int
	Classify Classifier
	// Issues derives report issues from Classify.
	Issues  bool
	Stepper migration.Stepper
}

func (r Rules) deduct(c change.Change) int {
	if r.Deduct != nil {
		return r.Deduct(c)
	}
	return r.Weights.Deduct(c)
}

type options struct {
	logger    *zap.Logger
	metrics   *metrics.Collector
	cacheSize int
	cacheTTL  time.Duration
}

// Option configures an engine.
type Option func(*options)

// WithLogger sets the logger used for per-comparison debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records every comparison on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithCache keeps up to size parsed documents for ttl, keyed by content.
func WithCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}
