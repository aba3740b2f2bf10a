package analyzer

import (
	"fmt"
	"time"

	"github.com/wudi/schemadiff/internal/cache"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/metrics"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
	"go.uber.org/zap"
)

// Engine implements Analyzer for documents of type D.
type Engine[D any] struct {
	format   schema.Format
	strategy Strategy[D]
	rules    Rules
	logger   *zap.Logger
	metrics  *metrics.Collector
	cache    *cache.Documents[D]
}

// NewEngine builds an analyzer from a dialect strategy and its rules.
func NewEngine[D any](format schema.Format, strategy Strategy[D], rules Rules, opts ...Option) *Engine[D] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	e := &Engine[D]{
		format:   format,
		strategy: strategy,
		rules:    rules,
		logger:   o.logger.With(zap.String("format", string(format))),
		metrics:  o.metrics,
	}
	if o.cacheSize > 0 {
		e.cache = cache.NewDocuments[D](o.cacheSize, o.cacheTTL)
	}
	return e
}

func (e *Engine[D]) Format() schema.Format {
	return e.format
}

// AnalyzeCompatibility diffs the two schemas and scores the result.
func (e *Engine[D]) AnalyzeCompatibility(old, new *schema.Schema) (*report.CompatibilityReport, error) {
	start := time.Now()

	oldDoc, newDoc, err := e.parsePair(old, new)
	if err != nil {
		return nil, err
	}
	changes := e.strategy.Diff(oldDoc, newDoc)

	var meta map[string]string
	if ms, ok := e.strategy.(MetadataStrategy[D]); ok {
		meta = ms.Metadata(oldDoc, newDoc)
	}

	var issues []report.Issue
	if e.rules.Issues {
		issues = report.IssuesFrom(e.classify(changes))
	}

	r := report.NewReport(changes, report.Score(changes, e.rules.deduct), issues, meta)
	elapsed := time.Since(start)
	e.metrics.ObserveReport(string(e.format), r, elapsed)
	e.logger.Debug("compatibility analyzed",
		zap.String("old_version", old.Version()),
		zap.String("new_version", new.Version()),
		zap.Int("changes", len(r.Changes)),
		zap.Uint8("score", r.Score),
		zap.Bool("compatible", r.IsCompatible),
		zap.Duration("elapsed", elapsed),
	)
	return r, nil
}

// GenerateMigrationPath runs the same detection as AnalyzeCompatibility and
// packages the changes as a plan.
func (e *Engine[D]) GenerateMigrationPath(old, new *schema.Schema) (*migration.Plan, error) {
	start := time.Now()

	changes, err := e.Diff(old, new)
	if err != nil {
		return nil, err
	}

	p := migration.NewPlan(old.Version(), new.Version(), changes, e.rules.Stepper)
	elapsed := time.Since(start)
	e.metrics.ObservePlan(string(e.format), p, elapsed)
	e.logger.Debug("migration planned",
		zap.String("source_version", p.SourceVersion),
		zap.String("target_version", p.TargetVersion),
		zap.Int("changes", len(p.Changes)),
		zap.Uint8("impact", p.ImpactScore),
		zap.Bool("breaking", p.IsBreaking),
	)
	return p, nil
}

// ValidateChanges classifies an existing change sequence without reparsing.
func (e *Engine[D]) ValidateChanges(changes []change.Change) *report.ValidationResult {
	return report.NewValidationResult(e.classify(changes), change.Count(changes).Context())
}

// Diff returns the raw change sequence between two schemas.
func (e *Engine[D]) Diff(old, new *schema.Schema) ([]change.Change, error) {
	oldDoc, newDoc, err := e.parsePair(old, new)
	if err != nil {
		return nil, err
	}
	return e.strategy.Diff(oldDoc, newDoc), nil
}

func (e *Engine[D]) classify(changes []change.Change) []report.ValidationError {
	if e.rules.Classify == nil {
		return nil
	}
	var errs []report.ValidationError
	for _, c := range changes {
		if ve, ok := e.rules.Classify(c); ok {
			errs = append(errs, ve)
		}
	}
	return errs
}

func (e *Engine[D]) parsePair(old, new *schema.Schema) (D, D, error) {
	var zero D
	if old == nil || new == nil {
		return zero, zero, errors.New(errors.KindComparison, "both schemas are required").WithFormat(string(e.format))
	}
	oldDoc, err := e.parse("old", old)
	if err != nil {
		return zero, zero, err
	}
	newDoc, err := e.parse("new", new)
	if err != nil {
		return zero, zero, err
	}
	return oldDoc, newDoc, nil
}

func (e *Engine[D]) parse(side string, s *schema.Schema) (D, error) {
	var (
		doc D
		err error
	)
	if e.cache != nil {
		doc, err = e.cache.GetOrParse(string(e.format), s.Content(), e.strategy.Parse)
	} else {
		doc, err = e.strategy.Parse(s.Content())
	}
	if err != nil {
		e.metrics.ObserveParseError(string(e.format))
		e.logger.Debug("schema parse failed", zap.String("side", side), zap.Error(err))
		return doc, errors.Parse(string(e.format), fmt.Errorf("%s schema: %w", side, err))
	}
	return doc, nil
}

// CacheStats reports document cache usage; ok is false when caching is off.
func (e *Engine[D]) CacheStats() (stats cache.Stats, ok bool) {
	if e.cache == nil {
		return cache.Stats{}, false
	}
	return e.cache.Stats(), true
}
