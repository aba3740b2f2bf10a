// Package schemadiff compares versions of JSON Schema, OpenAPI, Protobuf and
// SQL DDL documents, scores their backward compatibility and plans the
// migration between them.
package schemadiff

import (
	"sync"

	"github.com/wudi/schemadiff/internal/analyzer"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/registry"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// Schema is one version of a schema document.
type Schema = schema.Schema

// Format identifies a schema dialect.
type Format = schema.Format

const (
	FormatJSONSchema = schema.FormatJSONSchema
	FormatOpenAPI    = schema.FormatOpenAPI
	FormatProtobuf   = schema.FormatProtobuf
	FormatSQL        = schema.FormatSQL
)

// Change is one structural difference between two schema versions.
type Change = change.Change

// ChangeType is the kind of a Change.
type ChangeType = change.Type

const (
	Addition     = change.Addition
	Removal      = change.Removal
	Modification = change.Modification
	Rename       = change.Rename
)

type (
	CompatibilityReport = report.CompatibilityReport
	Issue               = report.Issue
	Severity            = report.Severity
	ValidationResult    = report.ValidationResult
	ValidationError     = report.ValidationError
	Plan                = migration.Plan
)

// Analyzer compares schemas of a single format.
type Analyzer = analyzer.Analyzer

// Option configures the analyzers built by New.
type Option = analyzer.Option

var (
	WithLogger  = analyzer.WithLogger
	WithMetrics = analyzer.WithMetrics
	WithCache   = analyzer.WithCache
)

// Error kinds, for use with errors.Is.
var (
	ErrParse         = errors.ErrParse
	ErrComparison    = errors.ErrComparison
	ErrInvalidFormat = errors.ErrInvalidFormat
	ErrIO            = errors.ErrIO
	ErrJSON          = errors.ErrJSON
	ErrProtobuf      = errors.ErrProtobuf
)

// Error is the error type returned by every operation.
type Error = errors.SchemaDiffError

// NewSchema creates a schema. The version is an opaque label.
func NewSchema(format Format, content, version string) *Schema {
	return schema.New(format, content, version)
}

// ParseFormat resolves a format name or alias such as "proto" or "sql".
func ParseFormat(name string) (Format, error) {
	return schema.ParseFormat(name)
}

// Differ dispatches comparisons to the analyzer for each format.
type Differ struct {
	reg *registry.Registry
}

// New creates a Differ whose analyzers share opts.
func New(opts ...Option) *Differ {
	return &Differ{reg: registry.New(opts...)}
}

// Compare reports the differences between old and new, which must share a
// format.
func (d *Differ) Compare(old, new *Schema) (*CompatibilityReport, error) {
	return d.reg.Compare(old, new)
}

// Migrate builds the migration plan from old to new.
func (d *Differ) Migrate(old, new *Schema) (*Plan, error) {
	return d.reg.Migrate(old, new)
}

// Validate checks changes against the rules of format.
func (d *Differ) Validate(format Format, changes []Change) (*ValidationResult, error) {
	return d.reg.Validate(format, changes)
}

// AnalyzerFor returns the analyzer for format.
func (d *Differ) AnalyzerFor(format Format) (Analyzer, error) {
	return d.reg.For(format)
}

var defaultDiffer = sync.OnceValue(func() *Differ { return New() })

// Compare compares two schemas with the default analyzers.
func Compare(old, new *Schema) (*CompatibilityReport, error) {
	return defaultDiffer().Compare(old, new)
}

// Migrate plans a migration with the default analyzers.
func Migrate(old, new *Schema) (*Plan, error) {
	return defaultDiffer().Migrate(old, new)
}

// Validate validates changes with the default analyzer for format.
func Validate(format Format, changes []Change) (*ValidationResult, error) {
	return defaultDiffer().Validate(format, changes)
}

// AnalyzerFor returns the default analyzer for format.
func AnalyzerFor(format Format) (Analyzer, error) {
	return defaultDiffer().AnalyzerFor(format)
}
