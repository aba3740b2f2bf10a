// Package registry selects the analyzer for a schema's format.
package registry

import (
	"fmt"

	"github.com/wudi/schemadiff/internal/analyzer"
	"github.com/wudi/schemadiff/internal/analyzer/jsonschema"
	"github.com/wudi/schemadiff/internal/analyzer/openapi"
	"github.com/wudi/schemadiff/internal/analyzer/protobuf"
	"github.com/wudi/schemadiff/internal/analyzer/sql"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// Registry holds one analyzer per supported format. It is safe for
// concurrent use.
type Registry struct {
	analyzers map[schema.Format]analyzer.Analyzer
}

// New builds a registry whose analyzers all share opts.
func New(opts ...analyzer.Option) *Registry {
	return &Registry{
		analyzers: map[schema.Format]analyzer.Analyzer{
			schema.FormatJSONSchema: jsonschema.New(opts...),
			schema.FormatOpenAPI:    openapi.New(opts...),
			schema.FormatProtobuf:   protobuf.New(opts...),
			schema.FormatSQL:        sql.New(opts...),
		},
	}
}

// For returns the analyzer registered for format.
func (r *Registry) For(format schema.Format) (analyzer.Analyzer, error) {
	a, ok := r.analyzers[format]
	if !ok {
		return nil, errors.New(errors.KindInvalidFormat, fmt.Sprintf("no analyzer for format %q", format))
	}
	return a, nil
}

// Compare analyzes compatibility between two schemas of the same format.
func (r *Registry) Compare(old, new *schema.Schema) (*report.CompatibilityReport, error) {
	a, err := r.pick(old, new)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeCompatibility(old, new)
}

// Migrate plans the move between two schemas of the same format.
func (r *Registry) Migrate(old, new *schema.Schema) (*migration.Plan, error) {
	a, err := r.pick(old, new)
	if err != nil {
		return nil, err
	}
	return a.GenerateMigrationPath(old, new)
}

// Validate classifies changes with the rules of format.
func (r *Registry) Validate(format schema.Format, changes []change.Change) (*report.ValidationResult, error) {
	a, err := r.For(format)
	if err != nil {
		return nil, err
	}
	return a.ValidateChanges(changes), nil
}

func (r *Registry) pick(old, new *schema.Schema) (analyzer.Analyzer, error) {
	if old == nil || new == nil {
		return nil, errors.New(errors.KindComparison, "both schemas are required")
	}
	if old.Format() != new.Format() {
		return nil, errors.New(errors.KindInvalidFormat,
			fmt.Sprintf("cannot compare %s with %s", old.Format(), new.Format()))
	}
	return r.For(old.Format())
}
