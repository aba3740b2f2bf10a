// Package sql compares CREATE TABLE statements table by table and column by
// column.
package sql

import (
	"fmt"
	"strings"

	"github.com/wudi/schemadiff/internal/analyzer"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// CodePrefix prefixes every SQL validation code.
const CodePrefix = "SQL"

// Weights are the score deductions per change type.
var Weights = report.Weights{Addition: 5, Removal: 15, Modification: 10, Rename: 8}

const tablePrefix = "table/"

// New returns the SQL DDL analyzer.
func New(opts ...analyzer.Option) *analyzer.Engine[[]Table] {
	return analyzer.NewEngine[[]Table](schema.FormatSQL, Strategy{}, analyzer.Rules{
		Weights:  Weights,
		Classify: Classify,
		Issues:   true,
		Stepper:  Step,
	}, opts...)
}

// Classify flags removals as SQL001 and type changes as SQL002.
func Classify(c change.Change) (report.ValidationError, bool) {
	switch c.Type {
	case change.Removal:
		return report.ValidationError{
			Message:  "Breaking change: " + c.Description,
			Location: c.Location,
			Code:     report.CodeFor(CodePrefix, report.SeverityError),
		}, true
	case change.Modification:
		if strings.Contains(c.Location, "type") {
			return report.ValidationError{
				Message:  "Potential data loss: " + c.Description,
				Location: c.Location,
				Code:     report.CodeFor(CodePrefix, report.SeverityWarning),
			}, true
		}
	}
	return report.ValidationError{}, false
}

// Strategy parses and diffs DDL scripts.
type Strategy struct{}

// Diff matches tables by name, then columns by name. Column constraints are
// compared by kind only, so a changed default value goes unreported.
func (Strategy) Diff(old, new []Table) []change.Change {
	d := &differ{}
	change.MatchByKey(old, new, tableName, change.Visitor[Table]{
		Removed: func(t Table) {
			d.add(change.Removal, tablePrefix+t.Name, fmt.Sprintf("Table '%s' was removed", t.Name),
				map[string]string{"table": t.Name})
		},
		Added: func(t Table) {
			d.add(change.Addition, tablePrefix+t.Name, fmt.Sprintf("New table '%s' was added", t.Name),
				map[string]string{"table": t.Name})
		},
		Matched: func(o, n Table) {
			d.columns(o.Name, o.Columns, n.Columns)
		},
	})
	return d.changes
}

type differ struct {
	changes []change.Change
}

func (d *differ) add(t change.Type, location, description string, metadata map[string]string) {
	d.changes = append(d.changes, change.New(t, location, description, metadata))
}

func (d *differ) columns(table string, old, new []Column) {
	meta := func(c Column) map[string]string {
		return map[string]string{"table": table, "column": c.Name, "type": c.Type}
	}

	change.MatchByKey(old, new, columnName, change.Visitor[Column]{
		Removed: func(c Column) {
			d.add(change.Removal, table+"/"+c.Name, fmt.Sprintf("Column '%s' was removed", c.Name), meta(c))
		},
		Added: func(c Column) {
			d.add(change.Addition, table+"/"+c.Name, fmt.Sprintf("New column '%s' was added", c.Name), meta(c))
		},
		Matched: func(o, n Column) {
			if o.Type != n.Type {
				d.add(change.Modification, table+"/"+o.Name+"/type",
					fmt.Sprintf("Column '%s' type changed from %s to %s", o.Name, o.Type, n.Type),
					map[string]string{
						"table":    table,
						"column":   o.Name,
						"old_type": o.Type,
						"new_type": n.Type,
					})
			}
			d.constraints(table, o.Name, o.Constraints, n.Constraints)
		},
	})
}

func (d *differ) constraints(table, column string, old, new []Constraint) {
	location := table + "/" + column + "/constraints"
	meta := func(c Constraint) map[string]string {
		return map[string]string{"table": table, "column": column, "constraint": c.String()}
	}

	change.MatchByKey(old, new, Constraint.key, change.Visitor[Constraint]{
		Removed: func(c Constraint) {
			d.add(change.Removal, location,
				fmt.Sprintf("Constraint removed from column '%s': %s", column, c), meta(c))
		},
		Added: func(c Constraint) {
			d.add(change.Addition, location,
				fmt.Sprintf("New constraint added to column '%s': %s", column, c), meta(c))
		},
	})
}

func tableName(t Table) string   { return t.Name }
func columnName(c Column) string { return c.Name }
