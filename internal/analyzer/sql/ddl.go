package sql

import (
	"context"
	"errors"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"
)

// Table is a parsed CREATE TABLE statement.
type Table struct {
	Name    string
	Columns []Column
}

// Column is one column definition. Type is the normalized declared type,
// without constraints.
type Column struct {
	Name        string
	Type        string
	Constraints []Constraint
}

// ConstraintKind is the kind of a column-level constraint.
type ConstraintKind string

const (
	NotNull ConstraintKind = "not_null"
	Default ConstraintKind = "default"
	Unique  ConstraintKind = "unique"
)

// Constraint is a column-level constraint. Primary is set for a unique
// constraint declared as PRIMARY KEY. Value holds the default expression.
type Constraint struct {
	Kind    ConstraintKind
	Primary bool
	Value   string
}

// key identifies a constraint for matching. Default values do not take part.
func (c Constraint) key() string {
	if c.Kind == Unique && c.Primary {
		return string(Unique) + ":primary"
	}
	return string(c.Kind)
}

func (c Constraint) String() string {
	switch c.Kind {
	case NotNull:
		return "NOT NULL"
	case Default:
		return "DEFAULT " + c.Value
	case Unique:
		if c.Primary {
			return "PRIMARY KEY"
		}
		return "UNIQUE"
	}
	return string(c.Kind)
}

// Column key options as encoded by the parser in ColumnType.KeyOpt.
const (
	colKeyNone = iota
	colKeyPrimary
	colKeySpatialKey
	colKeyUnique
	colKeyUniqueKey
)

// Parse reads every statement in content and keeps the CREATE TABLE ones.
func (Strategy) Parse(content string) ([]Table, error) {
	var tables []Table

	rest := content
	for {
		rest = strings.TrimLeft(rest, " \t\r\n;")
		if rest == "" {
			return tables, nil
		}

		stmt, next, err := parseStatement(rest)
		if errors.Is(err, sqlparser.ErrEmpty) {
			return tables, nil
		}
		if err != nil {
			return nil, err
		}

		if ddl, ok := stmt.(*sqlparser.DDL); ok && ddl.Action == sqlparser.CreateStr && ddl.TableSpec != nil {
			tables = append(tables, tableFromDDL(ddl))
		}

		if next <= 0 || next >= len(rest) {
			return tables, nil
		}
		rest = rest[next:]
	}
}

// parseStatement parses the first statement of sql in MySQL mode, then
// retries with ANSI quoting so "quoted" identifiers are accepted. MySQL mode
// wins when both succeed, keeping DEFAULT "x" a string literal.
func parseStatement(sql string) (sqlparser.Statement, int, error) {
	ctx := context.Background()
	stmt, next, err := sqlparser.ParseOneWithOptions(ctx, sql, sqlparser.ParserOptions{})
	if err == nil || errors.Is(err, sqlparser.ErrEmpty) {
		return stmt, next, err
	}
	ansi, ansiNext, ansiErr := sqlparser.ParseOneWithOptions(ctx, sql, sqlparser.ParserOptions{AnsiQuotes: true})
	if ansiErr != nil {
		return nil, 0, err
	}
	return ansi, ansiNext, nil
}

func tableFromDDL(ddl *sqlparser.DDL) Table {
	t := Table{Name: ddl.Table.Name.String()}
	for _, col := range ddl.TableSpec.Columns {
		t.Columns = append(t.Columns, Column{
			Name:        col.Name.String(),
			Type:        columnType(col.Type),
			Constraints: columnConstraints(col.Type),
		})
	}
	return t
}

func columnType(ct sqlparser.ColumnType) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(ct.Type))
	if ct.Length != nil {
		b.WriteString("(")
		b.Write(ct.Length.Val)
		if ct.Scale != nil {
			b.WriteString(",")
			b.Write(ct.Scale.Val)
		}
		b.WriteString(")")
	}
	if bool(ct.Unsigned) {
		b.WriteString(" unsigned")
	}
	return b.String()
}

// columnConstraints returns the constraints in a fixed order: not null,
// default, unique.
func columnConstraints(ct sqlparser.ColumnType) []Constraint {
	var out []Constraint
	if bool(ct.NotNull) {
		out = append(out, Constraint{Kind: NotNull})
	}
	if ct.Default != nil {
		out = append(out, Constraint{Kind: Default, Value: sqlparser.String(ct.Default)})
	}
	switch int(ct.KeyOpt) {
	case colKeyPrimary:
		out = append(out, Constraint{Kind: Unique, Primary: true})
	case colKeyUnique, colKeyUniqueKey:
		out = append(out, Constraint{Kind: Unique})
	}
	return out
}
