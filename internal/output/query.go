package output

import (
	"github.com/jmespath/go-jmespath"
	"github.com/wudi/schemadiff/internal/errors"
)

// Query is a compiled JMESPath expression applied to output values.
type Query struct {
	expression string
	compiled   *jmespath.JMESPath
}

// NewQuery compiles expression.
func NewQuery(expression string) (*Query, error) {
	compiled, err := jmespath.Compile(expression)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindParse, "invalid query "+expression)
	}
	return &Query{expression: expression, compiled: compiled}, nil
}

// Apply evaluates the query against the JSON form of v.
func (q *Query) Apply(v any) (any, error) {
	data, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	result, err := q.compiled.Search(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "evaluate query "+q.expression)
	}
	return result, nil
}
