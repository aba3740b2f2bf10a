// Package batch compares many schema pairs concurrently.
package batch

import (
	"context"

	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Run is given a non-positive limit.
const DefaultConcurrency = 4

// Comparer is the subset of the registry a batch needs.
type Comparer interface {
	Compare(old, new *schema.Schema) (*report.CompatibilityReport, error)
	Migrate(old, new *schema.Schema) (*migration.Plan, error)
}

// Pair is one comparison to run.
type Pair struct {
	Name string
	Old  *schema.Schema
	New  *schema.Schema
}

// Result is the outcome of one pair. Err is set when the pair failed; the
// report and plan are nil in that case.
type Result struct {
	Name   string                      `json:"name" yaml:"name"`
	Report *report.CompatibilityReport `json:"report,omitempty" yaml:"report,omitempty"`
	Plan   *migration.Plan             `json:"plan,omitempty" yaml:"plan,omitempty"`
	Err    error                       `json:"-" yaml:"-"`
}

// Run compares every pair with at most concurrency comparisons in flight.
// Results follow the order of pairs. A failing pair does not stop the
// others; cancelling ctx stops scheduling, leaves the unscheduled results
// carrying ctx.Err(), and is returned as the error.
func Run(ctx context.Context, c Comparer, pairs []Pair, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range pairs {
		results[i].Name = p.Name
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i] = compare(c, p)
			return nil
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}

func compare(c Comparer, p Pair) Result {
	r := Result{Name: p.Name}
	rep, err := c.Compare(p.Old, p.New)
	if err != nil {
		r.Err = err
		return r
	}
	plan, err := c.Migrate(p.Old, p.New)
	if err != nil {
		r.Err = err
		return r
	}
	r.Report, r.Plan = rep, plan
	return r
}

// Summary tallies a batch.
type Summary struct {
	Total        int `json:"total" yaml:"total"`
	Compatible   int `json:"compatible" yaml:"compatible"`
	Incompatible int `json:"incompatible" yaml:"incompatible"`
	Breaking     int `json:"breaking" yaml:"breaking"`
	Failed       int `json:"failed" yaml:"failed"`
}

// Summarize counts compatible, incompatible, breaking and failed results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
			continue
		case r.Report.IsCompatible:
			s.Compatible++
		default:
			s.Incompatible++
		}
		if r.Plan.IsBreaking {
			s.Breaking++
		}
	}
	return s
}
