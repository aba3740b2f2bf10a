package rules

import (
	"github.com/wudi/schemadiff/config"
	"github.com/wudi/schemadiff/internal/logging"
	"go.uber.org/zap"
)

// Result is a rule that matched.
type Result struct {
	RuleID     string `json:"rule" yaml:"rule"`
	Action     string `json:"action" yaml:"action"`
	Expression string `json:"expression" yaml:"expression"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Engine holds the compiled rules of a configuration.
type Engine struct {
	rules   []*CompiledRule
	metrics *Metrics
}

// NewEngine compiles every rule.
func NewEngine(cfgs []config.RuleConfig) (*Engine, error) {
	e := &Engine{metrics: &Metrics{}}
	for _, cfg := range cfgs {
		cr, err := Compile(cfg)
		if err != nil {
			return nil, err
		}
		e.rules = append(e.rules, cr)
	}
	return e, nil
}

// Evaluate runs every enabled rule against env and returns the matches in
// rule order. A rule that fails to run is logged and skipped.
func (e *Engine) Evaluate(env Env) []Result {
	var results []Result
	for _, rule := range e.rules {
		if !rule.Enabled {
			continue
		}
		e.metrics.Evaluated.Add(1)

		matched, err := rule.Evaluate(env)
		if err != nil {
			e.metrics.Errors.Add(1)
			logging.Error("rule evaluation error", zap.String("rule_id", rule.ID), zap.Error(err))
			continue
		}
		if !matched {
			continue
		}

		e.metrics.Matched.Add(1)
		if rule.Action == ActionFail {
			e.metrics.Failed.Add(1)
		}
		logging.Warn("rule matched",
			zap.String("rule_id", rule.ID),
			zap.String("action", rule.Action),
			zap.String("format", env.Format),
			zap.Int("score", env.Score),
		)
		results = append(results, Result{
			RuleID:     rule.ID,
			Action:     rule.Action,
			Expression: rule.Expression,
			Message:    rule.Message,
		})
	}
	return results
}

// Failed reports whether any result carries the fail action.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Action == ActionFail {
			return true
		}
	}
	return false
}

// Len returns the number of compiled rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// GetMetrics returns the metrics snapshot.
func (e *Engine) GetMetrics() MetricsSnapshot {
	return e.metrics.Snapshot()
}
