// Package rules evaluates user-defined gate expressions against comparison
// results.
package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/wudi/schemadiff/config"
)

const (
	ActionFail = "fail"
	ActionWarn = "warn"
)

// CompiledRule is a pre-compiled expression rule ready for evaluation.
type CompiledRule struct {
	ID         string
	Expression string
	Action     string
	Message    string
	Enabled    bool
	program    *vm.Program
}

// Compile compiles a rule. The expression must evaluate to a bool over Env.
func Compile(cfg config.RuleConfig) (*CompiledRule, error) {
	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	action := cfg.Action
	if action == "" {
		action = ActionFail
	}
	if action != ActionFail && action != ActionWarn {
		return nil, fmt.Errorf("rule %s: unknown action %q", cfg.ID, cfg.Action)
	}

	program, err := expr.Compile(cfg.Expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rule %s: failed to compile expression: %w", cfg.ID, err)
	}

	return &CompiledRule{
		ID:         cfg.ID,
		Expression: cfg.Expression,
		Action:     action,
		Message:    cfg.Message,
		Enabled:    enabled,
		program:    program,
	}, nil
}

// Evaluate runs the compiled program against env.
func (cr *CompiledRule) Evaluate(env Env) (bool, error) {
	output, err := expr.Run(cr.program, env)
	if err != nil {
		return false, err
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("rule %s: expression did not return bool", cr.ID)
	}
	return result, nil
}
