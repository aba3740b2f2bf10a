// Package migration packages change sequences into migration plans.
package migration

import "github.com/wudi/schemadiff/internal/change"

// ImpactWeights is the per-change impact used by plans. It is deliberately
// separate from the dialect score tables: a plan measures its worst single
// change, a report accumulates all of them.
var ImpactWeights = map[change.Type]uint8{
	change.Addition:     25,
	change.Removal:      100,
	change.Modification: 50,
	change.Rename:       30,
}

// Stepper renders one change as a human-readable migration step. It returns
// false when it has nothing to say about the change.
type Stepper func(change.Change) (string, bool)

// Plan describes what moving from one schema version to another involves.
type Plan struct {
	SourceVersion string          `json:"source_version" yaml:"source_version"`
	TargetVersion string          `json:"target_version" yaml:"target_version"`
	Changes       []change.Change `json:"changes" yaml:"changes"`
	ImpactScore   uint8           `json:"impact_score" yaml:"impact_score"`
	IsBreaking    bool            `json:"is_breaking" yaml:"is_breaking"`
	Steps         []string        `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// NewPlan computes impact and breakingness once from changes. stepper may be nil.
func NewPlan(source, target string, changes []change.Change, stepper Stepper) *Plan {
	if changes == nil {
		changes = []change.Change{}
	}
	p := &Plan{
		SourceVersion: source,
		TargetVersion: target,
		Changes:       changes,
		ImpactScore:   Impact(changes),
		IsBreaking:    Breaking(changes),
	}
	if stepper != nil {
		for _, c := range changes {
			if step, ok := stepper(c); ok {
				p.Steps = append(p.Steps, step)
			}
		}
	}
	return p
}

// Impact is the largest impact weight among changes, or 0 for none.
func Impact(changes []change.Change) uint8 {
	var impact uint8
	for _, c := range changes {
		if w := ImpactWeights[c.Type]; w > impact {
			impact = w
		}
	}
	return impact
}

// Breaking reports whether any change is a removal or modification.
func Breaking(changes []change.Change) bool {
	for _, c := range changes {
		if c.IsBreaking() {
			return true
		}
	}
	return false
}

// BreakingChanges returns the removals and modifications in order.
func (p *Plan) BreakingChanges() []change.Change {
	var out []change.Change
	for _, c := range p.Changes {
		if c.IsBreaking() {
			out = append(out, c)
		}
	}
	return out
}

// Summary tallies the plan's changes by type.
func (p *Plan) Summary() change.Counts {
	return change.Count(p.Changes)
}
