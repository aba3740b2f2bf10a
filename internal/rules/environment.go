package rules

import (
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// Env is the expression environment rules are evaluated against.
type Env struct {
	Format        string   `expr:"format"`
	Score         int      `expr:"score"`
	Compatible    bool     `expr:"compatible"`
	Breaking      bool     `expr:"breaking"`
	Impact        int      `expr:"impact"`
	Additions     int      `expr:"additions"`
	Removals      int      `expr:"removals"`
	Modifications int      `expr:"modifications"`
	Renames       int      `expr:"renames"`
	Total         int      `expr:"total"`
	Locations     []string `expr:"locations"`
	Codes         []string `expr:"codes"` // validation error codes, e.g. SQL001
}

// NewEnv builds the environment for a compatibility report. v may be nil.
func NewEnv(format schema.Format, r *report.CompatibilityReport, v *report.ValidationResult) Env {
	counts := change.Count(r.Changes)
	env := Env{
		Format:        string(format),
		Score:         int(r.Score),
		Compatible:    r.IsCompatible,
		Breaking:      migration.Breaking(r.Changes),
		Impact:        int(migration.Impact(r.Changes)),
		Additions:     counts.Additions,
		Removals:      counts.Removals,
		Modifications: counts.Modifications,
		Renames:       counts.Renames,
		Total:         counts.Total,
		Locations:     make([]string, 0, len(r.Changes)),
		Codes:         []string{},
	}
	for _, c := range r.Changes {
		env.Locations = append(env.Locations, c.Location)
	}
	if v != nil {
		for _, e := range v.Errors {
			env.Codes = append(env.Codes, e.Code)
		}
	}
	return env
}
