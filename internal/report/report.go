// Package report turns change sequences into compatibility verdicts.
package report

import "github.com/wudi/schemadiff/internal/change"

// Threshold is the lowest score still considered compatible.
const Threshold = 80

// Severity grades a compatibility issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a severity-tagged finding derived from a change.
type Issue struct {
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Location    string   `json:"location" yaml:"location"`
}

// CompatibilityReport summarizes how a new schema version relates to the old one.
type CompatibilityReport struct {
	Changes      []change.Change   `json:"changes" yaml:"changes"`
	Score        uint8             `json:"compatibility_score" yaml:"compatibility_score"`
	IsCompatible bool              `json:"is_compatible" yaml:"is_compatible"`
	Issues       []Issue           `json:"issues" yaml:"issues"`
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
}

// NewReport assembles a report. Compatibility always follows from the score.
func NewReport(changes []change.Change, score uint8, issues []Issue, metadata map[string]string) *CompatibilityReport {
	if changes == nil {
		changes = []change.Change{}
	}
	if issues == nil {
		issues = []Issue{}
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &CompatibilityReport{
		Changes:      changes,
		Score:        score,
		IsCompatible: score >= Threshold,
		Issues:       issues,
		Metadata:     metadata,
	}
}

// Weights is a per-change-type deduction table.
type Weights struct {
	Addition     int
	Removal      int
	Modification int
	Rename       int
}

// Of returns the deduction for one change type.
func (w Weights) Of(t change.Type) int {
	switch t {
	case change.Addition:
		return w.Addition
	case change.Removal:
		return w.Removal
	case change.Modification:
		return w.Modification
	case change.Rename:
		return w.Rename
	}
	return 0
}

// Deduct adapts the table to the signature Score expects.
func (w Weights) Deduct(c change.Change) int {
	return w.Of(c.Type)
}

// Score subtracts the deduction of every change from 100, stopping at 0.
// Negative deductions are ignored so adding a change never raises the score.
func Score(changes []change.Change, deduct func(change.Change) int) uint8 {
	total := 0
	for _, c := range changes {
		if d := deduct(c); d > 0 {
			total += d
		}
		if total >= 100 {
			return 0
		}
	}
	return uint8(100 - total)
}
