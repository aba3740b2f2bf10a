package report

import (
	"fmt"
	"strings"
)

// ValidationError is a classified change. Code carries a dialect prefix and
// a numeric suffix that encodes severity (001 error, 002 warning, 003 info).
type ValidationError struct {
	Message  string `json:"message" yaml:"message"`
	Location string `json:"path" yaml:"path"`
	Code     string `json:"code" yaml:"code"`
}

// ValidationResult is the outcome of classifying a change sequence.
type ValidationResult struct {
	IsValid bool              `json:"is_valid" yaml:"is_valid"`
	Errors  []ValidationError `json:"errors" yaml:"errors"`
	Context map[string]string `json:"context" yaml:"context"`
}

// NewValidationResult is valid exactly when errs is empty.
func NewValidationResult(errs []ValidationError, context map[string]string) *ValidationResult {
	if errs == nil {
		errs = []ValidationError{}
	}
	if context == nil {
		context = map[string]string{}
	}
	return &ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
		Context: context,
	}
}

// CodeFor builds a dialect code such as SQL001 from a prefix and severity.
func CodeFor(prefix string, sev Severity) string {
	switch sev {
	case SeverityError:
		return prefix + "001"
	case SeverityWarning:
		return prefix + "002"
	default:
		return prefix + "003"
	}
}

// SeverityForCode recovers the severity encoded in a dialect code.
// Unknown suffixes are treated as informational.
func SeverityForCode(code string) Severity {
	switch {
	case strings.HasSuffix(code, "001"):
		return SeverityError
	case strings.HasSuffix(code, "002"):
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// IssuesFrom converts validation errors into report issues.
func IssuesFrom(errs []ValidationError) []Issue {
	issues := make([]Issue, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, Issue{
			Severity:    SeverityForCode(e.Code),
			Description: e.Message,
			Location:    e.Location,
		})
	}
	return issues
}

// HasErrors reports whether any issue has error severity.
func (r *CompatibilityReport) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// String renders a one-line summary of the report.
func (r *CompatibilityReport) String() string {
	verdict := "incompatible"
	if r.IsCompatible {
		verdict = "compatible"
	}
	return fmt.Sprintf("%s (score %d, %d changes, %d issues)", verdict, r.Score, len(r.Changes), len(r.Issues))
}
