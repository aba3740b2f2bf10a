package schemaevolution

import (
	"time"

	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// Evaluation records how a submitted schema version compared with the
// latest stored one.
type Evaluation struct {
	Subject    string          `json:"subject" yaml:"subject"`
	Format     schema.Format   `json:"format" yaml:"format"`
	OldVersion string          `json:"old_version,omitempty" yaml:"old_version,omitempty"`
	NewVersion string          `json:"new_version" yaml:"new_version"`
	Score      uint8           `json:"compatibility_score" yaml:"compatibility_score"`
	Compatible bool            `json:"compatible" yaml:"compatible"`
	Breaking   bool            `json:"breaking" yaml:"breaking"`
	Changes    []change.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
	Issues     []report.Issue  `json:"issues,omitempty" yaml:"issues,omitempty"`
	// Initial is set when there was no earlier version to compare against.
	Initial bool `json:"initial" yaml:"initial"`
	// Stored is false when block mode refused the version.
	Stored    bool      `json:"stored" yaml:"stored"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
