package sql

import (
	"fmt"
	"strings"

	"github.com/wudi/schemadiff/internal/change"
)

// Step renders a change as a DDL statement, or a comment when the change
// needs manual attention.
func Step(c change.Change) (string, bool) {
	table, column := c.Metadata["table"], c.Metadata["column"]
	if table == "" {
		return "", false
	}

	switch {
	case strings.HasSuffix(c.Location, "/constraints"):
		return fmt.Sprintf("-- review constraints on %s.%s: %s", table, column, c.Description), true
	case column == "":
		switch c.Type {
		case change.Addition:
			return fmt.Sprintf("CREATE TABLE %s (...);", table), true
		case change.Removal:
			return fmt.Sprintf("DROP TABLE %s;", table), true
		}
	default:
		switch c.Type {
		case change.Addition:
			return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, c.Metadata["type"]), true
		case change.Removal:
			return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, column), true
		case change.Modification:
			return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s;", table, column, c.Metadata["new_type"]), true
		}
	}
	if c.Type == change.Rename {
		return fmt.Sprintf("ALTER TABLE %s RENAME ...;", table), true
	}
	return "", false
}
