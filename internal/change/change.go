// Package change defines the change vocabulary every dialect analyzer emits.
package change

import "strconv"

// Type is the kind of a detected difference.
type Type string

const (
	Addition     Type = "addition"
	Removal      Type = "removal"
	Modification Type = "modification"
	Rename       Type = "rename"
)

// Change is one structural difference between two schema versions.
// Location is a slash-delimited path into the document.
type Change struct {
	Type        Type              `json:"change_type" yaml:"change_type"`
	Location    string            `json:"location" yaml:"location"`
	Description string            `json:"description" yaml:"description"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

// New creates a change. A nil metadata map is replaced by an empty one.
func New(t Type, location, description string, metadata map[string]string) Change {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Change{
		Type:        t,
		Location:    location,
		Description: description,
		Metadata:    metadata,
	}
}

// IsBreaking reports whether the change is a removal or a modification.
func (c Change) IsBreaking() bool {
	return c.Type == Removal || c.Type == Modification
}

// Counts aggregates a change sequence by type.
type Counts struct {
	Additions     int `json:"additions" yaml:"additions"`
	Removals      int `json:"removals" yaml:"removals"`
	Modifications int `json:"modifications" yaml:"modifications"`
	Renames       int `json:"renames" yaml:"renames"`
	Total         int `json:"total_changes" yaml:"total_changes"`
}

// Count tallies changes by type.
func Count(changes []Change) Counts {
	var c Counts
	for _, ch := range changes {
		switch ch.Type {
		case Addition:
			c.Additions++
		case Removal:
			c.Removals++
		case Modification:
			c.Modifications++
		case Rename:
			c.Renames++
		}
	}
	c.Total = len(changes)
	return c
}

// Context renders the counts as the string map carried by validation results.
func (c Counts) Context() map[string]string {
	return map[string]string{
		"additions":     strconv.Itoa(c.Additions),
		"removals":      strconv.Itoa(c.Removals),
		"modifications": strconv.Itoa(c.Modifications),
		"renames":       strconv.Itoa(c.Renames),
		"total_changes": strconv.Itoa(c.Total),
	}
}
