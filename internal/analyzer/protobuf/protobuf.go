// Package protobuf compares Protocol Buffers file descriptors message by
// message and field by field.
package protobuf

import (
	"fmt"

	"github.com/wudi/schemadiff/internal/analyzer"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
	"google.golang.org/protobuf/types/descriptorpb"
)

// CodePrefix prefixes every Protobuf validation code.
const CodePrefix = "PROTO"

// Weights are the score deductions per change type. Renames are never
// produced by this dialect and have no weight.
var Weights = report.Weights{Addition: 0, Removal: 20, Modification: 10}

// New returns the Protobuf analyzer.
func New(opts ...analyzer.Option) *analyzer.Engine[*descriptorpb.FileDescriptorProto] {
	return analyzer.NewEngine[*descriptorpb.FileDescriptorProto](schema.FormatProtobuf, Strategy{}, analyzer.Rules{
		Weights:  Weights,
		Deduct:   Deduct,
		Classify: Classify,
		Issues:   true,
	}, opts...)
}

// Deduct scores a change. It panics on a rename.
func Deduct(c change.Change) int {
	if c.Type == change.Rename {
		panic(renameUnsupported(c))
	}
	return Weights.Of(c.Type)
}

// Classify flags removals as PROTO001 and modifications as PROTO002. It
// panics on a rename.
func Classify(c change.Change) (report.ValidationError, bool) {
	switch c.Type {
	case change.Removal:
		return report.ValidationError{
			Message:  "Breaking change: " + c.Description,
			Location: c.Location,
			Code:     report.CodeFor(CodePrefix, report.SeverityError),
		}, true
	case change.Modification:
		return report.ValidationError{
			Message:  "Potential compatibility issue: " + c.Description,
			Location: c.Location,
			Code:     report.CodeFor(CodePrefix, report.SeverityWarning),
		}, true
	case change.Rename:
		panic(renameUnsupported(c))
	}
	return report.ValidationError{}, false
}

func renameUnsupported(c change.Change) string {
	return fmt.Sprintf("protobuf: rename changes are not supported (%s)", c.Location)
}

// Strategy parses and diffs file descriptors.
type Strategy struct{}

// Diff matches top-level messages by name, then their fields by name.
// Nested messages, enums, services and field numbers are not compared.
func (Strategy) Diff(old, new *descriptorpb.FileDescriptorProto) []change.Change {
	var changes []change.Change
	add := func(t change.Type, location, description string, metadata map[string]string) {
		changes = append(changes, change.New(t, location, description, metadata))
	}

	oldMsgs, newMsgs := old.GetMessageType(), new.GetMessageType()
	change.MatchByKey(oldMsgs, newMsgs, (*descriptorpb.DescriptorProto).GetName, change.Visitor[*descriptorpb.DescriptorProto]{
		Removed: func(m *descriptorpb.DescriptorProto) {
			add(change.Removal, "/"+m.GetName(), fmt.Sprintf("Message '%s' was removed", m.GetName()), nil)
		},
		Added: func(m *descriptorpb.DescriptorProto) {
			add(change.Addition, "/"+m.GetName(), fmt.Sprintf("Message '%s' was added", m.GetName()), nil)
		},
		Matched: func(o, n *descriptorpb.DescriptorProto) {
			msg := o.GetName()
			fieldMeta := func(f *descriptorpb.FieldDescriptorProto) map[string]string {
				return map[string]string{"message": msg, "field": f.GetName()}
			}

			change.MatchByKey(o.GetField(), n.GetField(), (*descriptorpb.FieldDescriptorProto).GetName, change.Visitor[*descriptorpb.FieldDescriptorProto]{
				Removed: func(f *descriptorpb.FieldDescriptorProto) {
					add(change.Removal, "/"+msg+"/"+f.GetName(), fmt.Sprintf("Field '%s' was removed", f.GetName()), fieldMeta(f))
				},
				Added: func(f *descriptorpb.FieldDescriptorProto) {
					add(change.Addition, "/"+msg+"/"+f.GetName(), fmt.Sprintf("New field '%s' was added", f.GetName()), fieldMeta(f))
				},
				Equal: func(of, nf *descriptorpb.FieldDescriptorProto) bool {
					return typeTag(of) == typeTag(nf)
				},
				Matched: func(of, nf *descriptorpb.FieldDescriptorProto) {
					oldType, newType := typeTag(of), typeTag(nf)
					meta := fieldMeta(of)
					meta["old_type"] = oldType
					meta["new_type"] = newType
					add(change.Modification, "/"+msg+"/"+of.GetName(),
						fmt.Sprintf("Field '%s' type changed from %s to %s", of.GetName(), oldType, newType), meta)
				},
			})
		},
	})
	return changes
}

// typeTag names a field's declared type: the referenced type name for
// messages and enums, the scalar kind (TYPE_STRING, ...) otherwise.
func typeTag(f *descriptorpb.FieldDescriptorProto) string {
	if name := f.GetTypeName(); name != "" {
		return name
	}
	if f.Type == nil {
		return ""
	}
	return f.GetType().String()
}
