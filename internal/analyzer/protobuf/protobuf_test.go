package protobuf

import (
	"errors"
	"strings"
	"testing"

	"github.com/wudi/schemadiff/internal/change"
	sderrors "github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

const userProto = `
message User {
  int32 id = 1;
  string name = 2;
}
`

const userDescriptor = `
name: "user.proto"
syntax: "proto3"
message_type {
  name: "User"
  field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
  field { name: "name" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING }
}
message_type {
  name: "Team"
  field { name: "title" number: 1 label: LABEL_OPTIONAL type: TYPE_STRING }
}
`

func protoSchema(content, version string) *schema.Schema {
	return schema.New(schema.FormatProtobuf, content, version)
}

func TestFieldAddedToSource(t *testing.T) {
	newProto := strings.Replace(userProto, "string name = 2;", "string name = 2;\n  string email = 3;", 1)

	r, err := New().AnalyzeCompatibility(protoSchema(userProto, "1.0.0"), protoSchema(newProto, "1.1.0"))
	if err != nil {
		t.Fatalf("AnalyzeCompatibility: %v", err)
	}
	if len(r.Changes) != 1 {
		t.Fatalf("expected 1 change, got %v", r.Changes)
	}
	c := r.Changes[0]
	if c.Type != change.Addition || c.Location != "/User/email" || c.Description != "New field 'email' was added" {
		t.Errorf("change = %+v", c)
	}
	if c.Metadata["message"] != "User" || c.Metadata["field"] != "email" {
		t.Errorf("metadata = %v", c.Metadata)
	}
	// additions carry no deduction in this dialect
	if r.Score != 100 || !r.IsCompatible {
		t.Errorf("score = %d compatible = %v", r.Score, r.IsCompatible)
	}
	if len(r.Issues) != 0 {
		t.Errorf("additions should raise no issues: %+v", r.Issues)
	}
}

func TestDiffTextFormat(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(string) string
		wantType  change.Type
		wantLoc   string
		wantDesc  string
		wantScore uint8
		wantCode  string
	}{
		{
			name: "field type changed",
			mutate: func(s string) string {
				return strings.Replace(s, `name: "name" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING`,
					`name: "name" number: 2 label: LABEL_OPTIONAL type: TYPE_BYTES`, 1)
			},
			wantType:  change.Modification,
			wantLoc:   "/User/name",
			wantDesc:  "Field 'name' type changed from TYPE_STRING to TYPE_BYTES",
			wantScore: 90,
			wantCode:  "PROTO002",
		},
		{
			name: "field removed",
			mutate: func(s string) string {
				return strings.Replace(s, `  field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }`+"\n", "", 1)
			},
			wantType:  change.Removal,
			wantLoc:   "/User/id",
			wantDesc:  "Field 'id' was removed",
			wantScore: 80,
			wantCode:  "PROTO001",
		},
		{
			name: "message removed",
			mutate: func(s string) string {
				return s[:strings.Index(s, "message_type {\n  name: \"Team\"")]
			},
			wantType:  change.Removal,
			wantLoc:   "/Team",
			wantDesc:  "Message 'Team' was removed",
			wantScore: 80,
			wantCode:  "PROTO001",
		},
		{
			name: "message added",
			mutate: func(s string) string {
				return s + "message_type { name: \"Org\" }\n"
			},
			wantType:  change.Addition,
			wantLoc:   "/Org",
			wantDesc:  "Message 'Org' was added",
			wantScore: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			r, err := a.AnalyzeCompatibility(protoSchema(userDescriptor, "1"), protoSchema(tt.mutate(userDescriptor), "2"))
			if err != nil {
				t.Fatalf("AnalyzeCompatibility: %v", err)
			}
			if len(r.Changes) != 1 {
				t.Fatalf("expected 1 change, got %v", r.Changes)
			}
			c := r.Changes[0]
			if c.Type != tt.wantType || c.Location != tt.wantLoc || c.Description != tt.wantDesc {
				t.Errorf("change = {%s %q %q}", c.Type, c.Location, c.Description)
			}
			if r.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", r.Score, tt.wantScore)
			}

			res := a.ValidateChanges(r.Changes)
			if tt.wantCode == "" {
				if !res.IsValid {
					t.Errorf("expected valid result, got %+v", res.Errors)
				}
				return
			}
			if len(res.Errors) != 1 || res.Errors[0].Code != tt.wantCode {
				t.Errorf("validation errors = %+v, want code %s", res.Errors, tt.wantCode)
			}
			if len(r.Issues) != 1 || r.Issues[0].Severity != report.SeverityForCode(tt.wantCode) {
				t.Errorf("issues = %+v", r.Issues)
			}
		})
	}
}

func TestTypeChangeMetadata(t *testing.T) {
	newDesc := strings.Replace(userDescriptor, "type: TYPE_INT32", "type: TYPE_INT64", 1)

	r, err := New().AnalyzeCompatibility(protoSchema(userDescriptor, "1"), protoSchema(newDesc, "2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Changes) != 1 {
		t.Fatalf("changes = %v", r.Changes)
	}
	want := map[string]string{"message": "User", "field": "id", "old_type": "TYPE_INT32", "new_type": "TYPE_INT64"}
	for k, v := range want {
		if r.Changes[0].Metadata[k] != v {
			t.Errorf("metadata[%s] = %q, want %q", k, r.Changes[0].Metadata[k], v)
		}
	}
	if r.Issues[0].Description != "Potential compatibility issue: Field 'id' type changed from TYPE_INT32 to TYPE_INT64" {
		t.Errorf("issue = %q", r.Issues[0].Description)
	}
}

func TestMessageReferenceChanged(t *testing.T) {
	old := `
syntax = "proto3";
message Address { string street = 1; }
message Location { string street = 1; }
message User {
  Address home = 1;
}
`
	new := strings.Replace(old, "Address home = 1;", "Location home = 1;", 1)

	r, err := New().AnalyzeCompatibility(protoSchema(old, "1"), protoSchema(new, "2"))
	if err != nil {
		t.Fatalf("AnalyzeCompatibility: %v", err)
	}
	if len(r.Changes) != 1 || r.Changes[0].Type != change.Modification || r.Changes[0].Location != "/User/home" {
		t.Fatalf("changes = %v", r.Changes)
	}
	if r.Changes[0].Metadata["old_type"] == r.Changes[0].Metadata["new_type"] {
		t.Errorf("type tags should differ: %v", r.Changes[0].Metadata)
	}
}

func TestProto2Source(t *testing.T) {
	src := `
syntax = "proto2";
package acme;
message User {
  required int32 id = 1;
  optional string name = 2;
}
`
	doc, err := Strategy{}.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.GetPackage() != "acme" || len(doc.GetMessageType()) != 1 {
		t.Errorf("unexpected descriptor: %v", doc)
	}
}

func TestNestedMessagesIgnored(t *testing.T) {
	old := `
message User {
  message Meta { string source = 1; }
  string name = 1;
}
`
	new := strings.Replace(old, "string source = 1;", "int64 source = 1;", 1)

	r, err := New().AnalyzeCompatibility(protoSchema(old, "1"), protoSchema(new, "2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Changes) != 0 {
		t.Errorf("nested messages are not compared, got %v", r.Changes)
	}
}

func TestMigration(t *testing.T) {
	newDesc := strings.Replace(userDescriptor, "type: TYPE_STRING", "type: TYPE_BYTES", 1) + "message_type { name: \"Org\" }\n"

	p, err := New().GenerateMigrationPath(protoSchema(userDescriptor, "1.0.0"), protoSchema(newDesc, "2.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Changes) != 2 || p.ImpactScore != 50 || !p.IsBreaking {
		t.Errorf("plan = %+v", p)
	}
}

func TestIdentity(t *testing.T) {
	for _, content := range []string{userProto, userDescriptor} {
		s := protoSchema(content, "1.0.0")
		r, err := New().AnalyzeCompatibility(s, s)
		if err != nil {
			t.Fatal(err)
		}
		if len(r.Changes) != 0 || r.Score != 100 || !r.IsCompatible {
			t.Errorf("identity comparison not clean: %v", r)
		}
	}
}

func TestParseError(t *testing.T) {
	_, err := New().AnalyzeCompatibility(protoSchema(userProto, "1"), protoSchema("message User {", "2"))
	if !errors.Is(err, sderrors.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !errors.Is(err, sderrors.ErrProtobuf) {
		t.Errorf("expected nested protobuf error, got %v", err)
	}
	if !strings.Contains(err.Error(), "as text format") || !strings.Contains(err.Error(), "as proto source") {
		t.Errorf("error should carry both causes: %v", err)
	}
}

func TestRenamePanics(t *testing.T) {
	rename := change.New(change.Rename, "/User/name", "renamed", nil)

	tests := []struct {
		name string
		fn   func()
	}{
		{"deduct", func() { Deduct(rename) }},
		{"classify", func() { Classify(rename) }},
		{"validate", func() { New().ValidateChanges([]change.Change{rename}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic for rename")
				}
			}()
			tt.fn()
		})
	}
}
