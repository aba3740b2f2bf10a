package schemadiff

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCompareJSONSchema(t *testing.T) {
	old := NewSchema(FormatJSONSchema, `{"type":"object","properties":{"name":{"type":"string"}}}`, "1.0.0")
	new := NewSchema(FormatJSONSchema, `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}}}`, "1.1.0")

	r, err := Compare(old, new)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(r.Changes) != 1 || r.Changes[0].Type != Addition || r.Changes[0].Location != "/properties/age" {
		t.Fatalf("changes = %+v", r.Changes)
	}
	if r.Score != 95 || !r.IsCompatible {
		t.Errorf("score = %d compatible = %v", r.Score, r.IsCompatible)
	}
}

func TestMigrateSQL(t *testing.T) {
	old := NewSchema(FormatSQL, "CREATE TABLE users (id INT, name TEXT);", "1")
	new := NewSchema(FormatSQL, "CREATE TABLE users (id INT, email TEXT);", "2")

	p, err := Migrate(old, new)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if p.ImpactScore != 100 || !p.IsBreaking {
		t.Errorf("impact = %d breaking = %v", p.ImpactScore, p.IsBreaking)
	}
	if p.SourceVersion != "1" || p.TargetVersion != "2" {
		t.Errorf("versions = %s -> %s", p.SourceVersion, p.TargetVersion)
	}
}

func TestValidate(t *testing.T) {
	res, err := Validate(FormatSQL, []Change{{Type: Removal, Location: "users/name", Description: "Column 'name' was removed"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsValid || len(res.Errors) != 1 || res.Errors[0].Code != "SQL001" {
		t.Errorf("result = %+v", res)
	}

	if _, err := Validate("xml", nil); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestAnalyzerFor(t *testing.T) {
	for _, f := range []Format{FormatJSONSchema, FormatOpenAPI, FormatProtobuf, FormatSQL} {
		a, err := AnalyzerFor(f)
		if err != nil {
			t.Fatalf("AnalyzerFor(%s): %v", f, err)
		}
		if a.Format() != f {
			t.Errorf("AnalyzerFor(%s).Format() = %s", f, a.Format())
		}
	}
	if _, err := AnalyzerFor("graphql"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestErrors(t *testing.T) {
	_, err := Compare(NewSchema(FormatJSONSchema, "{", "1"), NewSchema(FormatJSONSchema, "{}", "2"))
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected parse error, got %v", err)
	}
	var sdErr *Error
	if !errors.As(err, &sdErr) {
		t.Error("expected *Error in chain")
	}

	_, err = Compare(NewSchema(FormatJSONSchema, "{}", "1"), NewSchema(FormatSQL, "", "2"))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected invalid format error for mixed formats, got %v", err)
	}
}

func TestDifferWithOptions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := New(WithLogger(zap.New(core)), WithCache(8, time.Minute))

	s := NewSchema(FormatProtobuf, "message User { string name = 1; }", "1")
	r, err := d.Compare(s, s)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(r.Changes) != 0 || r.Score != 100 {
		t.Errorf("identity report = %+v", r)
	}
	if logs.Len() == 0 {
		t.Error("expected debug logs from the configured logger")
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("proto")
	if err != nil || f != FormatProtobuf {
		t.Errorf("ParseFormat(proto) = %q, %v", f, err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemadiff.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("output format = %q", cfg.Output.Format)
	}
	if cfg.Batch.Concurrency != DefaultConfig().Batch.Concurrency {
		t.Errorf("batch concurrency default lost: %d", cfg.Batch.Concurrency)
	}

	if _, err := ParseConfig([]byte("output:\n  format: xml\n")); err == nil {
		t.Error("expected validation error")
	}
}
