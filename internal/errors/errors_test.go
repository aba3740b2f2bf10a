package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	e := New(KindInvalidFormat, "unsupported format")
	if e.Kind != KindInvalidFormat {
		t.Errorf("Kind = %q, want %q", e.Kind, KindInvalidFormat)
	}
	if e.Error() != "unsupported format" {
		t.Errorf("Error() = %q, want %q", e.Error(), "unsupported format")
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	e := Wrap(inner, KindIO, "failed to read history")

	want := "failed to read history: permission denied"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if e.Unwrap() != inner {
		t.Error("Unwrap should return the underlying error")
	}
	if !errors.Is(e, inner) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestParse(t *testing.T) {
	e := Parse("sql_ddl", fmt.Errorf("syntax error at position 7"))

	want := "failed to parse schema (sql_ddl): syntax error at position 7"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if !errors.Is(e, ErrParse) {
		t.Error("parse error should match ErrParse")
	}
	if errors.Is(e, ErrIO) {
		t.Error("parse error should not match ErrIO")
	}
}

func TestIsMatchesNestedKinds(t *testing.T) {
	inner := Wrap(fmt.Errorf("bad field"), KindProtobuf, "invalid descriptor")
	outer := Parse("protobuf", inner)
	wrapped := fmt.Errorf("compare: %w", outer)

	if !errors.Is(wrapped, ErrParse) {
		t.Error("expected ErrParse through fmt wrapping")
	}
	if !errors.Is(wrapped, ErrProtobuf) {
		t.Error("expected ErrProtobuf from the nested error")
	}
	if errors.Is(wrapped, ErrComparison) {
		t.Error("did not expect ErrComparison")
	}
}

func TestWithFormat(t *testing.T) {
	base := New(KindComparison, "incompatible schema")
	tagged := base.WithFormat("openapi")

	if base.Format != "" {
		t.Error("WithFormat should not modify the receiver")
	}
	if tagged.Format != "openapi" {
		t.Errorf("Format = %q, want openapi", tagged.Format)
	}
	if tagged.Error() != "incompatible schema (openapi)" {
		t.Errorf("Error() = %q", tagged.Error())
	}
}

func TestIsSchemaDiffError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantOK   bool
		wantKind Kind
	}{
		{"direct", New(KindJSON, "bad json"), true, KindJSON},
		{"wrapped", fmt.Errorf("ctx: %w", New(KindIO, "disk")), true, KindIO},
		{"plain", fmt.Errorf("plain"), false, ""},
		{"nil", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := IsSchemaDiffError(tt.err)
			if ok != tt.wantOK {
				t.Errorf("IsSchemaDiffError ok = %v, want %v", ok, tt.wantOK)
			}
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf = %q, want %q", got, tt.wantKind)
			}
		})
	}
}
