package output

import (
	"bytes"
	"encoding/json"
	"io"
	"text/template"

	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/tmplutil"
)

// TemplateFormatter renders values through a Go template. The template sees
// the value as decoded JSON, so fields are addressed by their JSON names:
// {{ .compatibility_score }}.
type TemplateFormatter struct {
	tmpl *template.Template
}

// NewTemplateFormatter parses text with the Sprig function map.
func NewTemplateFormatter(text string) (*TemplateFormatter, error) {
	tmpl, err := template.New("output").Funcs(tmplutil.FuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindParse, "parse output template")
	}
	return &TemplateFormatter{tmpl: tmpl}, nil
}

func (f *TemplateFormatter) Format(v any) (string, error) {
	raw, err := f.render(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (f *TemplateFormatter) FormatToWriter(w io.Writer, v any) error {
	raw, err := f.render(v)
	if err != nil {
		return err
	}
	return write(w, raw)
}

func (f *TemplateFormatter) render(v any) ([]byte, error) {
	data, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "render output template")
	}
	return buf.Bytes(), nil
}

// toGeneric converts v to the maps, slices and scalars of its JSON form.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "encode output")
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "decode output")
	}
	return out, nil
}
