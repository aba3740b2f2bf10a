package output

import "io"

// Options configures a Printer.
type Options struct {
	Format   Format
	Template string // required for FormatTemplate
	Query    string // optional JMESPath expression
}

// Printer applies the optional query and then formats values.
type Printer struct {
	formatter Formatter
	query     *Query
}

// NewPrinter builds a printer, compiling the query and template up front.
func NewPrinter(opts Options) (*Printer, error) {
	p := &Printer{}

	var err error
	if opts.Format == FormatTemplate {
		p.formatter, err = NewTemplateFormatter(opts.Template)
	} else {
		p.formatter, err = GetFormatter(opts.Format)
	}
	if err != nil {
		return nil, err
	}

	if opts.Query != "" {
		if p.query, err = NewQuery(opts.Query); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Print writes v to w.
func (p *Printer) Print(w io.Writer, v any) error {
	if p.query != nil {
		var err error
		if v, err = p.query.Apply(v); err != nil {
			return err
		}
	}
	return p.formatter.FormatToWriter(w, v)
}
