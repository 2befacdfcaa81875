package report

import (
	"strings"
)

// section is one conditionally-included block of a report. Which sections
// appear is decided by when; how a section reads is decided by render. The
// split keeps the two independently testable.
type section struct {
	when   func(Fields) bool
	render func(Fields, *strings.Builder) error
}

func always(Fields) bool { return true }

// Renderer binds a field mapping to an ordered section list at construction.
// An instance is single-use: the first successful Render moves it to the
// rendered state and later calls return the memoized text.
type Renderer struct {
	fields   Fields
	sections []section
	rendered bool
	output   string
}

// Render produces the report text. Rendering the same fields twice yields
// byte-identical output. A coercion failure aborts the whole render with a
// *RenderError; no partial text is retained.
func (r *Renderer) Render() (string, error) {
	if r.rendered {
		return r.output, nil
	}
	var b strings.Builder
	for _, s := range r.sections {
		if !s.when(r.fields) {
			continue
		}
		if err := s.render(r.fields, &b); err != nil {
			return "", err
		}
	}
	r.output = b.String()
	r.rendered = true
	return r.output, nil
}

// Rendered reports whether the instance has produced its output.
func (r *Renderer) Rendered() bool { return r.rendered }
