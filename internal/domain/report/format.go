package report

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderError reports a field whose value could not be coerced to its display
// type. The whole render fails; no partial report is produced.
type RenderError struct {
	Field string
	Value any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: field %q value %v cannot be formatted", e.Field, e.Value)
}

// toFloat coerces the numeric shapes a field may arrive in: JSON numbers,
// typed record floats, ints, and decimal strings like "450.00".
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// currency formats an amount as $X,XXX.XX with comma grouping.
func currency(field string, v any) (string, error) {
	f, ok := toFloat(v)
	if !ok {
		return "", &RenderError{Field: field, Value: v}
	}
	return "$" + groupThousands(strconv.FormatFloat(f, 'f', 2, 64)), nil
}

// percent formats a percentage with at least one decimal place and a trailing
// percent sign: 20 renders as "20.0%", 12.5 as "12.5%".
func percent(field string, v any) (string, error) {
	f, ok := toFloat(v)
	if !ok {
		return "", &RenderError{Field: field, Value: v}
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%", nil
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// display stringifies a field value for verbatim inclusion.
func display(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// yesNoDisplay renders booleans and Yes/No strings uniformly.
func yesNoDisplay(v any) string {
	s := display(v)
	if s == "" {
		return "No"
	}
	return s
}
