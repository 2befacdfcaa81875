// Package report turns intake records into fixed-layout plain-text reports.
// Input arrives as a Source (a tagged union over raw mappings, typed records,
// and pre-built summaries), is flattened into display Fields, and rendered
// through an ordered list of conditional sections.
package report

import (
	"time"
)

// NotAvailable is the placeholder substituted for missing display values.
const NotAvailable = "N/A"

// Fields is the flat display mapping consumed by the renderers. A key that is
// absent from the map suppresses the report section that depends on it; a key
// holding an empty string does the same for free-text sections.
type Fields map[string]any

// Has reports whether the key carries a usable value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// SourceKind tags the concrete variant behind a Source.
type SourceKind string

const (
	KindRawBenefit        SourceKind = "raw_benefit"
	KindBenefitRecord     SourceKind = "benefit_record"
	KindCopaySummary      SourceKind = "copay_summary"
	KindDeductibleSummary SourceKind = "deductible_summary"
	KindRawSOAPNote       SourceKind = "raw_soap_note"
	KindSOAPNoteRecord    SourceKind = "soap_note_record"
)

// Source supplies the fields for one report. Extraction is best-effort and
// never fails: missing optionals become placeholders or omitted keys.
type Source interface {
	Kind() SourceKind
	Extract() Fields
}

func isBenefitKind(k SourceKind) bool {
	switch k {
	case KindRawBenefit, KindBenefitRecord, KindCopaySummary, KindDeductibleSummary:
		return true
	}
	return false
}

func isSOAPKind(k SourceKind) bool {
	return k == KindRawSOAPNote || k == KindSOAPNoteRecord
}

// normalizeDate renders date-like values as MM/DD/YYYY. ISO strings are
// reparsed; anything unrecognized passes through untouched.
func normalizeDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case time.Time:
		return d.Format("01/02/2006")
	case string:
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t.Format("01/02/2006")
		}
		return d
	default:
		return ""
	}
}

// normalizeCount collapses whole JSON numbers to int so a raw mapping and a
// typed record extract to identical fields.
func normalizeCount(v any) any {
	if f, ok := v.(float64); ok && f == float64(int(f)) {
		return int(f)
	}
	return v
}
