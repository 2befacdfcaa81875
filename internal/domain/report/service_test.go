package report

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/careintake/intake/internal/domain/intake"
	"github.com/careintake/intake/internal/platform/recordstore"
)

func newTestReportService() (*Service, *recordstore.MemoryStore) {
	store := recordstore.NewMemoryStore()
	return NewService(store, zerolog.Nop(), nil), store
}

// captureMetrics records report-counter calls for assertion.
type captureMetrics struct {
	calls [][2]string
}

func (c *captureMetrics) RecordReport(kind, status string) {
	c.calls = append(c.calls, [2]string{kind, status})
}

func TestGenerate_CountsOutcomes(t *testing.T) {
	store := recordstore.NewMemoryStore()
	metrics := &captureMetrics{}
	svc := NewService(store, zerolog.Nop(), metrics)
	ctx := context.Background()

	gen := intake.NewGenerator(7)
	svc.GenerateBenefitSummary(ctx, BenefitRecord{Record: gen.BenefitCheck(intake.Identity{})})
	svc.GenerateSOAPNote(ctx, SOAPNoteRecord{Record: gen.SOAPNote(intake.Identity{})})
	// Wrong source kind resolves to an error Result, still counted.
	svc.GenerateBenefitSummary(ctx, SOAPNoteRecord{Record: gen.SOAPNote(intake.Identity{})})

	want := [][2]string{
		{"benefit_summary", StatusSuccess},
		{"soap_note", StatusSuccess},
		{"benefit_summary", StatusError},
	}
	if len(metrics.calls) != len(want) {
		t.Fatalf("recorded %d outcomes, want %d: %v", len(metrics.calls), len(want), metrics.calls)
	}
	for i, w := range want {
		if metrics.calls[i] != w {
			t.Errorf("call %d = %v, want %v", i, metrics.calls[i], w)
		}
	}
}

func TestGenerateBenefitSummary_Success(t *testing.T) {
	svc, store := newTestReportService()
	ctx := context.Background()

	rec := intake.NewGenerator(42).BenefitCheck(intake.Identity{FirstName: "Jane", LastName: "Doe"})
	res := svc.GenerateBenefitSummary(ctx, BenefitRecord{Record: rec})

	if res.Status != StatusSuccess {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	if res.SummaryText == "" || !strings.Contains(res.SummaryText, "INSURANCE BENEFIT INFORMATION") {
		t.Error("summary text missing or malformed")
	}
	if !strings.HasPrefix(res.Filename, "benefit_summary_jane_doe_") || !strings.HasSuffix(res.Filename, ".txt") {
		t.Errorf("filename = %s", res.Filename)
	}

	stored, err := store.ReadArtifact(ctx, CategoryBenefitSummaries, res.Filename)
	if err != nil {
		t.Fatalf("artifact not persisted: %v", err)
	}
	if string(stored) != res.SummaryText {
		t.Error("persisted artifact differs from returned text")
	}
}

func TestGenerateBenefitSummary_RejectsSOAPSource(t *testing.T) {
	svc, _ := newTestReportService()

	rec := intake.NewGenerator(42).SOAPNote(intake.Identity{})
	res := svc.GenerateBenefitSummary(context.Background(), SOAPNoteRecord{Record: rec})

	if res.Status != StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
	if res.SummaryText != "" {
		t.Error("error result must not carry report text")
	}
}

func TestGenerateBenefitSummary_RenderFailure(t *testing.T) {
	svc, store := newTestReportService()
	ctx := context.Background()

	res := svc.GenerateBenefitSummary(ctx, RawBenefit{
		"individual_family_benefit_information": map[string]any{
			"individual_deductible": "a lot",
		},
	})

	if res.Status != StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Message, "render failed") {
		t.Errorf("message = %s", res.Message)
	}

	records, _ := store.List(ctx, CategoryBenefitSummaries)
	if len(records) != 0 {
		t.Error("failed render must not persist an artifact")
	}
}

func TestGenerateSOAPNote_Success(t *testing.T) {
	svc, store := newTestReportService()
	ctx := context.Background()

	rec := intake.NewGenerator(42).SOAPNote(intake.Identity{FirstName: "Sam", LastName: "Lee"})
	res := svc.GenerateSOAPNote(ctx, SOAPNoteRecord{Record: rec})

	if res.Status != StatusSuccess {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	if !strings.Contains(res.SOAPNoteText, "CLINICAL SOAP NOTE") {
		t.Error("soap note text missing header")
	}
	if !strings.HasPrefix(res.Filename, "soap_note_sam_lee_") {
		t.Errorf("filename = %s", res.Filename)
	}

	if _, err := store.ReadArtifact(ctx, CategorySOAPNotes, res.Filename); err != nil {
		t.Fatalf("artifact not persisted: %v", err)
	}
}

func TestGenerateSOAPNote_RejectsBenefitSource(t *testing.T) {
	svc, _ := newTestReportService()

	res := svc.GenerateSOAPNote(context.Background(), RawBenefit{})
	if res.Status != StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
}

func TestArtifactNames_NeverCollide(t *testing.T) {
	svc, _ := newTestReportService()
	ctx := context.Background()

	rec := intake.NewGenerator(42).BenefitCheck(intake.Identity{FirstName: "Jane", LastName: "Doe"})
	src := BenefitRecord{Record: rec}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		res := svc.GenerateBenefitSummary(ctx, src)
		if res.Status != StatusSuccess {
			t.Fatalf("generate %d: %s", i, res.Message)
		}
		if seen[res.Filename] {
			t.Fatalf("filename %s repeated", res.Filename)
		}
		seen[res.Filename] = true
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane_doe"},
		{"N/A", "na"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
