package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careintake/intake/internal/platform/recordstore"
)

// Result statuses. Every generate call resolves to one of these; errors are
// carried in the envelope, never panicked or left to kill the process.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Artifact categories in the record store.
const (
	CategoryBenefitSummaries = "benefit_summaries"
	CategorySOAPNotes        = "soap_notes"
)

// Result is the uniform envelope returned to callers of the generate
// operations. On error only Status and Message are set.
type Result struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	SummaryText  string `json:"summary_text,omitempty"`
	SOAPNoteText string `json:"soap_note_text,omitempty"`
	Filename     string `json:"filename,omitempty"`
}

// Metrics counts generated reports by kind and result status. The telemetry
// package satisfies it; a nil value disables counting.
type Metrics interface {
	RecordReport(kind, status string)
}

type nopMetrics struct{}

func (nopMetrics) RecordReport(string, string) {}

// Service runs the extract-render-persist pipeline for one report at a time.
type Service struct {
	store   recordstore.Store
	log     zerolog.Logger
	metrics Metrics
	now     func() time.Time
}

func NewService(store recordstore.Store, log zerolog.Logger, metrics Metrics) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{store: store, log: log, metrics: metrics, now: time.Now}
}

// GenerateBenefitSummary renders the insurance benefit summary for the source
// and persists it as a text artifact. All failures come back in the Result.
func (s *Service) GenerateBenefitSummary(ctx context.Context, src Source) Result {
	res := s.generateBenefitSummary(ctx, src)
	s.metrics.RecordReport("benefit_summary", res.Status)
	return res
}

func (s *Service) generateBenefitSummary(ctx context.Context, src Source) Result {
	if !isBenefitKind(src.Kind()) {
		return errorResult("source kind %s cannot produce a benefit summary", src.Kind())
	}

	fields := src.Extract()
	text, err := NewBenefitSummaryRenderer(fields).Render()
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(src.Kind())).Msg("benefit summary render failed")
		return errorResult("render failed: %v", err)
	}

	name := s.artifactName("benefit_summary", fields)
	stored, err := s.store.WriteArtifact(ctx, CategoryBenefitSummaries, name, []byte(text))
	if err != nil {
		s.log.Error().Err(err).Str("artifact", name).Msg("benefit summary write failed")
		return errorResult("store failed: %v", err)
	}

	s.log.Info().Str("artifact", stored).Str("kind", string(src.Kind())).Msg("benefit summary generated")
	return Result{
		Status:      StatusSuccess,
		Message:     "Benefit summary generated successfully",
		SummaryText: text,
		Filename:    stored,
	}
}

// GenerateSOAPNote renders the clinical SOAP note report for the source and
// persists it as a text artifact.
func (s *Service) GenerateSOAPNote(ctx context.Context, src Source) Result {
	res := s.generateSOAPNote(ctx, src)
	s.metrics.RecordReport("soap_note", res.Status)
	return res
}

func (s *Service) generateSOAPNote(ctx context.Context, src Source) Result {
	if !isSOAPKind(src.Kind()) {
		return errorResult("source kind %s cannot produce a SOAP note", src.Kind())
	}

	fields := src.Extract()
	text, err := NewSOAPNoteRenderer(fields).Render()
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(src.Kind())).Msg("soap note render failed")
		return errorResult("render failed: %v", err)
	}

	name := s.artifactName("soap_note", fields)
	stored, err := s.store.WriteArtifact(ctx, CategorySOAPNotes, name, []byte(text))
	if err != nil {
		s.log.Error().Err(err).Str("artifact", name).Msg("soap note write failed")
		return errorResult("store failed: %v", err)
	}

	s.log.Info().Str("artifact", stored).Str("kind", string(src.Kind())).Msg("soap note generated")
	return Result{
		Status:       StatusSuccess,
		Message:      "SOAP note generated successfully",
		SOAPNoteText: text,
		Filename:     stored,
	}
}

// artifactName derives a unique artifact filename from the client identity,
// the generation time, and a random suffix. Two calls for the same client can
// never collide on the same name.
func (s *Service) artifactName(prefix string, f Fields) string {
	client := slug(display(f["client_name"]))
	if client == "" {
		client = "unknown"
	}
	return fmt.Sprintf("%s_%s_%s_%s.txt",
		prefix, client, s.now().Format("20060102T150405"), uuid.NewString()[:8])
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func errorResult(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}
