package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/careintake/intake/internal/platform/recordstore"
)

// CategoryClients is the record store category for collected client
// submissions.
const CategoryClients = "clients"

// Metrics counts submission outcomes. The telemetry package satisfies it;
// a nil value disables counting.
type Metrics interface {
	RecordSubmission(kind, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordSubmission(string, string) {}

// SubmissionService validates and persists initial contact submissions, and
// serves them back for downstream processing.
type SubmissionService struct {
	store   recordstore.Store
	log     zerolog.Logger
	metrics Metrics
	now     func() time.Time
}

func NewSubmissionService(store recordstore.Store, log zerolog.Logger, metrics Metrics) *SubmissionService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &SubmissionService{store: store, log: log, metrics: metrics, now: time.Now}
}

// Submit validates the submission against its detected schema, annotates it
// with its kind and receipt time, and stores it. Returns the stored record
// name.
func (s *SubmissionService) Submit(ctx context.Context, m map[string]any) (string, error) {
	kind := SubmissionKind(m)
	if kind == "" {
		s.metrics.RecordSubmission("unknown", "rejected")
		return "", &ValidationError{Errors: []FieldError{{
			Field: "record_type", Rule: "required",
			Message: "submission matches neither provider referral nor family inquiry",
		}}}
	}
	schema, err := SchemaFor(kind)
	if err != nil {
		return "", err
	}
	if err := schema.ValidateSubmission(m); err != nil {
		s.metrics.RecordSubmission(kind, "rejected")
		return "", err
	}

	m["record_type"] = kind
	m["submitted_at"] = s.now().UTC().Format(time.RFC3339)

	name := submissionName(kind, m)
	if err := s.store.Put(ctx, CategoryClients, name, m); err != nil {
		s.metrics.RecordSubmission(kind, "error")
		return "", fmt.Errorf("store submission: %w", err)
	}
	s.metrics.RecordSubmission(kind, "accepted")
	s.log.Info().Str("kind", kind).Str("record", name).Msg("client submission stored")
	return name, nil
}

// Latest returns the most recently stored submission.
func (s *SubmissionService) Latest(ctx context.Context) (*recordstore.Record, error) {
	return s.store.GetLatest(ctx, CategoryClients)
}

// List returns all stored submissions, oldest first.
func (s *SubmissionService) List(ctx context.Context) ([]recordstore.Record, error) {
	return s.store.List(ctx, CategoryClients)
}

func submissionName(kind string, m map[string]any) string {
	prefix := "inquiry"
	if kind == KindProviderReferral {
		prefix = "referral"
	}
	name, _ := m["client_name"].(string)
	return prefix + "_" + nameSlug(name)
}

func nameSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unnamed"
	}
	return out
}
