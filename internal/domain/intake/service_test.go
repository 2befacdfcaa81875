package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/careintake/intake/internal/platform/recordstore"
)

func newTestService() (*SubmissionService, *recordstore.MemoryStore) {
	store := recordstore.NewMemoryStore()
	return NewSubmissionService(store, zerolog.Nop(), nil), store
}

// captureMetrics records submission-counter calls for assertion.
type captureMetrics struct {
	calls [][2]string
}

func (c *captureMetrics) RecordSubmission(kind, outcome string) {
	c.calls = append(c.calls, [2]string{kind, outcome})
}

func TestSubmit_CountsOutcomes(t *testing.T) {
	store := recordstore.NewMemoryStore()
	metrics := &captureMetrics{}
	svc := NewSubmissionService(store, zerolog.Nop(), metrics)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, validReferralSubmission()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	bad := validInquirySubmission()
	delete(bad, "client_name")
	svc.Submit(ctx, bad)
	svc.Submit(ctx, map[string]any{"noise": true})

	want := [][2]string{
		{KindProviderReferral, "accepted"},
		{KindFamilyInquiry, "rejected"},
		{"unknown", "rejected"},
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

func TestSubmit_Referral(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	name, err := svc.Submit(ctx, validReferralSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if name != "referral_jane_doe" {
		t.Errorf("record name = %s, want referral_jane_doe", name)
	}

	stored, err := store.Get(ctx, CategoryClients, name)
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	if stored["record_type"] != KindProviderReferral {
		t.Errorf("record_type = %v", stored["record_type"])
	}
	if stored["submitted_at"] == nil {
		t.Error("submitted_at not stamped")
	}
}

func TestSubmit_Inquiry(t *testing.T) {
	svc, _ := newTestService()

	name, err := svc.Submit(context.Background(), validInquirySubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if name != "inquiry_sam_lee" {
		t.Errorf("record name = %s, want inquiry_sam_lee", name)
	}
}

func TestSubmit_UnrecognizedShape(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Submit(context.Background(), map[string]any{"client_name": "Jane"})
	errs := fieldErrors(t, err)
	if !hasFieldError(errs, "record_type", "required") {
		t.Errorf("expected record_type violation, got %v", errs)
	}
}

func TestSubmit_InvalidSubmissionNotStored(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	m := validReferralSubmission()
	m["client_phone"] = "bad"
	if _, err := svc.Submit(ctx, m); err == nil {
		t.Fatal("expected validation error")
	}

	records, err := store.List(ctx, CategoryClients)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("invalid submission was stored: %v", records)
	}
}

func TestLatestAndList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Latest(ctx); !errors.Is(err, recordstore.ErrCategoryEmpty) {
		t.Errorf("expected ErrCategoryEmpty before any submissions, got %v", err)
	}

	first := validReferralSubmission()
	second := validInquirySubmission()
	svc.Submit(ctx, first)
	svc.Submit(ctx, second)

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "referral_jane_doe" {
		t.Errorf("oldest first violated: %s", records[0].Name)
	}

	latest, err := svc.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Name != "inquiry_sam_lee" {
		t.Errorf("latest = %s, want inquiry_sam_lee", latest.Name)
	}
}

func TestNameSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane_doe"},
		{"Mary-Kate O'Neil", "mary_kate_oneil"},
		{"  Ada   Lovelace  ", "ada___lovelace"},
		{"...", "unnamed"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := nameSlug(tt.in); got != tt.want {
			t.Errorf("nameSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
