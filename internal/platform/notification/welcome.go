package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/careintake/intake/internal/platform/recordstore"
)

// WelcomeResult is the uniform outcome of a welcome email attempt.
type WelcomeResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Recipient string `json:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// WelcomeService sends the type-aware welcome email after a client
// submission. If the caller supplies no identity, the latest stored
// submission is used.
type WelcomeService struct {
	mgr          *Manager
	store        recordstore.Store
	category     string
	organization string
}

func NewWelcomeService(mgr *Manager, store recordstore.Store, category, organization string) *WelcomeService {
	return &WelcomeService{mgr: mgr, store: store, category: category, organization: organization}
}

// SendWelcome resolves the client identity and submission kind, renders the
// matching welcome template, and sends it. Failures come back in the result,
// never as a panic or a process-fatal error.
func (s *WelcomeService) SendWelcome(ctx context.Context, clientName, clientEmail string) WelcomeResult {
	templateID := TemplateWelcomeInquiry

	if clientName == "" || clientEmail == "" {
		rec, err := s.store.GetLatest(ctx, s.category)
		if err != nil {
			if errors.Is(err, recordstore.ErrCategoryEmpty) {
				return WelcomeResult{Status: "error", Message: "no client data found"}
			}
			return WelcomeResult{Status: "error", Message: fmt.Sprintf("load client data: %v", err)}
		}
		if clientName == "" {
			clientName, _ = rec.Data["client_name"].(string)
		}
		if clientEmail == "" {
			clientEmail, _ = rec.Data["client_email"].(string)
		}
		templateID = templateFor(rec.Data)
	}

	if clientName == "" || clientEmail == "" {
		return WelcomeResult{Status: "error", Message: "missing client name or email"}
	}

	n, err := s.mgr.SendFromTemplate(ctx, templateID, map[string]string{
		"client_name":  clientName,
		"organization": s.organization,
	}, clientEmail)
	if err != nil {
		return WelcomeResult{Status: "error", Message: fmt.Sprintf("failed to send email: %v", err)}
	}

	return WelcomeResult{
		Status:    "success",
		Message:   fmt.Sprintf("Welcome email sent successfully to %s (%s)", clientName, clientEmail),
		Recipient: clientEmail,
		Subject:   n.Subject,
	}
}

// templateFor detects the submission kind by key presence: referrals carry
// referral_type, inquiries carry relationship.
func templateFor(data map[string]any) string {
	if _, ok := data["referral_type"]; ok {
		return TemplateWelcomeReferral
	}
	return TemplateWelcomeInquiry
}
