package report

import (
	"fmt"
	"strings"
)

// NewSOAPNoteRenderer builds the single-use renderer for the clinical SOAP
// note report.
func NewSOAPNoteRenderer(f Fields) *Renderer {
	return &Renderer{fields: f, sections: soapSections()}
}

func soapSections() []section {
	return []section{
		{when: always, render: renderSOAPClientBlock},
		{when: always, render: renderSOAPNarrative},
		{when: always, render: renderSOAPIntakeStatus},
		{when: always, render: renderSOAPInsurance},
		{when: always, render: renderSOAPBenefits},
		{when: always, render: renderSOAPPlaceOfService},
		{when: always, render: renderSOAPDocumentInfo},
		{when: fieldPresent("document_follow_up_notes"), render: renderSOAPFollowUp},
		{when: always, render: renderSOAPFooter},
	}
}

func renderSOAPClientBlock(f Fields, b *strings.Builder) error {
	b.WriteString("CLINICAL SOAP NOTE")
	fmt.Fprintf(b, "\n\nClient ID: %v", f["client_id"])
	fmt.Fprintf(b, "\nClient Name: %s", display(f["client_name"]))
	fmt.Fprintf(b, "\nBirth Date: %s", display(f["birth_date"]))

	var prefs []string
	for _, key := range []string{"clinic_preference_1", "clinic_preference_2", "clinic_preference_3"} {
		if f.Has(key) {
			prefs = append(prefs, display(f[key]))
		}
	}
	if len(prefs) > 0 {
		fmt.Fprintf(b, "\nClinic Preferences: %s", strings.Join(prefs, ", "))
	}
	fmt.Fprintf(b, "\nAvailability: %s", display(f["availability"]))
	return nil
}

func renderSOAPNarrative(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nSUBJECTIVE:\n%s", display(f["subjective"]))
	fmt.Fprintf(b, "\n\nOBJECTIVE:\n%s", display(f["objective"]))
	fmt.Fprintf(b, "\n\nASSESSMENT:\n%s", display(f["assessment"]))
	fmt.Fprintf(b, "\n\nPLAN:\n%s", display(f["plan"]))
	return nil
}

func renderSOAPIntakeStatus(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nINTAKE STATUS: %s", display(f["status"]))
	if f.Has("hold_reason") {
		fmt.Fprintf(b, "\nHold Reason: %s", display(f["hold_reason"]))
	}
	if f.Has("intake_follow_up_notes") {
		fmt.Fprintf(b, "\nFollow-Up Notes: %s", display(f["intake_follow_up_notes"]))
	}
	return nil
}

func renderSOAPInsurance(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nINSURANCE PLAN: %s", display(f["plan_name"]))
	return nil
}

func renderSOAPBenefits(f Fields, b *strings.Builder) error {
	b.WriteString("\n\nBENEFIT DETAILS:")
	fmt.Fprintf(b, "\nPrior Authorization Required (Evaluation): %s", yesNoDisplay(f["prior_auth_required_evaluation"]))
	fmt.Fprintf(b, "\nPrior Authorization Required (Therapy): %s", yesNoDisplay(f["prior_auth_required_therapy"]))
	if f.Has("prior_auth_info") {
		fmt.Fprintf(b, "\nPrior Authorization Info: %s", display(f["prior_auth_info"]))
	}
	fmt.Fprintf(b, "\nMaximum Annual Cap: %s", yesNoDisplay(f["has_max_cap"]))
	if f.Has("max_cap_amount") {
		amount, err := currency("max_cap_amount", f["max_cap_amount"])
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\nMaximum Cap Amount: %s", amount)
	}
	if f.Has("visit_limit_per_year") {
		fmt.Fprintf(b, "\nAnnual Visit Limit: %v visits", f["visit_limit_per_year"])
	}
	return nil
}

func renderSOAPPlaceOfService(f Fields, b *strings.Builder) error {
	b.WriteString("\n\nPLACE OF SERVICE COVERAGE:")
	lines := []struct{ label, key string }{
		{"Telehealth (POS 02)", "pos_telehealth"},
		{"School (POS 03)", "pos_school"},
		{"Office (POS 11)", "pos_office"},
		{"Home (POS 12)", "pos_home"},
		{"Community (POS 99)", "pos_community"},
	}
	for _, l := range lines {
		fmt.Fprintf(b, "\n%s: %s", l.label, display(f[l.key]))
	}
	return nil
}

func renderSOAPDocumentInfo(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nDOCUMENT STATUS: %s", display(f["document_status"]))
	if f.Has("date_time_completed") {
		completed := display(f["date_time_completed"])
		if f.Has("completed_by") {
			completed += " by " + display(f["completed_by"])
		}
		fmt.Fprintf(b, "\nCompleted: %s", completed)
	}
	if f.Has("place_of_service_covered") {
		fmt.Fprintf(b, "\nPlace of Service Covered: %s", display(f["place_of_service_covered"]))
	}
	return nil
}

func renderSOAPFollowUp(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nFollow-Up Notes:\n%s", display(f["document_follow_up_notes"]))
	return nil
}

func renderSOAPFooter(f Fields, b *strings.Builder) error {
	created := display(f["created_at"])
	if f.Has("created_by") {
		created += " by " + display(f["created_by"])
	}
	fmt.Fprintf(b, "\n\nCreated: %s", created)
	return nil
}
