package report

import (
	"strings"
	"time"

	"github.com/careintake/intake/internal/domain/intake"
)

// ---------------------------------------------------------------------------
// Benefit summary sources
// ---------------------------------------------------------------------------

// RawBenefit is an untyped nested mapping, as stored by the record store or
// sent by an external caller. Extraction tolerates any missing section.
type RawBenefit map[string]any

func (RawBenefit) Kind() SourceKind { return KindRawBenefit }

func (m RawBenefit) Extract() Fields {
	clientInfo := subMap(m, "client_information")
	insuranceInfo := subMap(m, "insurance_information")
	benefitInfo := subMap(m, "individual_family_benefit_information")
	benefitDetails := subMap(m, "benefit_details")
	payorContact := subMap(m, "payor_contact_information")
	otherDetails := subMap(m, "other_benefit_details")

	name := strings.TrimSpace(str(clientInfo, "child_first_name") + " " + str(clientInfo, "child_last_name"))

	f := Fields{
		"client_name":               placeholderIfEmpty(name),
		"insurance_company":         placeholderIfEmpty(str(insuranceInfo, "plan_name")),
		"benefits_checked_on":       normalizeDate(payorContact["date_of_call"]),
		"individual_deductible":     num(benefitInfo, "individual_deductible"),
		"individual_deductible_met": num(benefitInfo, "individual_deductible_met"),
		"family_deductible":         num(benefitInfo, "family_deductible"),
		"family_deductible_met":     num(benefitInfo, "family_deductible_met"),
		"individual_opm":            num(benefitInfo, "individual_opm"),
		"individual_opm_met":        num(benefitInfo, "individual_opm_met"),
		"family_opm":                num(benefitInfo, "family_opm"),
		"family_opm_met":            num(benefitInfo, "family_opm_met"),
		"copay_per_visit":           num(benefitInfo, "copay_per_visit"),
		"coinsurance_percentage":    num(benefitInfo, "coinsurance_percentage"),
		"prior_auth_required":       strDefault(benefitDetails, "prior_auth_required_therapy", "No"),
		"max_cap_exists":            strDefault(benefitDetails, "max_cap_exists", "No"),
		"other_benefit_details":     str(otherDetails, "benefit_details"),
	}
	if v, ok := benefitDetails["max_cap_amount"]; ok && v != nil {
		f["max_cap_amount"] = v
	}
	if v, ok := benefitDetails["visit_limit_per_year"]; ok && v != nil {
		f["visit_limit_per_year"] = normalizeCount(v)
	}
	return f
}

// BenefitRecord wraps a validated typed record. Extracting it yields the same
// flat mapping as extracting the equivalent raw mapping.
type BenefitRecord struct {
	Record *intake.BenefitCheckRecord
}

func (BenefitRecord) Kind() SourceKind { return KindBenefitRecord }

func (s BenefitRecord) Extract() Fields {
	r := s.Record
	bi := r.BenefitInformation
	bd := r.BenefitDetails

	name := strings.TrimSpace(r.ClientInformation.ChildFirstName + " " + r.ClientInformation.ChildLastName)

	f := Fields{
		"client_name":               placeholderIfEmpty(name),
		"insurance_company":         placeholderIfEmpty(r.InsuranceInformation.PlanName),
		"benefits_checked_on":       r.PayorContact.DateOfCall.Display(),
		"individual_deductible":     bi.IndividualDeductible,
		"individual_deductible_met": bi.IndividualDeductibleMet,
		"family_deductible":         bi.FamilyDeductible,
		"family_deductible_met":     bi.FamilyDeductibleMet,
		"individual_opm":            bi.IndividualOPM,
		"individual_opm_met":        bi.IndividualOPMMet,
		"family_opm":                bi.FamilyOPM,
		"family_opm_met":            bi.FamilyOPMMet,
		"copay_per_visit":           bi.CopayPerVisit,
		"coinsurance_percentage":    bi.CoinsurancePercentage,
		"prior_auth_required":       string(bd.PriorAuthRequiredTherapy),
		"max_cap_exists":            string(bd.MaxCapExists),
		"other_benefit_details":     r.OtherDetails.BenefitDetails,
	}
	if bd.MaxCapAmount != nil {
		f["max_cap_amount"] = *bd.MaxCapAmount
	}
	if bd.VisitLimitPerYear != nil {
		f["visit_limit_per_year"] = *bd.VisitLimitPerYear
	}
	return f
}

// CopaySummary is a pre-built copay-focused summary. It carries no deductible
// or out-of-pocket figures, so those report sections are omitted.
type CopaySummary struct {
	ClientName               string
	InsuranceCompany         string
	BenefitsCheckedOn        intake.Date
	CopayAmount              float64
	PreauthorizationRequired intake.YesNo
	MaxCapOrVisitLimit       intake.YesNo
	CapVisitLimitValue       string
	OtherBenefitDetails      string
}

func (CopaySummary) Kind() SourceKind { return KindCopaySummary }

func (s CopaySummary) Extract() Fields {
	f := Fields{
		"client_name":            placeholderIfEmpty(s.ClientName),
		"insurance_company":      placeholderIfEmpty(s.InsuranceCompany),
		"benefits_checked_on":    s.BenefitsCheckedOn.Display(),
		"copay_per_visit":        s.CopayAmount,
		"coinsurance_percentage": float64(0),
		"prior_auth_required":    string(s.PreauthorizationRequired),
		"max_cap_exists":         string(s.MaxCapOrVisitLimit),
		"other_benefit_details":  s.OtherBenefitDetails,
	}
	if s.CapVisitLimitValue != "" {
		f["cap_visit_limit_value"] = s.CapVisitLimitValue
	}
	return f
}

// DeductibleSummary is a pre-built deductible-focused summary carrying the
// full set of benefit figures.
type DeductibleSummary struct {
	ClientName               string
	InsuranceCompany         string
	BenefitsCheckedOn        intake.Date
	IndividualDeductible     float64
	IndividualDeductibleMet  float64
	FamilyDeductible         float64
	FamilyDeductibleMet      float64
	IndividualOPM            float64
	IndividualOPMMet         float64
	FamilyOPM                float64
	FamilyOPMMet             float64
	Coinsurance              float64
	PreauthorizationRequired intake.YesNo
	MaxCapOrVisitLimit       intake.YesNo
	CapVisitLimitValue       string
	OtherBenefitDetails      string
}

func (DeductibleSummary) Kind() SourceKind { return KindDeductibleSummary }

func (s DeductibleSummary) Extract() Fields {
	f := Fields{
		"client_name":               placeholderIfEmpty(s.ClientName),
		"insurance_company":         placeholderIfEmpty(s.InsuranceCompany),
		"benefits_checked_on":       s.BenefitsCheckedOn.Display(),
		"individual_deductible":     s.IndividualDeductible,
		"individual_deductible_met": s.IndividualDeductibleMet,
		"family_deductible":         s.FamilyDeductible,
		"family_deductible_met":     s.FamilyDeductibleMet,
		"individual_opm":            s.IndividualOPM,
		"individual_opm_met":        s.IndividualOPMMet,
		"family_opm":                s.FamilyOPM,
		"family_opm_met":            s.FamilyOPMMet,
		"copay_per_visit":           float64(0),
		"coinsurance_percentage":    s.Coinsurance,
		"prior_auth_required":       string(s.PreauthorizationRequired),
		"max_cap_exists":            string(s.MaxCapOrVisitLimit),
		"other_benefit_details":     s.OtherBenefitDetails,
	}
	if s.CapVisitLimitValue != "" {
		f["cap_visit_limit_value"] = s.CapVisitLimitValue
	}
	return f
}

// ---------------------------------------------------------------------------
// SOAP note sources
// ---------------------------------------------------------------------------

// RawSOAPNote is an untyped nested SOAP note mapping.
type RawSOAPNote map[string]any

func (RawSOAPNote) Kind() SourceKind { return KindRawSOAPNote }

func (m RawSOAPNote) Extract() Fields {
	components := subMap(m, "soap_components")
	clientDetails := subMap(m, "client_details")
	availability := subMap(m, "available_for_intake_info")
	insurance := subMap(m, "insurance_information")
	benefitDetails := subMap(m, "benefit_details")
	pos := subMap(m, "place_of_service_benefits")
	docInfo := subMap(m, "document_information")

	name := strings.TrimSpace(str(clientDetails, "client_first_name") + " " + str(clientDetails, "client_last_name"))

	f := Fields{
		"client_id":           normalizeCount(clientDetails["intake_client_id"]),
		"client_name":         placeholderIfEmpty(name),
		"birth_date":          normalizeDate(clientDetails["birth_date"]),
		"clinic_preference_1": str(clientDetails, "clinic_preference_1"),
		"clinic_preference_2": str(clientDetails, "clinic_preference_2"),
		"clinic_preference_3": str(clientDetails, "clinic_preference_3"),
		"availability":        placeholderIfEmpty(str(clientDetails, "availability_for_sessions")),

		"subjective": placeholderIfEmpty(str(components, "subjective")),
		"objective":  placeholderIfEmpty(str(components, "objective")),
		"assessment": placeholderIfEmpty(str(components, "assessment")),
		"plan":       placeholderIfEmpty(str(components, "plan")),

		"status":                 placeholderIfEmpty(str(availability, "status")),
		"hold_reason":            str(availability, "hold_reason"),
		"intake_follow_up_notes": str(availability, "follow_up_notes"),

		"plan_name": placeholderIfEmpty(str(insurance, "plan_name")),

		"prior_auth_required_evaluation": boolVal(benefitDetails, "prior_auth_required_evaluation"),
		"prior_auth_required_therapy":    boolVal(benefitDetails, "prior_auth_required_therapy"),
		"prior_auth_info":                str(benefitDetails, "prior_auth_info"),
		"has_max_cap":                    boolVal(benefitDetails, "has_max_cap"),

		"pos_telehealth": placeholderIfEmpty(str(pos, "telehealth_pos_02")),
		"pos_school":     placeholderIfEmpty(str(pos, "school_pos_03")),
		"pos_office":     placeholderIfEmpty(str(pos, "office_pos_11")),
		"pos_home":       placeholderIfEmpty(str(pos, "home_pos_12")),
		"pos_community":  placeholderIfEmpty(str(pos, "community_pos_99")),

		"document_status":          placeholderIfEmpty(str(docInfo, "document_status")),
		"date_time_completed":      normalizeDateTime(docInfo["date_time_completed"]),
		"completed_by":             str(docInfo, "completed_by"),
		"place_of_service_covered": str(docInfo, "place_of_service_covered"),
		"document_follow_up_notes": str(docInfo, "follow_up_notes"),

		"created_at": normalizeDateTime(m["created_at"]),
		"created_by": placeholderIfEmpty(str(m, "created_by")),
	}
	if v, ok := benefitDetails["max_cap_amount"]; ok && v != nil {
		f["max_cap_amount"] = v
	}
	if v, ok := benefitDetails["visit_limit_per_year"]; ok && v != nil {
		f["visit_limit_per_year"] = normalizeCount(v)
	}
	return f
}

// SOAPNoteRecord wraps a validated typed SOAP note.
type SOAPNoteRecord struct {
	Record *intake.SOAPNoteRecord
}

func (SOAPNoteRecord) Kind() SourceKind { return KindSOAPNoteRecord }

func (s SOAPNoteRecord) Extract() Fields {
	r := s.Record
	bd := r.BenefitDetails

	f := Fields{
		"client_id":           r.ClientDetails.IntakeClientID,
		"client_name":         strings.TrimSpace(r.ClientDetails.FirstName + " " + r.ClientDetails.LastName),
		"birth_date":          r.ClientDetails.BirthDate.Display(),
		"clinic_preference_1": r.ClientDetails.ClinicPreference1,
		"clinic_preference_2": r.ClientDetails.ClinicPreference2,
		"clinic_preference_3": r.ClientDetails.ClinicPreference3,
		"availability":        r.ClientDetails.Availability,

		"subjective": r.Components.Subjective,
		"objective":  r.Components.Objective,
		"assessment": r.Components.Assessment,
		"plan":       r.Components.Plan,

		"status":                 string(r.IntakeAvailability.Status),
		"hold_reason":            r.IntakeAvailability.HoldReason,
		"intake_follow_up_notes": r.IntakeAvailability.FollowUpNotes,

		"plan_name": r.Insurance.PlanName,

		"prior_auth_required_evaluation": bd.PriorAuthRequiredEvaluation,
		"prior_auth_required_therapy":    bd.PriorAuthRequiredTherapy,
		"prior_auth_info":                bd.PriorAuthInfo,
		"has_max_cap":                    bd.HasMaxCap,

		"pos_telehealth": string(r.PlaceOfService.Telehealth),
		"pos_school":     string(r.PlaceOfService.School),
		"pos_office":     string(r.PlaceOfService.Office),
		"pos_home":       string(r.PlaceOfService.Home),
		"pos_community":  string(r.PlaceOfService.Community),

		"document_status":          string(r.DocumentInformation.DocumentStatus),
		"completed_by":             r.DocumentInformation.CompletedBy,
		"place_of_service_covered": r.DocumentInformation.PlaceOfServiceCovered,
		"document_follow_up_notes": r.DocumentInformation.FollowUpNotes,

		"created_at": r.CreatedAt.Display(),
		"created_by": r.CreatedBy,
	}
	if r.DocumentInformation.DateTimeCompleted != nil {
		f["date_time_completed"] = r.DocumentInformation.DateTimeCompleted.Display()
	} else {
		f["date_time_completed"] = ""
	}
	if bd.MaxCapAmount != nil {
		f["max_cap_amount"] = *bd.MaxCapAmount
	}
	if bd.VisitLimitPerYear != nil {
		f["visit_limit_per_year"] = *bd.VisitLimitPerYear
	}
	return f
}

// ---------------------------------------------------------------------------
// Raw mapping helpers
// ---------------------------------------------------------------------------

func subMap(m map[string]any, key string) map[string]any {
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	return map[string]any{}
}

func str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func strDefault(m map[string]any, key, def string) string {
	if s := str(m, key); s != "" {
		return s
	}
	return def
}

// num returns the value under key, defaulting to zero when absent. The value
// is kept as-is so the renderer owns coercion failures.
func num(m map[string]any, key string) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return float64(0)
}

func boolVal(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func placeholderIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func normalizeDateTime(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, d); err == nil {
				return t.Format("01/02/2006 15:04")
			}
		}
		return d
	default:
		return ""
	}
}
