package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FieldError reports a single violated rule on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated rule so the caller sees the full
// set of problems on one pass, not just the first.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("validation failed (%d): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// violations collects field errors during a validation pass.
type violations struct {
	errs []FieldError
}

func (v *violations) add(field, rule, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Field: field, Rule: rule, Message: fmt.Sprintf(format, args...)})
}

func (v *violations) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errs}
}

func (v *violations) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "required", "value is required")
	}
}

func (v *violations) date(field string, d Date, required bool) {
	if d.invalid {
		v.add(field, "date", "%q is not a valid date, expected YYYY-MM-DD", d.raw)
		return
	}
	if required && d.IsZero() {
		v.add(field, "required", "date is required")
	}
}

func (v *violations) dateOpt(field string, d *Date) {
	if d != nil {
		v.date(field, *d, false)
	}
}

func (v *violations) datetime(field string, d DateTime, required bool) {
	if d.invalid {
		v.add(field, "datetime", "%q is not a valid timestamp", d.raw)
		return
	}
	if required && d.IsZero() {
		v.add(field, "required", "timestamp is required")
	}
}

func (v *violations) currency(field string, amount float64) {
	if amount < 0 {
		v.add(field, "range", "amount must not be negative, got %v", amount)
	}
	if amount > MaxBenefitTotal {
		v.add(field, "range", "amount must not exceed %d, got %v", MaxBenefitTotal, amount)
	}
}

func (v *violations) percent(field string, pct float64) {
	if pct < 0 || pct > 100 {
		v.add(field, "range", "percentage must be between 0 and 100, got %v", pct)
	}
}

func (v *violations) yesNo(field string, val YesNo) {
	if val == "" {
		v.add(field, "required", "value is required")
		return
	}
	if !yesNoValues[val] {
		v.add(field, "enum", "%q is not Yes or No", val)
	}
}

func (v *violations) minLen(field, value string, min int) {
	if value != "" && len(value) < min {
		v.add(field, "min_length", "must be at least %d characters, got %d", min, len(value))
	}
}

// conditional enforces that a field is populated exactly when its trigger
// holds. present reports whether the field carries a value.
func (v *violations) conditional(field string, present, trigger bool, when string) {
	switch {
	case trigger && !present:
		v.add(field, "conditional", "required when %s", when)
	case !trigger && present:
		v.add(field, "conditional", "must be empty unless %s", when)
	}
}

// followUpNotesMinLen is the floor on free-text follow-up and hold notes.
const followUpNotesMinLen = 50

// ---------------------------------------------------------------------------
// BenefitCheckRecord validation
// ---------------------------------------------------------------------------

// Validate checks every rule on the record and returns a *ValidationError
// listing all violations, or nil when the record is clean.
func (r *BenefitCheckRecord) Validate() error {
	v := &violations{}

	ci := r.ClientInformation
	v.required("client_information.intake_client_id", ci.IntakeClientID)
	v.required("client_information.child_first_name", ci.ChildFirstName)
	v.required("client_information.child_last_name", ci.ChildLastName)
	v.date("client_information.birth_date", ci.BirthDate, true)

	ins := r.InsuranceInformation
	v.required("insurance_information.plan_name", ins.PlanName)
	v.date("insurance_information.coverage_start_date", ins.CoverageStartDate, true)
	v.date("insurance_information.coverage_end_date", ins.CoverageEndDate, true)
	v.required("insurance_information.subscriber_first_name", ins.SubscriberFirstName)
	v.required("insurance_information.subscriber_last_name", ins.SubscriberLastName)
	v.date("insurance_information.subscriber_dob", ins.SubscriberDOB, true)
	v.required("insurance_information.subscriber_id", ins.SubscriberID)
	if ins.CoverageStartDate.Set() && ins.CoverageEndDate.Set() && ins.CoverageEndDate.Before(ins.CoverageStartDate.Time) {
		v.add("insurance_information.coverage_end_date", "range", "coverage end precedes coverage start")
	}

	doc := r.DocumentInformation
	if !documentStatusValues[doc.DocumentStatus] {
		v.add("document_information.document_status", "enum", "%q is not a valid document status", doc.DocumentStatus)
	}
	v.dateOpt("document_information.date_completed", doc.DateCompleted)
	v.dateOpt("document_information.next_follow_up_date", doc.NextFollowUpDate)
	v.minLen("document_information.follow_up_notes", doc.FollowUpNotes, followUpNotesMinLen)

	bi := r.BenefitInformation
	v.yesNo("individual_family_benefit_information.in_network_with_plan", bi.InNetworkWithPlan)
	if !taxProcessingValues[bi.TaxProcessedAs] {
		v.add("individual_family_benefit_information.tax_identification_number_processed_as", "enum",
			"%q is not a valid tax processing category", bi.TaxProcessedAs)
	}
	v.currency("individual_family_benefit_information.individual_deductible", bi.IndividualDeductible)
	v.currency("individual_family_benefit_information.individual_deductible_met", bi.IndividualDeductibleMet)
	v.currency("individual_family_benefit_information.family_deductible", bi.FamilyDeductible)
	v.currency("individual_family_benefit_information.family_deductible_met", bi.FamilyDeductibleMet)
	v.currency("individual_family_benefit_information.individual_opm", bi.IndividualOPM)
	v.currency("individual_family_benefit_information.individual_opm_met", bi.IndividualOPMMet)
	v.currency("individual_family_benefit_information.family_opm", bi.FamilyOPM)
	v.currency("individual_family_benefit_information.family_opm_met", bi.FamilyOPMMet)
	v.currency("individual_family_benefit_information.copay_per_visit", bi.CopayPerVisit)
	v.percent("individual_family_benefit_information.coinsurance_percentage", bi.CoinsurancePercentage)
	if !benefitRunValues[bi.AccumulationsRunOn] {
		v.add("individual_family_benefit_information.accumulations_run_on", "enum",
			"%q is not a valid accumulation period", bi.AccumulationsRunOn)
	}
	v.yesNo("individual_family_benefit_information.services_covered_100_percent", bi.ServicesCovered100Percent)
	if !benefitApplyValues[bi.BenefitApply] {
		v.add("individual_family_benefit_information.individual_or_family_benefit_apply", "enum",
			"%q is not a valid benefit application", bi.BenefitApply)
	}
	v.yesNo("individual_family_benefit_information.copays_apply_to_opm", bi.CopaysApplyToOPM)
	v.yesNo("individual_family_benefit_information.deductible_apply_to_opm", bi.DeductibleAppliesToOPM)
	v.yesNo("individual_family_benefit_information.deductible_before_coinsurance_copay", bi.DeductibleBeforeCoinsurance)

	pos := r.PlaceOfService
	v.yesNo("place_of_service_benefits.telehealth_pos_02", pos.Telehealth)
	v.yesNo("place_of_service_benefits.school_pos_03", pos.School)
	v.yesNo("place_of_service_benefits.office_pos_11", pos.Office)
	v.yesNo("place_of_service_benefits.home_pos_12", pos.Home)
	v.yesNo("place_of_service_benefits.community_pos_99", pos.Community)

	bd := r.BenefitDetails
	v.yesNo("benefit_details.prior_auth_required_evaluation", bd.PriorAuthRequiredEvaluation)
	v.yesNo("benefit_details.prior_auth_required_therapy", bd.PriorAuthRequiredTherapy)
	v.yesNo("benefit_details.max_cap_exists", bd.MaxCapExists)
	v.yesNo("benefit_details.pre_existing_conditions_exclusions", bd.PreExistingExclusions)
	v.conditional("benefit_details.max_cap_amount", bd.MaxCapAmount != nil,
		bd.MaxCapExists == Yes, "max_cap_exists is Yes")
	v.conditional("benefit_details.visit_limit_per_year", bd.VisitLimitPerYear != nil,
		bd.MaxCapExists == Yes, "max_cap_exists is Yes")
	if bd.MaxCapAmount != nil {
		v.currency("benefit_details.max_cap_amount", *bd.MaxCapAmount)
	}
	if bd.VisitLimitPerYear != nil && *bd.VisitLimitPerYear < 0 {
		v.add("benefit_details.visit_limit_per_year", "range", "visit limit must not be negative")
	}

	cob := r.Coordination
	v.yesNo("coordination_of_benefits.client_has_other_insurances", cob.ClientHasOtherInsurances)
	if !payorStatusValues[cob.PayorStatus] {
		v.add("coordination_of_benefits.payor_status", "enum", "%q is not a valid payor status", cob.PayorStatus)
	}
	v.dateOpt("coordination_of_benefits.cob_completion_date", cob.COBCompletionDate)
	v.yesNo("coordination_of_benefits.benefits_match_portal_inquiry", cob.BenefitsMatchPortalInquiry)

	pc := r.PayorContact
	v.required("payor_contact_information.payor_rep_name", pc.PayorRepName)
	v.required("payor_contact_information.call_reference_number", pc.CallReferenceNumber)
	v.date("payor_contact_information.date_of_call", pc.DateOfCall, true)

	sum := r.Summary
	v.yesNo("benefit_check_summary_information.send_benefit_check_summary", sum.SendBenefitCheckSummary)
	v.yesNo("benefit_check_summary_information.popup_benefit_check_summary", sum.PopupBenefitCheckSummary)
	if !documentStatusValues[sum.DocumentStatus] {
		v.add("benefit_check_summary_information.document_status", "enum",
			"%q is not a valid document status", sum.DocumentStatus)
	}
	v.minLen("benefit_check_summary_information.follow_up_notes", sum.FollowUpNotes, followUpNotesMinLen)
	v.dateOpt("benefit_check_summary_information.next_follow_up_date", sum.NextFollowUpDate)

	return v.err()
}

// ---------------------------------------------------------------------------
// SOAPNoteRecord validation
// ---------------------------------------------------------------------------

func (r *SOAPNoteRecord) Validate() error {
	v := &violations{}

	c := r.Components
	v.required("soap_components.subjective", c.Subjective)
	v.required("soap_components.objective", c.Objective)
	v.required("soap_components.assessment", c.Assessment)
	v.required("soap_components.plan", c.Plan)

	cd := r.ClientDetails
	if cd.IntakeClientID <= 0 {
		v.add("client_details.intake_client_id", "required", "client id must be positive")
	}
	v.required("client_details.client_first_name", cd.FirstName)
	v.required("client_details.client_last_name", cd.LastName)
	v.date("client_details.birth_date", cd.BirthDate, true)
	v.required("client_details.availability_for_sessions", cd.Availability)

	av := r.IntakeAvailability
	if !intakeStatusValues[av.Status] {
		v.add("available_for_intake_info.status", "enum", "%q is not a valid intake status", av.Status)
	}
	v.conditional("available_for_intake_info.hold_reason", strings.TrimSpace(av.HoldReason) != "",
		av.Status == StatusOnHold, "status is On Hold")
	v.minLen("available_for_intake_info.hold_reason", av.HoldReason, followUpNotesMinLen)
	v.minLen("available_for_intake_info.follow_up_notes", av.FollowUpNotes, followUpNotesMinLen)

	v.required("insurance_information.plan_name", r.Insurance.PlanName)

	bd := r.BenefitDetails
	authRequired := bd.PriorAuthRequiredEvaluation || bd.PriorAuthRequiredTherapy
	v.conditional("benefit_details.prior_auth_info", strings.TrimSpace(bd.PriorAuthInfo) != "",
		authRequired, "prior authorization is required")
	v.conditional("benefit_details.max_cap_amount", bd.MaxCapAmount != nil,
		bd.HasMaxCap, "has_max_cap is true")
	v.conditional("benefit_details.visit_limit_per_year", bd.VisitLimitPerYear != nil,
		bd.HasMaxCap, "has_max_cap is true")
	if bd.MaxCapAmount != nil {
		v.currency("benefit_details.max_cap_amount", *bd.MaxCapAmount)
	}
	if bd.VisitLimitPerYear != nil && *bd.VisitLimitPerYear < 0 {
		v.add("benefit_details.visit_limit_per_year", "range", "visit limit must not be negative")
	}

	pos := map[string]POSBenefit{
		"place_of_service_benefits.telehealth_pos_02": r.PlaceOfService.Telehealth,
		"place_of_service_benefits.school_pos_03":     r.PlaceOfService.School,
		"place_of_service_benefits.office_pos_11":     r.PlaceOfService.Office,
		"place_of_service_benefits.home_pos_12":       r.PlaceOfService.Home,
		"place_of_service_benefits.community_pos_99":  r.PlaceOfService.Community,
	}
	for field, val := range pos {
		if !posBenefitValues[val] {
			v.add(field, "enum", "%q is not a valid place-of-service benefit", val)
		}
	}

	doc := r.DocumentInformation
	if !documentStatusValues[doc.DocumentStatus] {
		v.add("document_information.document_status", "enum", "%q is not a valid document status", doc.DocumentStatus)
	}
	if doc.DateTimeCompleted != nil {
		v.datetime("document_information.date_time_completed", *doc.DateTimeCompleted, false)
	}
	v.minLen("document_information.follow_up_notes", doc.FollowUpNotes, followUpNotesMinLen)

	v.datetime("created_at", r.CreatedAt, true)
	if r.UpdatedAt != nil {
		v.datetime("updated_at", *r.UpdatedAt, false)
	}
	v.required("created_by", r.CreatedBy)

	return v.err()
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseBenefitCheck decodes a stored mapping into a typed record and validates
// it. Unknown keys are ignored; a shape mismatch (for example a string where a
// number belongs) is reported as a decode violation.
func ParseBenefitCheck(m map[string]any) (*BenefitCheckRecord, error) {
	var r BenefitCheckRecord
	if err := decodeInto(m, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseSOAPNote decodes a stored mapping into a typed SOAP note and validates it.
func ParseSOAPNote(m map[string]any) (*SOAPNoteRecord, error) {
	var r SOAPNoteRecord
	if err := decodeInto(m, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeInto(m map[string]any, dst any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Rule: "decode", Message: err.Error()}}}
	}
	if err := json.Unmarshal(b, dst); err != nil {
		fe := FieldError{Rule: "decode", Message: err.Error()}
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			fe.Field = ute.Field
			fe.Message = fmt.Sprintf("expected %s, got %s", ute.Type, ute.Value)
		}
		return &ValidationError{Errors: []FieldError{fe}}
	}
	return nil
}
