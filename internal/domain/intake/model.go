package intake

import (
	"encoding/json"
	"time"
)

// Enumerated field domains. Values mirror the paper intake forms, so they are
// stored and compared as display strings rather than codes.

type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

type DocumentStatus string

const (
	DocumentNotStarted DocumentStatus = "Not Started"
	DocumentCompleted  DocumentStatus = "Completed"
	DocumentArchived   DocumentStatus = "Archived"
)

type IntakeStatus string

const (
	StatusDecisionNeeded IntakeStatus = "Decision Needed"
	StatusOnHold         IntakeStatus = "On Hold"
	StatusApproved       IntakeStatus = "Approved for Intake"
)

// POSBenefit describes how a place-of-service category is covered on a
// SOAP note. The benefit check form uses plain Yes/No flags instead.
type POSBenefit string

const (
	POSCopay       POSBenefit = "Copay"
	POSCoinsurance POSBenefit = "Coinsurance"
	POSNotCovered  POSBenefit = "Not Covered"
)

type PayorStatus string

const (
	PayorPrimary   PayorStatus = "Primary"
	PayorSecondary PayorStatus = "Secondary"
	PayorTertiary  PayorStatus = "Tertiary"
	PayorInactive  PayorStatus = "Inactive"
)

type TaxProcessing string

const (
	TaxPCP          TaxProcessing = "PCP"
	TaxSpecialist   TaxProcessing = "Specialist"
	TaxMentalHealth TaxProcessing = "Mental Health Provider"
	TaxABAProvider  TaxProcessing = "ABA Provider"
)

type BenefitRun string

const (
	RunCalendarYear BenefitRun = "Calendar Year"
	RunPlanYear     BenefitRun = "Plan Year"
	RunRollingYear  BenefitRun = "Rolling Year"
)

type BenefitApply string

const (
	ApplyIndividual BenefitApply = "Individual"
	ApplyFamily     BenefitApply = "Family"
	ApplyBoth       BenefitApply = "Both"
)

var (
	yesNoValues = map[YesNo]bool{Yes: true, No: true}

	documentStatusValues = map[DocumentStatus]bool{
		DocumentNotStarted: true, DocumentCompleted: true, DocumentArchived: true,
	}

	intakeStatusValues = map[IntakeStatus]bool{
		StatusDecisionNeeded: true, StatusOnHold: true, StatusApproved: true,
	}

	posBenefitValues = map[POSBenefit]bool{
		POSCopay: true, POSCoinsurance: true, POSNotCovered: true,
	}

	payorStatusValues = map[PayorStatus]bool{
		PayorPrimary: true, PayorSecondary: true, PayorTertiary: true, PayorInactive: true,
	}

	taxProcessingValues = map[TaxProcessing]bool{
		TaxPCP: true, TaxSpecialist: true, TaxMentalHealth: true, TaxABAProvider: true,
	}

	benefitRunValues = map[BenefitRun]bool{
		RunCalendarYear: true, RunPlanYear: true, RunRollingYear: true,
	}

	benefitApplyValues = map[BenefitApply]bool{
		ApplyIndividual: true, ApplyFamily: true, ApplyBoth: true,
	}
)

// MaxBenefitTotal is the upper bound on deductible and out-of-pocket totals.
const MaxBenefitTotal = 99999

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD. A value that fails to
// parse is retained so Validate can report it instead of aborting the decode.
type Date struct {
	time.Time
	raw     string
	invalid bool
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.invalid = true
		d.raw = string(b)
		return nil
	}
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		d.invalid = true
		d.raw = s
		return nil
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// Set reports whether the date carries a usable value.
func (d Date) Set() bool { return !d.invalid && !d.IsZero() }

// Display renders the date as MM/DD/YYYY for reports.
func (d Date) Display() string {
	if !d.Set() {
		return ""
	}
	return d.Format("01/02/2006")
}

// DateTime is a timestamp serialized as RFC 3339. Like Date it survives a bad
// input so validation can report the field by name.
type DateTime struct {
	time.Time
	raw     string
	invalid bool
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.invalid = true
		d.raw = string(b)
		return nil
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	d.invalid = true
	d.raw = s
	return nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

func (d DateTime) Set() bool { return !d.invalid && !d.IsZero() }

// Display renders the timestamp as MM/DD/YYYY HH:MM for reports.
func (d DateTime) Display() string {
	if !d.Set() {
		return ""
	}
	return d.Format("01/02/2006 15:04")
}

// ---------------------------------------------------------------------------
// BenefitCheckRecord
// ---------------------------------------------------------------------------

type ClientInformation struct {
	IntakeClientID           string   `json:"intake_client_id"`
	ChildFirstName           string   `json:"child_first_name"`
	ChildLastName            string   `json:"child_last_name"`
	BirthDate                Date     `json:"birth_date"`
	BenefitVerificationForms []string `json:"benefit_verification_forms,omitempty"`
}

type InsuranceInformation struct {
	PlanName            string `json:"plan_name"`
	CoverageStartDate   Date   `json:"coverage_start_date"`
	CoverageEndDate     Date   `json:"coverage_end_date"`
	PlanAddress         string `json:"plan_address"`
	PayorID             string `json:"zirmed_payor_id"`
	SubscriberFirstName string `json:"subscriber_first_name"`
	SubscriberLastName  string `json:"subscriber_last_name"`
	SubscriberDOB       Date   `json:"subscriber_dob"`
	SubscriberID        string `json:"subscriber_id"`
}

type DocumentInformation struct {
	DocumentStatus   DocumentStatus `json:"document_status"`
	DateCompleted    *Date          `json:"date_completed,omitempty"`
	CompletedBy      string         `json:"completed_by,omitempty"`
	FollowUpNotes    string         `json:"follow_up_notes,omitempty"`
	NextFollowUpDate *Date          `json:"next_follow_up_date,omitempty"`
}

// BenefitInformation holds the individual/family deductible, out-of-pocket
// maximum, coinsurance and copay figures from the benefit verification call.
type BenefitInformation struct {
	InNetworkWithPlan           YesNo         `json:"in_network_with_plan"`
	TaxProcessedAs              TaxProcessing `json:"tax_identification_number_processed_as"`
	IndividualDeductible        float64       `json:"individual_deductible"`
	IndividualDeductibleMet     float64       `json:"individual_deductible_met"`
	FamilyDeductible            float64       `json:"family_deductible"`
	FamilyDeductibleMet         float64       `json:"family_deductible_met"`
	IndividualOPM               float64       `json:"individual_opm"`
	IndividualOPMMet            float64       `json:"individual_opm_met"`
	FamilyOPM                   float64       `json:"family_opm"`
	FamilyOPMMet                float64       `json:"family_opm_met"`
	AccumulationsRunOn          BenefitRun    `json:"accumulations_run_on"`
	ServicesCovered100Percent   YesNo         `json:"services_covered_100_percent"`
	BenefitApply                BenefitApply  `json:"individual_or_family_benefit_apply"`
	BenefitType                 string        `json:"benefit_type_field"`
	CoinsurancePercentage       float64       `json:"coinsurance_percentage"`
	CopayPerVisit               float64       `json:"copay_per_visit"`
	CopaysApplyToOPM            YesNo         `json:"copays_apply_to_opm"`
	DeductibleAppliesToOPM      YesNo         `json:"deductible_apply_to_opm"`
	DeductibleBeforeCoinsurance YesNo         `json:"deductible_before_coinsurance_copay"`
}

// PlaceOfServiceFlags is the Yes/No coverage grid on the benefit check form.
// The five categories are fixed: POS 02, 03, 11, 12, 99.
type PlaceOfServiceFlags struct {
	Telehealth YesNo `json:"telehealth_pos_02"`
	School     YesNo `json:"school_pos_03"`
	Office     YesNo `json:"office_pos_11"`
	Home       YesNo `json:"home_pos_12"`
	Community  YesNo `json:"community_pos_99"`
}

type BenefitDetails struct {
	PriorAuthRequiredEvaluation YesNo    `json:"prior_auth_required_evaluation"`
	PriorAuthRequiredTherapy    YesNo    `json:"prior_auth_required_therapy"`
	PriorAuthSubmissionDetails  string   `json:"prior_auth_submission_details,omitempty"`
	MaxCapExists                YesNo    `json:"max_cap_exists"`
	MaxCapAmount                *float64 `json:"max_cap_amount,omitempty"`
	VisitLimitPerYear           *int     `json:"visit_limit_per_year,omitempty"`
	PreExistingExclusions       YesNo    `json:"pre_existing_conditions_exclusions"`
	PreExistingDetails          string   `json:"pre_existing_details,omitempty"`
}

type CoordinationOfBenefits struct {
	ClientHasOtherInsurances   YesNo       `json:"client_has_other_insurances"`
	OtherInsuranceInformation  string      `json:"other_insurance_information,omitempty"`
	PayorStatus                PayorStatus `json:"payor_status"`
	COBCompletionDate          *Date       `json:"cob_completion_date,omitempty"`
	BenefitsMatchPortalInquiry YesNo       `json:"benefits_match_portal_inquiry"`
	MismatchReason             string      `json:"mismatch_reason,omitempty"`
}

type PayorContact struct {
	PayorRepName        string `json:"payor_rep_name"`
	CallReferenceNumber string `json:"call_reference_number"`
	DateOfCall          Date   `json:"date_of_call"`
}

type OtherBenefitDetails struct {
	BenefitDetails string `json:"benefit_details"`
}

type SummaryInformation struct {
	SendBenefitCheckSummary  YesNo          `json:"send_benefit_check_summary"`
	PopupBenefitCheckSummary YesNo          `json:"popup_benefit_check_summary"`
	DocumentStatus           DocumentStatus `json:"document_status"`
	FollowUpNotes            string         `json:"follow_up_notes,omitempty"`
	NextFollowUpDate         *Date          `json:"next_follow_up_date,omitempty"`
}

// BenefitCheckRecord is the complete insurance benefit verification form.
type BenefitCheckRecord struct {
	ClientInformation    ClientInformation      `json:"client_information"`
	InsuranceInformation InsuranceInformation   `json:"insurance_information"`
	DocumentInformation  DocumentInformation    `json:"document_information"`
	BenefitInformation   BenefitInformation     `json:"individual_family_benefit_information"`
	PlaceOfService       PlaceOfServiceFlags    `json:"place_of_service_benefits"`
	BenefitDetails       BenefitDetails         `json:"benefit_details"`
	Coordination         CoordinationOfBenefits `json:"coordination_of_benefits"`
	PayorContact         PayorContact           `json:"payor_contact_information"`
	OtherDetails         OtherBenefitDetails    `json:"other_benefit_details"`
	Summary              SummaryInformation     `json:"benefit_check_summary_information"`
}

// ---------------------------------------------------------------------------
// SOAPNoteRecord
// ---------------------------------------------------------------------------

type SOAPComponents struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

type ClientDetails struct {
	IntakeClientID    int    `json:"intake_client_id"`
	FirstName         string `json:"client_first_name"`
	LastName          string `json:"client_last_name"`
	BirthDate         Date   `json:"birth_date"`
	ClinicPreference1 string `json:"clinic_preference_1,omitempty"`
	ClinicPreference2 string `json:"clinic_preference_2,omitempty"`
	ClinicPreference3 string `json:"clinic_preference_3,omitempty"`
	Availability      string `json:"availability_for_sessions"`
}

type IntakeAvailability struct {
	Status        IntakeStatus `json:"status"`
	HoldReason    string       `json:"hold_reason,omitempty"`
	FollowUpNotes string       `json:"follow_up_notes,omitempty"`
}

type SOAPInsurance struct {
	PlanName string `json:"plan_name"`
}

type SOAPBenefitDetails struct {
	PriorAuthRequiredEvaluation bool     `json:"prior_auth_required_evaluation"`
	PriorAuthRequiredTherapy    bool     `json:"prior_auth_required_therapy"`
	PriorAuthInfo               string   `json:"prior_auth_info,omitempty"`
	HasMaxCap                   bool     `json:"has_max_cap"`
	MaxCapAmount                *float64 `json:"max_cap_amount,omitempty"`
	VisitLimitPerYear           *int     `json:"visit_limit_per_year,omitempty"`
}

type PlaceOfServiceCoverage struct {
	Telehealth POSBenefit `json:"telehealth_pos_02"`
	School     POSBenefit `json:"school_pos_03"`
	Office     POSBenefit `json:"office_pos_11"`
	Home       POSBenefit `json:"home_pos_12"`
	Community  POSBenefit `json:"community_pos_99"`
}

type SOAPDocumentInformation struct {
	DocumentStatus        DocumentStatus `json:"document_status"`
	DateTimeCompleted     *DateTime      `json:"date_time_completed,omitempty"`
	CompletedBy           string         `json:"completed_by,omitempty"`
	PlaceOfServiceCovered string         `json:"place_of_service_covered,omitempty"`
	FollowUpNotes         string         `json:"follow_up_notes,omitempty"`
}

// SOAPNoteRecord is the complete clinical SOAP note with its intake,
// insurance, and benefit context.
type SOAPNoteRecord struct {
	Components          SOAPComponents          `json:"soap_components"`
	ClientDetails       ClientDetails           `json:"client_details"`
	IntakeAvailability  IntakeAvailability      `json:"available_for_intake_info"`
	Insurance           SOAPInsurance           `json:"insurance_information"`
	BenefitDetails      SOAPBenefitDetails      `json:"benefit_details"`
	PlaceOfService      PlaceOfServiceCoverage  `json:"place_of_service_benefits"`
	DocumentInformation SOAPDocumentInformation `json:"document_information"`
	CreatedAt           DateTime                `json:"created_at"`
	UpdatedAt           *DateTime               `json:"updated_at,omitempty"`
	CreatedBy           string                  `json:"created_by"`
}

// ToMap converts a record to the generic mapping shape used by the record
// store. Field names match the JSON tags, so a round trip through the store
// preserves the record.
func (r *BenefitCheckRecord) ToMap() (map[string]any, error) { return toMap(r) }

func (r *SOAPNoteRecord) ToMap() (map[string]any, error) { return toMap(r) }

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
