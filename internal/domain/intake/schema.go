package intake

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Submission kinds for the initial contact forms.
const (
	KindProviderReferral = "provider_referral"
	KindFamilyInquiry    = "family_inquiry"
)

type FieldType string

const (
	FieldString   FieldType = "string"
	FieldDate     FieldType = "date"
	FieldDropdown FieldType = "dropdown"
)

// SchemaField describes one field of a collection schema. Dropdown fields
// carry the closed set of allowed options.
type SchemaField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Description string    `json:"description"`
	Options     []string  `json:"options,omitempty"`
}

// CollectionSchema is the declarative shape of an initial contact submission.
// Every field is required.
type CollectionSchema struct {
	Kind   string        `json:"kind"`
	Fields []SchemaField `json:"fields"`
}

func clientFields() []SchemaField {
	return []SchemaField{
		{Name: "client_name", Type: FieldString, Description: "Name of the patient/client"},
		{Name: "client_dob", Type: FieldDate, Description: "Date of birth of the patient/client in YYYY-MM-DD format"},
		{Name: "client_gender", Type: FieldDropdown, Description: "Gender of the patient/client", Options: []string{"Male", "Female"}},
		{Name: "client_email", Type: FieldString, Description: "Email address of the patient/client"},
		{Name: "client_phone", Type: FieldString, Description: "Phone number of the patient/client in XXX-XXX-XXXX format"},
		{Name: "client_address", Type: FieldString, Description: "Address of the patient/client"},
	}
}

// ProviderReferralSchema describes a referral submitted by a provider's office.
func ProviderReferralSchema() CollectionSchema {
	return CollectionSchema{
		Kind: KindProviderReferral,
		Fields: append(clientFields(),
			SchemaField{Name: "referral_type", Type: FieldDropdown, Description: "Type of referral",
				Options: []string{"Self-Referral", "Physician Referral", "Specialist Referral", "Emergency Referral"}},
			SchemaField{Name: "referral_date", Type: FieldDate, Description: "Date of referral in YYYY-MM-DD format"},
			SchemaField{Name: "referral_mode", Type: FieldDropdown, Description: "Mode used to send the referral",
				Options: []string{"Fax", "Phone", "Webforms"}},
			SchemaField{Name: "referral_provider_name", Type: FieldString, Description: "Name of the referring provider"},
		),
	}
}

// FamilyInquirySchema describes a first inquiry submitted by a family member.
func FamilyInquirySchema() CollectionSchema {
	return CollectionSchema{
		Kind: KindFamilyInquiry,
		Fields: append(clientFields(),
			SchemaField{Name: "relationship", Type: FieldDropdown, Description: "Relationship to the client",
				Options: []string{"Self", "Parent", "Guardian", "Spouse", "Sibling", "Other Family Member"}},
			SchemaField{Name: "inquiry_reason", Type: FieldString, Description: "Reason for the inquiry"},
			SchemaField{Name: "preferred_contact_method", Type: FieldDropdown, Description: "Preferred method of contact",
				Options: []string{"Phone", "Email", "Mail", "Text"}},
			SchemaField{Name: "contact_details", Type: FieldString, Description: "Contact information (phone/email/address)"},
		),
	}
}

// SchemaFor returns the collection schema for a submission kind.
func SchemaFor(kind string) (CollectionSchema, error) {
	switch kind {
	case KindProviderReferral:
		return ProviderReferralSchema(), nil
	case KindFamilyInquiry:
		return FamilyInquirySchema(), nil
	default:
		return CollectionSchema{}, fmt.Errorf("unknown submission kind %q", kind)
	}
}

var phonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)

// ValidateSubmission checks a raw submission against the schema and returns a
// *ValidationError naming every missing, malformed, or out-of-domain field.
func (s CollectionSchema) ValidateSubmission(m map[string]any) error {
	v := &violations{}

	for _, f := range s.Fields {
		raw, ok := m[f.Name]
		if !ok || raw == nil {
			v.add(f.Name, "required", "field is required")
			continue
		}
		str, ok := raw.(string)
		if !ok {
			v.add(f.Name, "type", "expected a string, got %T", raw)
			continue
		}
		if strings.TrimSpace(str) == "" {
			v.add(f.Name, "required", "field is required")
			continue
		}

		switch f.Type {
		case FieldDate:
			if _, err := time.Parse(dateLayout, str); err != nil {
				v.add(f.Name, "date", "%q is not a valid date, expected YYYY-MM-DD", str)
			}
		case FieldDropdown:
			if !contains(f.Options, str) {
				v.add(f.Name, "enum", "%q is not one of %s", str, strings.Join(f.Options, ", "))
			}
		}

		switch f.Name {
		case "client_phone":
			if !phonePattern.MatchString(str) {
				v.add(f.Name, "format", "%q does not match XXX-XXX-XXXX", str)
			}
		case "client_email":
			if !strings.Contains(str, "@") {
				v.add(f.Name, "format", "%q is not an email address", str)
			}
		}
	}

	return v.err()
}

// SubmissionKind detects which schema a stored submission belongs to. Referral
// records carry referral_type; inquiry records carry relationship.
func SubmissionKind(m map[string]any) string {
	if kind, ok := m["record_type"].(string); ok && kind != "" {
		return kind
	}
	if _, ok := m["referral_type"]; ok {
		return KindProviderReferral
	}
	if _, ok := m["relationship"]; ok {
		return KindFamilyInquiry
	}
	return ""
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
