package report

import (
	"fmt"
	"strings"
)

// benefitHeader is the fixed disclaimer and identity block that opens every
// benefit summary. Line breaks match the agreed print layout.
const benefitHeader = `INSURANCE BENEFIT INFORMATION
Please be aware, this is on a quote of benefits. We cannot guarantee payment or verify that definite eligibility of benefits
conveyed to us or to you by your carrier will be accurate or complete. Payment of benefits are subject to all terms, conditions,
and exclusions of the member's contract at the time of service. Initial Assessments, therapy, and reassessments do all carry a
charge, and are billed to your insurance company. Assessments can take up to 4 days, utilizing up to 2 hours a day required by
insurance companies. Although the assessment in person may take just one to two days, the full report to write, and complete
can take up to four days. The client is responsible for all "patient responsibility" deemed by the insurance company. We
suggest that you reach out to your insurance company as well and verify your benefits to ensure a full understanding of the
responsibilities the client may have.`

// NewBenefitSummaryRenderer builds the single-use renderer for the insurance
// benefit summary letter.
func NewBenefitSummaryRenderer(f Fields) *Renderer {
	return &Renderer{fields: f, sections: benefitSections()}
}

func benefitSections() []section {
	return []section{
		{when: always, render: renderBenefitHeader},
		{when: fieldPresent("individual_deductible"), render: renderDeductibleBlock},
		{when: always, render: renderCopayBlock},
		{when: always, render: renderCoinsuranceBlock},
		{when: fieldPresent("individual_opm"), render: renderOPMBlock},
		{when: always, render: renderPreauthBlock},
		{when: always, render: renderCapBlock},
		{when: fieldPresent("other_benefit_details"), render: renderOtherDetailsBlock},
		{when: always, render: renderSignatureBlock},
	}
}

func fieldPresent(key string) func(Fields) bool {
	return func(f Fields) bool { return f.Has(key) }
}

func renderBenefitHeader(f Fields, b *strings.Builder) error {
	b.WriteString(benefitHeader)
	fmt.Fprintf(b, "\n\nClient Name: %s", display(f["client_name"]))
	fmt.Fprintf(b, "\n\nInsurance Company: %s", display(f["insurance_company"]))
	fmt.Fprintf(b, "\n\nBenefits Checked: %s", display(f["benefits_checked_on"]))
	return nil
}

func renderDeductibleBlock(f Fields, b *strings.Builder) error {
	lines := []struct{ label, key string }{
		{"INDIVIDUAL DEDUCTIBLE", "individual_deductible"},
		{"INDIVIDUAL DEDUCTIBLE MET", "individual_deductible_met"},
		{"FAMILY DEDUCTIBLE", "family_deductible"},
		{"FAMILY DEDUCTIBLE MET", "family_deductible_met"},
	}
	for _, l := range lines {
		amount, err := currency(l.key, f[l.key])
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\n\n%s: %s", l.label, amount)
	}
	b.WriteString("\n\nThis is the total amount a client must pay before insurance starts paying.")
	return nil
}

func renderCopayBlock(f Fields, b *strings.Builder) error {
	amount, err := currency("copay_per_visit", f["copay_per_visit"])
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "\n\nCOPAY: %s", amount)
	b.WriteString("\n\nThis amount is due at the time of each service. In most cases, copayments go toward the deductible.")
	return nil
}

func renderCoinsuranceBlock(f Fields, b *strings.Builder) error {
	pct, err := percent("coinsurance_percentage", f["coinsurance_percentage"])
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "\n\nCOINSURANCE: %s", pct)
	b.WriteString("\n\nThis is the percentage of the cost of therapy you will pay once your deductible is met until your out-of-pocket maximum is\nreached.")
	return nil
}

func renderOPMBlock(f Fields, b *strings.Builder) error {
	lines := []struct{ label, key string }{
		{"INDIVIDUAL OUT OF POCKET MAXIMUM", "individual_opm"},
		{"INDIVIDUAL OUT OF POCKET MAXIMUM MET", "individual_opm_met"},
		{"FAMILY OUT OF POCKET MAXIMUM", "family_opm"},
		{"FAMILY OUT OF POCKET MAXIMUM MET", "family_opm_met"},
	}
	for _, l := range lines {
		amount, err := currency(l.key, f[l.key])
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\n\n%s: %s", l.label, amount)
	}
	b.WriteString("\n\nThis is the maximum pocket expense you will incur during the benefit year. After the out-of-pocket maximum is net, a family's\ninsurance will pay for 100% of all medical bills for the rest of the benefit year.")
	return nil
}

func renderPreauthBlock(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nIS PREAUTHORIZATION REQUIRED? %s", yesNoDisplay(f["prior_auth_required"]))
	b.WriteString("\n\nThis is a request for approval by insurance before ABA services can be started. This request can take up to a couple of weeks to\nprocess.")
	return nil
}

func renderCapBlock(f Fields, b *strings.Builder) error {
	exists := yesNoDisplay(f["max_cap_exists"])
	fmt.Fprintf(b, "\n\nIS THERE A MAXIMUM ANNUAL CAP ($) OR VISIT LIMIT: %s", exists)
	if exists != "Yes" {
		return nil
	}

	capValue := f["cap_visit_limit_value"]
	if !truthy(capValue) {
		capValue = f["max_cap_amount"]
	}
	if truthy(capValue) {
		if amount, err := currency("max_cap_amount", capValue); err == nil {
			fmt.Fprintf(b, "\nMaximum Annual Cap: %s", amount)
		} else {
			fmt.Fprintf(b, "\nCap/Limit Details: %s", display(capValue))
		}
	}
	if truthy(f["visit_limit_per_year"]) {
		fmt.Fprintf(b, "\nAnnual Visit Limit: %v visits", f["visit_limit_per_year"])
	}
	return nil
}

func renderOtherDetailsBlock(f Fields, b *strings.Builder) error {
	fmt.Fprintf(b, "\n\nOTHER BENEFIT DETAILS:\n%s", display(f["other_benefit_details"]))
	return nil
}

func renderSignatureBlock(_ Fields, b *strings.Builder) error {
	b.WriteString("\n\nSignature of Guardian/Parent_________________________________ Date: _____________________________")
	return nil
}

// truthy mirrors the presence test for optional cap fields: nil, empty
// strings, and zero numbers all suppress the line.
func truthy(v any) bool {
	switch n := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(n) != ""
	case float64:
		return n != 0
	case int:
		return n != 0
	default:
		return true
	}
}
