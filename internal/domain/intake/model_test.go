package intake

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSet     bool
		wantInvalid bool
	}{
		{"valid", `"2015-06-15"`, true, false},
		{"empty", `""`, false, false},
		{"bad format", `"06/15/2015"`, false, true},
		{"not a string", `42`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
				t.Fatalf("unmarshal returned error: %v", err)
			}
			if d.Set() != tt.wantSet {
				t.Errorf("Set() = %v, want %v", d.Set(), tt.wantSet)
			}
			if d.invalid != tt.wantInvalid {
				t.Errorf("invalid = %v, want %v", d.invalid, tt.wantInvalid)
			}
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	d := NewDate(2015, time.June, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2015-06-15"` {
		t.Errorf("marshal = %s, want \"2015-06-15\"", b)
	}

	var zero Date
	b, _ = json.Marshal(zero)
	if string(b) != "null" {
		t.Errorf("zero date = %s, want null", b)
	}
}

func TestDate_Display(t *testing.T) {
	d := NewDate(2015, time.June, 5)
	if got := d.Display(); got != "06/05/2015" {
		t.Errorf("Display() = %s, want 06/05/2015", got)
	}
	var zero Date
	if got := zero.Display(); got != "" {
		t.Errorf("zero Display() = %q, want empty", got)
	}
}

func TestDateTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSet bool
	}{
		{"rfc3339", `"2025-03-01T14:30:00Z"`, true},
		{"no zone", `"2025-03-01T14:30:00"`, true},
		{"empty", `""`, false},
		{"date only", `"2025-03-01"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DateTime
			if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
				t.Fatalf("unmarshal returned error: %v", err)
			}
			if d.Set() != tt.wantSet {
				t.Errorf("Set() = %v, want %v", d.Set(), tt.wantSet)
			}
		})
	}
}

func TestDateTime_Display(t *testing.T) {
	var d DateTime
	json.Unmarshal([]byte(`"2025-03-01T14:30:00Z"`), &d)
	if got := d.Display(); got != "03/01/2025 14:30" {
		t.Errorf("Display() = %s, want 03/01/2025 14:30", got)
	}
}

func TestBenefitCheckRecord_ToMap(t *testing.T) {
	rec := NewGenerator(7).BenefitCheck(Identity{})
	m, err := rec.ToMap()
	if err != nil {
		t.Fatalf("to map: %v", err)
	}

	for _, key := range []string{
		"client_information",
		"insurance_information",
		"individual_family_benefit_information",
		"place_of_service_benefits",
		"benefit_details",
		"coordination_of_benefits",
		"payor_contact_information",
		"other_benefit_details",
		"benefit_check_summary_information",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing section %q", key)
		}
	}

	ci, ok := m["client_information"].(map[string]any)
	if !ok {
		t.Fatal("client_information is not a mapping")
	}
	if ci["intake_client_id"] != rec.ClientInformation.IntakeClientID {
		t.Errorf("intake_client_id = %v, want %s", ci["intake_client_id"], rec.ClientInformation.IntakeClientID)
	}
}

func TestSOAPNoteRecord_ToMap_RoundTrip(t *testing.T) {
	rec := NewGenerator(7).SOAPNote(Identity{})
	m, err := rec.ToMap()
	if err != nil {
		t.Fatalf("to map: %v", err)
	}

	parsed, err := ParseSOAPNote(m)
	if err != nil {
		t.Fatalf("parse after round trip: %v", err)
	}
	if parsed.Components.Subjective != rec.Components.Subjective {
		t.Errorf("subjective changed in round trip")
	}
	if parsed.ClientDetails.IntakeClientID != rec.ClientDetails.IntakeClientID {
		t.Errorf("intake_client_id changed in round trip")
	}
}
