package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/careintake/intake/internal/domain/intake"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestReportService()
	return NewHandler(svc), echo.New()
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_GenerateBenefitSummary_Synthetic(t *testing.T) {
	h, e := newTestHandler()

	c, rec := postJSON(e, "/api/v1/reports/benefit-summary",
		`{"synthetic":true,"seed":42,"first_name":"Jane","last_name":"Doe"}`)
	if err := h.GenerateBenefitSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res Result
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Status != StatusSuccess {
		t.Errorf("status = %s: %s", res.Status, res.Message)
	}
	if !strings.Contains(res.SummaryText, "Client Name: Jane Doe") {
		t.Error("summary does not carry the requested identity")
	}
}

func TestHandler_GenerateBenefitSummary_RawRecord(t *testing.T) {
	h, e := newTestHandler()

	m, _ := intake.NewGenerator(7).BenefitCheck(intake.Identity{}).ToMap()
	body, _ := json.Marshal(map[string]any{"record": m})

	c, rec := postJSON(e, "/api/v1/reports/benefit-summary", string(body))
	if err := h.GenerateBenefitSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_GenerateBenefitSummary_ValidateRejectsBroken(t *testing.T) {
	h, e := newTestHandler()

	m, _ := intake.NewGenerator(7).BenefitCheck(intake.Identity{}).ToMap()
	ci := m["client_information"].(map[string]any)
	ci["intake_client_id"] = ""
	body, _ := json.Marshal(map[string]any{"record": m, "validate": true})

	c, rec := postJSON(e, "/api/v1/reports/benefit-summary", string(body))
	if err := h.GenerateBenefitSummary(c); err != nil {
		t.Fatalf("validation failure should be a JSON response, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Status string              `json:"status"`
		Errors []intake.FieldError `json:"errors"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != StatusError || len(resp.Errors) == 0 {
		t.Errorf("expected field errors, got %+v", resp)
	}
}

func TestHandler_GenerateBenefitSummary_MissingBody(t *testing.T) {
	h, e := newTestHandler()

	c, _ := postJSON(e, "/api/v1/reports/benefit-summary", `{}`)
	err := h.GenerateBenefitSummary(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 error, got %v", err)
	}
}

func TestHandler_GenerateBenefitSummary_RenderFailureIs422(t *testing.T) {
	h, e := newTestHandler()

	body := `{"record":{"individual_family_benefit_information":{"individual_deductible":"a lot"}}}`
	c, rec := postJSON(e, "/api/v1/reports/benefit-summary", body)
	if err := h.GenerateBenefitSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestHandler_GenerateSOAPNote_Synthetic(t *testing.T) {
	h, e := newTestHandler()

	c, rec := postJSON(e, "/api/v1/reports/soap-note", `{"synthetic":true,"seed":7}`)
	if err := h.GenerateSOAPNote(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res Result
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !strings.Contains(res.SOAPNoteText, "CLINICAL SOAP NOTE") {
		t.Error("soap note text missing header")
	}
	if res.Filename == "" {
		t.Error("filename not returned")
	}
}

func TestHandler_GetArtifact(t *testing.T) {
	h, e := newTestHandler()

	rec := intake.NewGenerator(42).BenefitCheck(intake.Identity{})
	res := h.svc.GenerateBenefitSummary(context.Background(), BenefitRecord{Record: rec})
	if res.Status != StatusSuccess {
		t.Fatalf("seed generate failed: %s", res.Message)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("category", "filename")
	c.SetParamValues(CategoryBenefitSummaries, res.Filename)

	if err := h.GetArtifact(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %s", ct)
	}
	if w.Body.String() != res.SummaryText {
		t.Error("served artifact differs from generated text")
	}
}

func TestHandler_GetArtifact_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("category", "filename")
	c.SetParamValues(CategorySOAPNotes, "missing.txt")

	err := h.GetArtifact(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestHandler_GetArtifact_UnknownCategory(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("category", "filename")
	c.SetParamValues("secrets", "anything.txt")

	err := h.GetArtifact(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 error, got %v", err)
	}
}
