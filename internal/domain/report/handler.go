package report

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careintake/intake/internal/domain/intake"
	"github.com/careintake/intake/internal/platform/recordstore"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/benefit-summary", h.GenerateBenefitSummary)
	api.POST("/reports/soap-note", h.GenerateSOAPNote)
	api.GET("/reports/:category/:filename", h.GetArtifact)
}

// generateRequest is the body of both generate endpoints. Either a record
// mapping is supplied, or synthetic is set and a record is generated from the
// identity fields (all optional). With validate set, the record must parse as
// a fully valid typed record before rendering.
type generateRequest struct {
	Record    map[string]any `json:"record"`
	Validate  bool           `json:"validate"`
	Synthetic bool           `json:"synthetic"`
	Seed      int64          `json:"seed"`

	ClientID  string `json:"client_id"`
	NumericID int    `json:"numeric_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Author    string `json:"author"`
}

func (r *generateRequest) identity() intake.Identity {
	return intake.Identity{
		ClientID:  r.ClientID,
		NumericID: r.NumericID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Author:    r.Author,
	}
}

func (h *Handler) GenerateBenefitSummary(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var src Source
	switch {
	case req.Synthetic:
		rec := intake.NewGenerator(req.Seed).BenefitCheck(req.identity())
		src = BenefitRecord{Record: rec}
	case req.Record != nil && req.Validate:
		rec, err := intake.ParseBenefitCheck(req.Record)
		if err != nil {
			return validationResponse(c, err)
		}
		src = BenefitRecord{Record: rec}
	case req.Record != nil:
		src = RawBenefit(req.Record)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "record or synthetic is required")
	}

	res := h.svc.GenerateBenefitSummary(c.Request().Context(), src)
	return c.JSON(statusCode(res), res)
}

func (h *Handler) GenerateSOAPNote(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var src Source
	switch {
	case req.Synthetic:
		rec := intake.NewGenerator(req.Seed).SOAPNote(req.identity())
		src = SOAPNoteRecord{Record: rec}
	case req.Record != nil && req.Validate:
		rec, err := intake.ParseSOAPNote(req.Record)
		if err != nil {
			return validationResponse(c, err)
		}
		src = SOAPNoteRecord{Record: rec}
	case req.Record != nil:
		src = RawSOAPNote(req.Record)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "record or synthetic is required")
	}

	res := h.svc.GenerateSOAPNote(c.Request().Context(), src)
	return c.JSON(statusCode(res), res)
}

func (h *Handler) GetArtifact(c echo.Context) error {
	category := c.Param("category")
	if category != CategoryBenefitSummaries && category != CategorySOAPNotes {
		return echo.NewHTTPError(http.StatusNotFound, "unknown report category")
	}
	content, err := h.svc.store.ReadArtifact(c.Request().Context(), category, c.Param("filename"))
	if err != nil {
		if errors.Is(err, recordstore.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", content)
}

func statusCode(res Result) int {
	if res.Status == StatusSuccess {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func validationResponse(c echo.Context, err error) error {
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  StatusError,
			"message": "validation failed",
			"errors":  verr.Errors,
		})
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
