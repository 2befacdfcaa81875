package intake

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careintake/intake/internal/platform/recordstore"
	"github.com/careintake/intake/pkg/pagination"
)

type Handler struct {
	svc *SubmissionService
}

func NewHandler(svc *SubmissionService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/intake/schemas/:kind", h.GetSchema)
	api.POST("/intake/clients", h.SubmitClient)
	api.GET("/intake/clients", h.ListClients)
	api.GET("/intake/clients/latest", h.GetLatestClient)
}

func (h *Handler) GetSchema(c echo.Context) error {
	schema, err := SchemaFor(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, schema)
}

func (h *Handler) SubmitClient(c echo.Context) error {
	var m map[string]any
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	name, err := h.svc.Submit(c.Request().Context(), m)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"status":  "error",
				"message": "validation failed",
				"errors":  verr.Errors,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "submission stored",
		"name":    name,
	})
}

func (h *Handler) ListClients(c echo.Context) error {
	records, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	p := pagination.FromContext(c)
	total := len(records)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records[start:end], total, p.Limit, p.Offset))
}

func (h *Handler) GetLatestClient(c echo.Context) error {
	rec, err := h.svc.Latest(c.Request().Context())
	if err != nil {
		if errors.Is(err, recordstore.ErrCategoryEmpty) {
			return echo.NewHTTPError(http.StatusNotFound, "no client submissions yet")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}
