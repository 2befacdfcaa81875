package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes notification operations over HTTP via Echo.
type Handler struct {
	manager *Manager
	welcome *WelcomeService
}

func NewHandler(mgr *Manager, welcome *WelcomeService) *Handler {
	return &Handler{manager: mgr, welcome: welcome}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/notifications/welcome", h.HandleWelcome)
	g.GET("/notifications/stats", h.HandleStats)
	g.GET("/notifications/:id", h.HandleGet)
	g.POST("/notifications/:id/retry", h.HandleRetry)
}

// welcomeRequest is the JSON body for POST /notifications/welcome. Both
// fields are optional; missing identity falls back to the latest stored
// submission.
type welcomeRequest struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}

func (h *Handler) HandleWelcome(c echo.Context) error {
	var req welcomeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res := h.welcome.SendWelcome(c.Request().Context(), req.ClientName, req.ClientEmail)
	code := http.StatusOK
	if res.Status != "success" {
		code = http.StatusUnprocessableEntity
	}
	return c.JSON(code, res)
}

func (h *Handler) HandleGet(c echo.Context) error {
	n, err := h.manager.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) HandleRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.manager.Retry(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, _ := h.manager.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(c.Request().Context()))
}
