package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/middleware"
	"github.com/fatmac/marketplace/internal/service"
)

type DashboardHandler struct {
	Dashboard *service.DashboardService
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.Dashboard.Stats(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
