package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/transport"
)

type SettingsHandler struct {
	Settings *service.SettingsService
}

func (h *SettingsHandler) Get(c echo.Context) error {
	setting, err := h.Settings.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, setting)
}

func (h *SettingsHandler) List(c echo.Context) error {
	settings, err := h.Settings.List(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": settings})
}

func (h *SettingsHandler) Set(c echo.Context) error {
	var req transport.SettingRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}
	setting, err := h.Settings.Set(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, setting)
}

func (h *SettingsHandler) UploadLogo(c echo.Context) error {
	fh, err := c.FormFile("logo")
	if err != nil {
		fh = nil
	}
	setting, err := h.Settings.UploadLogo(c.Request().Context(), fh)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, setting)
}
