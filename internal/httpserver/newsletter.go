package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
)

type NewsletterHandler struct {
	Newsletter *service.NewsletterService
}

func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req transport.NewsletterRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	sub, already, err := h.Newsletter.Subscribe(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "already subscribed", "subscription": sub})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "subscribed", "subscription": sub})
}

func (h *NewsletterHandler) Unsubscribe(c echo.Context) error {
	var req transport.NewsletterRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	if err := h.Newsletter.Unsubscribe(c.Request().Context(), req); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unsubscribed"})
}

func (h *NewsletterHandler) List(c echo.Context) error {
	page, size := pageSize(c)
	total, subs, err := h.Newsletter.List(c.Request().Context(), page, size)
	if err != nil {
		return handleError(c, err)
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.NewPage(subs, page, limit, total))
}
