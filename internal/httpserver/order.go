package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/middleware"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
)

type OrderHandler struct {
	Orders  *service.OrderService
	BaseURL string
}

// Checkout accepts the multipart cart form. Works for guests and logged-in
// customers alike; OptionalAuth decides which.
func (h *OrderHandler) Checkout(c echo.Context) error {
	req := transport.CheckoutRequest{
		Products:        c.FormValue("products"),
		CustomerName:    c.FormValue("customer_name"),
		CustomerEmail:   c.FormValue("customer_email"),
		CustomerPhone:   c.FormValue("customer_phone"),
		CustomerAddress: c.FormValue("customer_address"),
		PaymentMethod:   c.FormValue("payment_method"),
	}
	voucher, err := c.FormFile("voucher_image")
	if err != nil {
		voucher = nil
	}

	resp, err := h.Orders.Checkout(c.Request().Context(), middleware.CurrentUser(c), req, voucher)
	if err != nil {
		return handleError(c, err)
	}
	resp.Order = presentOrder(h.BaseURL, resp.Order)
	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	order, err := h.Orders.UpdateStatus(c.Request().Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentOrder(h.BaseURL, order))
}

func (h *OrderHandler) Show(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	order, err := h.Orders.GetOrder(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentOrder(h.BaseURL, order))
}

// VendorOrders is the vendor/admin panel listing.
func (h *OrderHandler) VendorOrders(c echo.Context) error {
	page, size := pageSize(c)
	q := service.OrderListQuery{
		Status: c.QueryParam("status"),
		From:   c.QueryParam("from"),
		To:     c.QueryParam("to"),
		Page:   page,
		Size:   size,
	}

	total, orders, err := h.Orders.VendorOrders(c.Request().Context(), middleware.CurrentUser(c), q)
	if err != nil {
		return handleError(c, err)
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.NewPage(presentOrders(h.BaseURL, orders), page, limit, total))
}

// MyOrders lists the authenticated customer's purchase history.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	page, size := pageSize(c)
	total, orders, err := h.Orders.CustomerOrders(c.Request().Context(), middleware.CurrentUser(c), c.QueryParam("status"), page, size)
	if err != nil {
		return handleError(c, err)
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.NewPage(presentOrders(h.BaseURL, orders), page, limit, total))
}

func (h *OrderHandler) LastAddress(c echo.Context) error {
	address, err := h.Orders.LastAddress(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": address})
}
