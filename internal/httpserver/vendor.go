package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/middleware"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
)

type VendorHandler struct {
	Vendors *service.VendorService
	BaseURL string
}

func (h *VendorHandler) List(c echo.Context) error {
	page, size := pageSize(c)
	total, vendors, err := h.Vendors.ListVendors(c.Request().Context(), c.QueryParam("status"), page, size)
	if err != nil {
		return handleError(c, err)
	}
	for i := range vendors {
		presentUser(h.BaseURL, &vendors[i])
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.NewPage(vendors, page, limit, total))
}

func (h *VendorHandler) PendingCount(c echo.Context) error {
	count, err := h.Vendors.PendingCount(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *VendorHandler) SetStatus(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}

	var req transport.VendorStatusRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	vendor, err := h.Vendors.SetStatus(c.Request().Context(), id, req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentUser(h.BaseURL, vendor))
}

func (h *VendorHandler) AdminUpdate(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}

	var req transport.AdminUpdateVendorRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	vendor, err := h.Vendors.AdminUpdate(c.Request().Context(), id, req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentUser(h.BaseURL, vendor))
}

// UploadQr stores the current vendor's yape or plin payment QR.
func (h *VendorHandler) UploadQr(c echo.Context) error {
	fh, err := c.FormFile("qr_image")
	if err != nil {
		fh = nil
	}

	vendor, err := h.Vendors.UploadQr(c.Request().Context(), middleware.CurrentUser(c), c.FormValue("method"), fh)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentUser(h.BaseURL, vendor))
}

// PublicList exposes approved vendors to the storefront, trimmed of
// non-public fields.
func (h *VendorHandler) PublicList(c echo.Context) error {
	vendors, err := h.Vendors.PublicVendors(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}

	type publicVendor struct {
		ID                  uint   `json:"id"`
		Name                string `json:"name"`
		WhatsappNumber      string `json:"whatsapp_number"`
		BusinessDescription string `json:"business_description"`
		BusinessAddress     string `json:"business_address"`
	}
	out := make([]publicVendor, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, publicVendor{
			ID:                  v.ID,
			Name:                v.Name,
			WhatsappNumber:      v.WhatsappNumber,
			BusinessDescription: v.BusinessDescription,
			BusinessAddress:     v.BusinessAddress,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Qr returns an approved vendor's payment QR URLs for the checkout page.
func (h *VendorHandler) Qr(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	yape, plin, err := h.Vendors.VendorQr(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"yape_qr": storage.PublicURL(h.BaseURL, yape),
		"plin_qr": storage.PublicURL(h.BaseURL, plin),
	})
}
