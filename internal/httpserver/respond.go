package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/storage"
)

// handleError maps the service error taxonomy onto HTTP responses. Unknown
// errors are logged and hidden behind a 500.
func handleError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrEmailRegistered) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message":        "this email already has an account, please log in",
			"requires_login": true,
			"errors":         map[string][]string{"customer_email": {"email is already registered"}},
		})
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "validation failed",
			"errors":  ve.Fields,
		})
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
	case errors.Is(err, service.ErrNotPending):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": err.Error()})
	}

	logging.FromContext(c.Request().Context()).Error("request_failed", "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func validationFail(c echo.Context, field, msg string) error {
	return handleError(c, &service.ValidationError{Fields: map[string][]string{field: {msg}}})
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed id"})
}

// Presenters rewrite stored relative paths into public URLs before the model
// is serialized.

func presentUser(baseURL string, u *models.User) *models.User {
	if u == nil {
		return nil
	}
	u.YapeQr = storage.PublicURL(baseURL, u.YapeQr)
	u.PlinQr = storage.PublicURL(baseURL, u.PlinQr)
	return u
}

func presentProduct(baseURL string, p *models.Product) *models.Product {
	if p == nil {
		return nil
	}
	p.ImageURL = storage.PublicURL(baseURL, p.ImageURL)
	for i := range p.Images {
		p.Images[i].ImagePath = storage.PublicURL(baseURL, p.Images[i].ImagePath)
	}
	presentUser(baseURL, p.User)
	return p
}

func presentProducts(baseURL string, products []models.Product) []models.Product {
	for i := range products {
		presentProduct(baseURL, &products[i])
	}
	return products
}

func presentOrder(baseURL string, o *models.Order) *models.Order {
	if o == nil {
		return nil
	}
	o.VoucherImage = storage.PublicURL(baseURL, o.VoucherImage)
	presentUser(baseURL, o.Vendor)
	presentUser(baseURL, o.Customer)
	for i := range o.Items {
		presentProduct(baseURL, o.Items[i].Product)
	}
	return o
}

func presentOrders(baseURL string, orders []models.Order) []models.Order {
	for i := range orders {
		presentOrder(baseURL, &orders[i])
	}
	return orders
}
