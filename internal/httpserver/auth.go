package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/middleware"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/transport"
)

type AuthHandler struct {
	Auth    *service.AuthService
	BaseURL string
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	user, token, err := h.Auth.Register(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	if token == "" {
		// Vendor application: no session until approved.
		return c.JSON(http.StatusCreated, echo.Map{
			"message": "vendor application received, awaiting approval",
			"user":    presentUser(h.BaseURL, user),
		})
	}
	return c.JSON(http.StatusCreated, transport.AuthResponse{Token: token, User: presentUser(h.BaseURL, user)})
}

func (h *AuthHandler) RegisterVendor(c echo.Context) error {
	var req transport.RegisterVendorRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	vendor, err := h.Auth.RegisterVendor(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "vendor application received, awaiting approval",
		"user":    presentUser(h.BaseURL, vendor),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	user, token, err := h.Auth.Login(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, transport.AuthResponse{Token: token, User: presentUser(h.BaseURL, user)})
}

// Logout exists for API symmetry. Tokens are stateless, the client just
// discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, presentUser(h.BaseURL, middleware.CurrentUser(c)))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	user, err := h.Auth.UpdateProfile(c.Request().Context(), middleware.CurrentUser(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentUser(h.BaseURL, user))
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}

	if err := h.Auth.ChangePassword(c.Request().Context(), middleware.CurrentUser(c), req); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
