package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/tokens"
)

const userContextKey = "current_user"

// UserLoader resolves a token subject to a live user record, so role and
// status checks always see the current state, not the state at token issue.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Auth struct {
	Secret []byte
	Users  UserLoader
}

func NewAuth(secret []byte, users UserLoader) *Auth {
	return &Auth{Secret: secret, Users: users}
}

func (m *Auth) resolve(c echo.Context) (*models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	claims, err := tokens.AccessClaimsFromToken(strings.TrimPrefix(header, "Bearer "), m.Secret)
	if err != nil || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	user, err := m.Users.GetUserByID(c.Request().Context(), uint(id))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return user, nil
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.resolve(c)
		if err != nil {
			return err
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

func (m *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		if CurrentUser(c).Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

// RequireVendorOrAdmin gates seller endpoints. A vendor must additionally be
// approved.
func (m *Auth) RequireVendorOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		user := CurrentUser(c)
		if !user.IsApprovedSeller() {
			return echo.NewHTTPError(http.StatusForbidden, "vendor or admin access required")
		}
		return next(c)
	})
}

// OptionalAuth resolves the user when a valid token is present and otherwise
// continues anonymously. Used by checkout, which accepts both.
func (m *Auth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, err := m.resolve(c); err == nil {
			c.Set(userContextKey, user)
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user, or nil on anonymous requests.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
