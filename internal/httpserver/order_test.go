package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/db"
	"github.com/fatmac/marketplace/internal/events"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
)

const testBaseURL = "http://localhost:8080"

type nopMailer struct{}

func (nopMailer) Send(ctx context.Context, msg mailer.Message) error { return nil }

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return repo.New(gdb)
}

func newOrderHandler(t *testing.T) (*OrderHandler, *repo.GormRepo) {
	t.Helper()
	r := newTestRepo(t)
	svc := service.NewOrderService(r, storage.NewDisk(t.TempDir()), nopMailer{}, events.Nop{})
	return &OrderHandler{Orders: svc, BaseURL: testBaseURL}, r
}

func seedProduct(t *testing.T, r *repo.GormRepo) *models.Product {
	t.Helper()
	ctx := context.Background()
	vendor := &models.User{
		Name:         "Tienda Sol",
		Email:        "sol@vendors.pe",
		PasswordHash: "x",
		Role:         models.RoleVendor,
		Status:       models.StatusApproved,
	}
	require.NoError(t, r.CreateUser(ctx, vendor))
	product := &models.Product{
		UserID:    vendor.ID,
		Name:      "Polo",
		Price:     50,
		Stock:     10,
		Condition: models.ConditionNew,
	}
	require.NoError(t, r.CreateProduct(ctx, product))
	return product
}

func checkoutForm(t *testing.T, products, email string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"products":         products,
		"customer_name":    "Maria Lopez",
		"customer_email":   email,
		"customer_phone":   "987654321",
		"customer_address": "Av. Arequipa 123, Lima",
		"payment_method":   models.PaymentYape,
	}
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	fw, err := w.CreateFormFile("voucher_image", "voucher.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("voucher"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postCheckout(t *testing.T, h *OrderHandler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, h.Checkout(c))
	return rec
}

func TestCheckoutDuplicateEmailRequiresLogin(t *testing.T) {
	t.Parallel()
	h, r := newOrderHandler(t)
	product := seedProduct(t, r)

	existing := &models.User{
		Name:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "x",
		Role:         models.RoleCustomer,
		Status:       models.StatusApproved,
	}
	require.NoError(t, r.CreateUser(context.Background(), existing))

	body, contentType := checkoutForm(t, fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, product.ID), "maria@example.com")
	rec := postCheckout(t, h, body, contentType)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Message       string              `json:"message"`
		RequiresLogin bool                `json:"requires_login"`
		Errors        map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.RequiresLogin)
	require.Contains(t, resp.Errors, "customer_email")

	var orders int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestCheckoutGuestResponseCarriesCredentials(t *testing.T) {
	t.Parallel()
	h, r := newOrderHandler(t)
	product := seedProduct(t, r)

	body, contentType := checkoutForm(t, fmt.Sprintf(`[{"product_id":%d,"quantity":2}]`, product.ID), "nueva@example.com")
	rec := postCheckout(t, h, body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Order)
	require.Equal(t, models.OrderStatusPending, resp.Order.Status)
	require.Equal(t, "nueva@example.com", resp.Order.CustomerEmail)
	require.NotNil(t, resp.UserCredentials)
	require.Equal(t, "nueva@example.com", resp.UserCredentials.Email)
	require.Len(t, resp.UserCredentials.Password, 12)
	require.True(t, resp.UserCredentials.MustChangePassword)
}
