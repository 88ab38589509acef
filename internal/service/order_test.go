package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/db"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/transport"
)

func checkoutReq(products, email string) transport.CheckoutRequest {
	return transport.CheckoutRequest{
		Products:        products,
		CustomerName:    "Maria Lopez",
		CustomerEmail:   email,
		CustomerPhone:   "999888777",
		CustomerAddress: "Av. Arequipa 123, Lima",
		PaymentMethod:   models.PaymentYape,
	}
}

func TestCheckoutGuestProvisionsAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	mails := &recordingMailer{}
	svc := newOrderService(r, newDiskStore(t), mails)

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":2}]`, product.ID), "maria@example.com")
	resp, err := svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.jpg", []byte("voucher-bytes")))
	require.NoError(t, err)

	require.NotNil(t, resp.UserCredentials)
	require.Equal(t, "maria@example.com", resp.UserCredentials.Email)
	require.Len(t, resp.UserCredentials.Password, 12)
	require.True(t, resp.UserCredentials.MustChangePassword)

	user, err := r.GetUserByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.True(t, user.MustChangePassword)
	require.NotEqual(t, resp.UserCredentials.Password, user.PasswordHash)

	order := resp.Order
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, vendor.ID, order.VendorID)
	require.NotNil(t, order.CustomerID)
	require.Equal(t, user.ID, *order.CustomerID)
	require.Len(t, order.Items, 1)
	require.InDelta(t, 100, order.TotalPrice, 1e-9)
	require.NotEmpty(t, order.VoucherImage)

	require.Len(t, mails.byKind(mailer.KindCustomerCredentials), 1)
}

func TestCheckoutPriceSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Luna", "luna@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Zapatillas", 99.99, floatPtr(10))

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":3}]`, product.ID), "carlos@example.com")
	resp, err := svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.png", []byte("voucher")))
	require.NoError(t, err)

	item := resp.Order.Items[0]
	require.InDelta(t, 89.99, item.UnitPrice, 1e-9)
	require.InDelta(t, 269.97, item.TotalPrice, 1e-9)
	require.InDelta(t, 269.97, resp.Order.TotalPrice, 1e-9)

	// Later price changes never touch the snapshot.
	product.Price = 150
	product.DiscountPercentage = nil
	require.NoError(t, r.SaveProduct(ctx, product))

	stored, err := r.GetOrder(ctx, resp.Order.ID)
	require.NoError(t, err)
	require.InDelta(t, 269.97, stored.TotalPrice, 1e-9)
	require.InDelta(t, 89.99, stored.Items[0].UnitPrice, 1e-9)
}

func TestCheckoutExistingEmailRequiresLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	createUser(t, r, "Maria", "maria@example.com", "secret123", models.RoleCustomer, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, product.ID), "maria@example.com")
	_, err := svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.jpg", []byte("voucher")))
	require.ErrorIs(t, err, ErrEmailRegistered)

	var count int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCheckoutAuthenticated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	customer := createUser(t, r, "Maria", "maria@example.com", "secret123", models.RoleCustomer, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	// Form carries a different email; the token identity wins.
	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, product.ID), "other@example.com")
	resp, err := svc.Checkout(ctx, customer, req, fileHeader(t, "voucher.jpg", []byte("voucher")))
	require.NoError(t, err)

	require.Nil(t, resp.UserCredentials)
	require.Equal(t, customer.ID, *resp.Order.CustomerID)
	require.Equal(t, "maria@example.com", resp.Order.CustomerEmail)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1},{"product_id":9999,"quantity":1}]`, product.ID), "maria@example.com")
	_, err := svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.jpg", []byte("voucher")))
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.(*ValidationError).Fields["products"][0], "9999")

	// Nothing was provisioned or persisted.
	_, err = r.GetUserByEmail(ctx, "maria@example.com")
	require.Error(t, err)
	var count int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCheckoutCartValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})
	voucher := []byte("voucher")

	cases := []struct {
		name     string
		products string
	}{
		{"malformed json", "not-json"},
		{"empty cart", "[]"},
		{"zero quantity", `[{"product_id":1,"quantity":0}]`},
		{"missing product id", `[{"quantity":2}]`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Checkout(ctx, nil, checkoutReq(tc.products, "x@example.com"), fileHeader(t, "v.jpg", voucher))
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("missing voucher", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Checkout(ctx, nil, checkoutReq(`[{"product_id":1,"quantity":1}]`, "x@example.com"), nil)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad payment method", func(t *testing.T) {
		t.Parallel()
		req := checkoutReq(`[{"product_id":1,"quantity":1}]`, "x@example.com")
		req.PaymentMethod = "efectivo"
		_, err := svc.Checkout(ctx, nil, req, fileHeader(t, "v.jpg", voucher))
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestCheckoutVendorFromFirstProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendorA := createUser(t, r, "Tienda A", "a@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	vendorB := createUser(t, r, "Tienda B", "b@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	pA := createProduct(t, r, vendorA.ID, "Polo A", 10, nil)
	pB := createProduct(t, r, vendorB.ID, "Polo B", 20, nil)

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1},{"product_id":%d,"quantity":1}]`, pA.ID, pB.ID), "maria@example.com")
	resp, err := svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.jpg", []byte("voucher")))
	require.NoError(t, err)

	require.Equal(t, vendorA.ID, resp.Order.VendorID)
	require.Len(t, resp.Order.Items, 2)
	require.InDelta(t, 30, resp.Order.TotalPrice, 1e-9)
}

func TestCheckoutVoucherStoredOnDisk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	store := newDiskStore(t)
	svc := newOrderService(r, store, &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, product.ID), "maria@example.com")
	resp, err := svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.jpg", []byte("voucher-bytes")))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(store.BaseDir, resp.Order.VoucherImage))
	require.NoError(t, err)
	require.Equal(t, []byte("voucher-bytes"), data)
}

func placeOrder(t *testing.T, svc *OrderService, productID uint, email string) *models.Order {
	t.Helper()
	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, productID), email)
	resp, err := svc.Checkout(context.Background(), nil, req, fileHeader(t, "voucher.jpg", []byte("voucher")))
	require.NoError(t, err)
	return resp.Order
}

func TestUpdateStatusTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)
	order := placeOrder(t, svc, product.ID, "maria@example.com")

	updated, err := svc.UpdateStatus(ctx, vendor, order.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusPaid})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, updated.Status)

	// Terminal states are final.
	_, err = svc.UpdateStatus(ctx, vendor, order.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusRejected})
	require.ErrorIs(t, err, ErrNotPending)

	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	other := createUser(t, r, "Tienda Luna", "luna@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	admin := createUser(t, r, "Root", "root@fatmac.pe", "secret123", models.RoleAdmin, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)
	order := placeOrder(t, svc, product.ID, "maria@example.com")

	customer, err := r.GetUserByEmail(ctx, "maria@example.com")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, other, order.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusPaid})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(ctx, customer, order.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusPaid})
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, stored.Status)

	updated, err := svc.UpdateStatus(ctx, admin, order.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusRejected})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusRejected, updated.Status)
}

func TestVendorOrdersScoping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendorA := createUser(t, r, "Tienda A", "a@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	vendorB := createUser(t, r, "Tienda B", "b@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	admin := createUser(t, r, "Root", "root@fatmac.pe", "secret123", models.RoleAdmin, models.StatusApproved)
	pA := createProduct(t, r, vendorA.ID, "Polo A", 10, nil)
	pB := createProduct(t, r, vendorB.ID, "Polo B", 20, nil)

	orderA := placeOrder(t, svc, pA.ID, "c1@example.com")
	placeOrder(t, svc, pB.ID, "c2@example.com")

	_, err := svc.UpdateStatus(ctx, vendorA, orderA.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusPaid})
	require.NoError(t, err)

	total, orders, err := svc.VendorOrders(ctx, vendorA, OrderListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, vendorA.ID, orders[0].VendorID)

	total, _, err = svc.VendorOrders(ctx, admin, OrderListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	total, _, err = svc.VendorOrders(ctx, admin, OrderListQuery{Status: models.OrderStatusPaid, Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	_, _, err = svc.VendorOrders(ctx, admin, OrderListQuery{Status: "shipped", Page: 1, Size: 10})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCustomerOrdersAndLastAddress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	placeOrder(t, svc, product.ID, "maria@example.com")
	customer, err := r.GetUserByEmail(ctx, "maria@example.com")
	require.NoError(t, err)

	total, orders, err := svc.CustomerOrders(ctx, customer, "", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, orders, 1)

	address, err := svc.LastAddress(ctx, customer)
	require.NoError(t, err)
	require.Equal(t, "Av. Arequipa 123, Lima", address)

	nobody := createUser(t, r, "Nobody", "nobody@example.com", "secret123", models.RoleCustomer, models.StatusApproved)
	address, err = svc.LastAddress(ctx, nobody)
	require.NoError(t, err)
	require.Empty(t, address)
}

// TestCheckoutGuestSignupRace loses the provisioning race on purpose: a rival
// account with the same email lands after the lookup but before our insert,
// so the unique index is the only thing standing between two accounts.
func TestCheckoutGuestSignupRace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true, SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	r := repo.New(gdb)
	svc := newOrderService(r, newDiskStore(t), &recordingMailer{})

	vendor := createUser(t, r, "Tienda Sol", "sol@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	product := createProduct(t, r, vendor.ID, "Polo", 50, nil)

	raced := false
	err = gdb.Callback().Create().Before("gorm:create").Register("rival_signup", func(tx *gorm.DB) {
		if raced {
			return
		}
		u, ok := tx.Statement.Dest.(*models.User)
		if !ok || u.Email != "maria@example.com" {
			return
		}
		raced = true
		rival := &models.User{
			Name:         "Maria",
			Email:        "maria@example.com",
			PasswordHash: "x",
			Role:         models.RoleCustomer,
			Status:       models.StatusApproved,
		}
		require.NoError(t, gdb.Create(rival).Error)
	})
	require.NoError(t, err)

	req := checkoutReq(fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, product.ID), "maria@example.com")
	_, err = svc.Checkout(ctx, nil, req, fileHeader(t, "voucher.jpg", []byte("voucher")))
	require.ErrorIs(t, err, ErrEmailRegistered)
	require.True(t, raced)

	// Exactly one account survives, and no order was written.
	var accounts int64
	require.NoError(t, gdb.Model(&models.User{}).Where("email = ?", "maria@example.com").Count(&accounts).Error)
	require.EqualValues(t, 1, accounts)

	var orders int64
	require.NoError(t, gdb.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}
