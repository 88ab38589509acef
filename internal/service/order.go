package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/events"
	"github.com/fatmac/marketplace/internal/hash"
	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
	"github.com/fatmac/marketplace/internal/validation"
)

const voucherFolder = "vouchers"

type OrderService struct {
	Repo    *repo.GormRepo
	Storage storage.Store
	Mailer  mailer.Mailer
	Events  events.Publisher
}

func NewOrderService(r *repo.GormRepo, st storage.Store, m mailer.Mailer, ev events.Publisher) *OrderService {
	return &OrderService{Repo: r, Storage: st, Mailer: m, Events: ev}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Checkout reconciles a cart against current catalog prices, resolves or
// provisions the customer identity, stores the payment voucher and creates
// the pending order atomically. actor is the authenticated user, nil for
// guests.
func (s *OrderService) Checkout(ctx context.Context, actor *models.User, req transport.CheckoutRequest, voucher *multipart.FileHeader) (*transport.CheckoutResponse, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	if voucher == nil {
		return nil, fieldError("voucher_image", "this field is required")
	}

	lines, err := parseCart(req.Products)
	if err != nil {
		return nil, err
	}

	products, err := s.resolveProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	customer, credentials, err := s.resolveCustomer(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	// The whole order is attributed to the vendor of the first cart line.
	vendorID := products[lines[0].ProductID].UserID

	items := make([]models.OrderItem, 0, len(lines))
	var total float64
	for _, line := range lines {
		p := products[line.ProductID]
		unit := roundCents(p.DiscountedPrice())
		lineTotal := roundCents(unit * float64(line.Quantity))
		total += lineTotal
		items = append(items, models.OrderItem{
			ProductID:  p.ID,
			Quantity:   line.Quantity,
			UnitPrice:  unit,
			TotalPrice: lineTotal,
		})
	}

	voucherPath, err := s.Storage.Save(ctx, voucherFolder, voucher, storage.VoucherRule)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fieldError("voucher_image", "file exceeds the 5MB limit")
		}
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, fieldError("voucher_image", "must be a jpeg, png, jpg or gif image")
		}
		return nil, fmt.Errorf("store voucher: %w", err)
	}

	order := &models.Order{
		CustomerID:      &customer.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		VendorID:        vendorID,
		ProductID:       lines[0].ProductID,
		TotalPrice:      roundCents(total),
		Status:          models.OrderStatusPending,
		VoucherImage:    voucherPath,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
	}
	if err := s.Repo.CreateOrderWithItems(ctx, order); err != nil {
		if rmErr := s.Storage.Remove(ctx, voucherPath); rmErr != nil {
			logging.FromContext(ctx).Warn("voucher_cleanup_failed", "path", voucherPath, "error", rmErr)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publishOrderEvent(ctx, "order_created", order)

	return &transport.CheckoutResponse{Order: order, UserCredentials: credentials}, nil
}

func parseCart(raw string) ([]transport.CartLine, error) {
	var lines []transport.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fieldError("products", "must be a JSON array of product_id and quantity")
	}
	if len(lines) == 0 {
		return nil, fieldError("products", "cart must contain at least one product")
	}
	for _, line := range lines {
		if line.ProductID == 0 {
			return nil, fieldError("products", "every line needs a product_id")
		}
		if line.Quantity < 1 {
			return nil, fieldError("products", "every quantity must be at least 1")
		}
	}
	return lines, nil
}

func (s *OrderService) resolveProducts(ctx context.Context, lines []transport.CartLine) (map[uint]*models.Product, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	byID := make(map[uint]*models.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fieldError("products", fmt.Sprintf("product %d not found", id))
		}
	}
	return byID, nil
}

// resolveCustomer picks the checkout identity. An authenticated user wins
// over the form fields; a known email without a token demands a login; an
// unknown email gets an account provisioned on the spot. The unique email
// index turns a concurrent duplicate into the same requires-login conflict.
func (s *OrderService) resolveCustomer(ctx context.Context, actor *models.User, req transport.CheckoutRequest) (*models.User, *transport.UserCredentials, error) {
	if actor != nil {
		return actor, nil, nil
	}

	if _, err := s.Repo.GetUserByEmail(ctx, req.CustomerEmail); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmailRegistered, req.CustomerEmail)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("lookup customer: %w", err)
	}

	password, err := randomPassword(12)
	if err != nil {
		return nil, nil, err
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	customer := &models.User{
		Name:               req.CustomerName,
		Email:              req.CustomerEmail,
		PasswordHash:       pwHash,
		Role:               models.RoleCustomer,
		Status:             models.StatusApproved,
		PhoneNumber:        req.CustomerPhone,
		MustChangePassword: true,
	}
	if err := s.Repo.CreateUser(ctx, customer); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, nil, fmt.Errorf("%w: %s", ErrEmailRegistered, req.CustomerEmail)
		}
		return nil, nil, fmt.Errorf("create customer: %w", err)
	}

	if err := s.Mailer.Send(ctx, mailer.Message{
		Kind: mailer.KindCustomerCredentials,
		To:   customer.Email,
		Data: map[string]any{"name": customer.Name, "email": customer.Email, "password": password},
	}); err != nil {
		logging.FromContext(ctx).Warn("mail_enqueue_failed", "kind", string(mailer.KindCustomerCredentials), "error", err)
	}

	credentials := &transport.UserCredentials{
		Email:              customer.Email,
		Password:           password,
		MustChangePassword: true,
	}
	return customer, credentials, nil
}

// UpdateStatus moves a pending order to paid or rejected. Only the assigned
// vendor or an admin may decide, and only once.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *models.User, orderID uint, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	if actor.Role == models.RoleCustomer {
		return nil, fmt.Errorf("%w: customers cannot update order status", ErrForbidden)
	}
	if actor.Role == models.RoleVendor && order.VendorID != actor.ID {
		return nil, fmt.Errorf("%w: order belongs to another vendor", ErrForbidden)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is already %s", ErrNotPending, order.Status)
	}

	order.Status = req.Status
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.publishOrderEvent(ctx, "order_"+req.Status, order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor *models.User, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleVendor:
		if order.VendorID != actor.ID {
			return nil, fmt.Errorf("%w: order belongs to another vendor", ErrForbidden)
		}
	default:
		owned := (order.CustomerID != nil && *order.CustomerID == actor.ID) || order.CustomerEmail == actor.Email
		if !owned {
			return nil, fmt.Errorf("%w: not your order", ErrForbidden)
		}
	}
	return order, nil
}

// OrderListQuery narrows the vendor/admin order listing.
type OrderListQuery struct {
	Status string
	From   string // YYYY-MM-DD
	To     string // YYYY-MM-DD
	Page   int
	Size   int
}

// VendorOrders lists orders for the panel. Vendors see only their own;
// admins see everything.
func (s *OrderService) VendorOrders(ctx context.Context, actor *models.User, q OrderListQuery) (int64, []models.Order, error) {
	filter := repo.OrderFilter{Status: q.Status}
	if actor.Role != models.RoleAdmin {
		filter.VendorID = &actor.ID
	}

	if q.Status != "" && q.Status != models.OrderStatusPending &&
		q.Status != models.OrderStatusPaid && q.Status != models.OrderStatusRejected {
		return 0, nil, fieldError("status", "must be one of: pending, paid, rejected")
	}

	if q.From != "" {
		from, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return 0, nil, fieldError("from", "must be a YYYY-MM-DD date")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return 0, nil, fieldError("to", "must be a YYYY-MM-DD date")
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	offset, limit := util.Calculate(q.Page, q.Size)
	return s.Repo.ListVendorOrders(ctx, filter, offset, limit)
}

func (s *OrderService) CustomerOrders(ctx context.Context, actor *models.User, status string, page, size int) (int64, []models.Order, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListCustomerOrders(ctx, actor.ID, actor.Email, status, offset, limit)
}

// LastAddress returns the shipping address of the user's most recent order,
// or an empty string when there is none.
func (s *OrderService) LastAddress(ctx context.Context, actor *models.User) (string, error) {
	address, err := s.Repo.LastOrderAddress(ctx, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load last address: %w", err)
	}
	return address, nil
}

func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, o *models.Order) {
	event := map[string]any{
		"type":      eventType,
		"order_id":  o.ID,
		"vendor_id": o.VendorID,
		"status":    o.Status,
		"total":     o.TotalPrice,
	}
	if err := s.Events.PublishEvent(ctx, events.TopicOrderEvents, strconv.FormatUint(uint64(o.ID), 10), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", events.TopicOrderEvents, "error", err)
	}
}
