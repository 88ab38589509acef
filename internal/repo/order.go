package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
)

// CreateOrderWithItems persists the order and its item snapshots in one
// transaction; a failure partway leaves nothing behind.
func (r *GormRepo) CreateOrderWithItems(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Vendor").
		Preload("Items").
		Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderFilter narrows order listings. VendorID nil means all vendors (admin
// view).
type OrderFilter struct {
	VendorID *uint
	Status   string
	From     *time.Time
	To       *time.Time
}

func (r *GormRepo) ListVendorOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.VendorID != nil {
		q = q.Where("vendor_id = ?", *f.VendorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	err := q.Preload("Customer").Preload("Vendor").Preload("Items").Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// ListCustomerOrders matches by customer id or by the denormalized email, so
// pre-registration guest orders stay visible after the account exists.
func (r *GormRepo) ListCustomerOrders(ctx context.Context, customerID uint, email, status string, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("customer_id = ? OR customer_email = ?", customerID, email)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	err := q.Preload("Vendor").Preload("Items").Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Save(order).Error
}

func (r *GormRepo) LastOrderAddress(ctx context.Context, customerID uint) (string, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Where("customer_id = ? AND customer_address <> ''", customerID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return "", err
	}
	return order.CustomerAddress, nil
}
