package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
)

// DashboardStats aggregates the figures shown on the vendor and admin panels.
type DashboardStats struct {
	TotalProducts      int64   `json:"total_products"`
	ProductsInStock    int64   `json:"products_in_stock"`
	ProductsOutOfStock int64   `json:"products_out_of_stock"`
	TotalOrders        int64   `json:"total_orders"`
	PendingOrders      int64   `json:"pending_orders"`
	PaidOrders         int64   `json:"paid_orders"`
	RejectedOrders     int64   `json:"rejected_orders"`
	TotalRevenue       float64 `json:"total_revenue"`
	RevenueLast30Days  float64 `json:"revenue_last_30_days"`
}

// GetDashboardStats computes the panel figures. A nil vendorID produces
// platform-wide totals for the admin view.
func (r *GormRepo) GetDashboardStats(ctx context.Context, vendorID *uint) (*DashboardStats, error) {
	var stats DashboardStats

	products := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&models.Product{})
		if vendorID != nil {
			q = q.Where("user_id = ?", *vendorID)
		}
		return q
	}
	orders := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&models.Order{})
		if vendorID != nil {
			q = q.Where("vendor_id = ?", *vendorID)
		}
		return q
	}

	if err := products().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock > 0").Count(&stats.ProductsInStock).Error; err != nil {
		return nil, err
	}
	stats.ProductsOutOfStock = stats.TotalProducts - stats.ProductsInStock

	if err := orders().Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("status = ?", models.OrderStatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("status = ?", models.OrderStatusPaid).Count(&stats.PaidOrders).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("status = ?", models.OrderStatusRejected).Count(&stats.RejectedOrders).Error; err != nil {
		return nil, err
	}

	// Revenue counts confirmed payments only.
	err := orders().Where("status = ?", models.OrderStatusPaid).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -30)
	err = orders().Where("status = ? AND created_at >= ?", models.OrderStatusPaid, since).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&stats.RevenueLast30Days).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
