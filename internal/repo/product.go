package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
)

// ProductFilter narrows the public product listing.
type ProductFilter struct {
	CategorySlug string
	CategoryIDs  []uint
	VendorIDs    []uint
	IsNew        bool
	HasDiscount  bool
	IsFeatured   bool
	Conditions   []string
	MinPrice     *float64
	MaxPrice     *float64
	Search       string
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" ASC") }).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListProducts returns only products whose owner is an approved seller.
func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("user_id IN (SELECT id FROM users WHERE role = ? OR (role = ? AND status = ?))",
			models.RoleAdmin, models.RoleVendor, models.StatusApproved)

	if f.CategorySlug != "" {
		q = q.Where("category_id IN (SELECT id FROM categories WHERE slug = ?)", f.CategorySlug)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	if len(f.VendorIDs) > 0 {
		q = q.Where("user_id IN ?", f.VendorIDs)
	}
	if f.IsNew {
		q = q.Where("is_new = ?", true)
	}
	if f.HasDiscount {
		q = q.Where("discount_percentage IS NOT NULL AND discount_percentage > 0")
	}
	if f.IsFeatured {
		q = q.Where("is_featured = ?", true)
	}
	if len(f.Conditions) > 0 {
		q = q.Where("condition IN ?", f.Conditions)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var products []models.Product
	err := q.Preload("User").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" ASC") }).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return 0, nil, err
	}
	return total, products, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Select("Images").Delete(&models.Product{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	return r.DB.WithContext(ctx).Create(img).Error
}

func (r *GormRepo) CountProductImages(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

// GetProductImages returns only images that belong to the given product, so
// callers cannot delete another product's files by id.
func (r *GormRepo) GetProductImages(ctx context.Context, productID uint, ids []uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND id IN ?", productID, ids).
		Find(&images).Error
	return images, err
}

func (r *GormRepo) DeleteProductImage(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.ProductImage{}, id).Error
}
