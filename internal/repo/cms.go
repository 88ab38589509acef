package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
)

// GetTopBanner returns the singleton top banner row, creating it on first
// access.
func (r *GormRepo) GetTopBanner(ctx context.Context) (*models.TopBannerSetting, error) {
	var banner models.TopBannerSetting
	err := r.DB.WithContext(ctx).First(&banner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		banner = models.TopBannerSetting{IsActive: false}
		if err := r.DB.WithContext(ctx).Create(&banner).Error; err != nil {
			return nil, err
		}
		return &banner, nil
	}
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *GormRepo) SaveTopBanner(ctx context.Context, banner *models.TopBannerSetting) error {
	return r.DB.WithContext(ctx).Save(banner).Error
}

func (r *GormRepo) ListFooterSections(ctx context.Context, activeOnly bool) ([]models.FooterSection, error) {
	return ListOrdered[models.FooterSection](ctx, r.DB, "position ASC", activeOnly)
}

func (r *GormRepo) GetFooterSectionByPosition(ctx context.Context, position int) (*models.FooterSection, error) {
	var section models.FooterSection
	err := r.DB.WithContext(ctx).Where("position = ?", position).First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// UpsertSocialLink updates the link for a platform or creates it, keyed by the
// unique platform index.
func (r *GormRepo) UpsertSocialLink(ctx context.Context, link *models.SocialLink) error {
	var existing models.SocialLink
	err := r.DB.WithContext(ctx).Where("platform = ?", link.Platform).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return translateDuplicate(r.DB.WithContext(ctx).Create(link).Error)
	}
	if err != nil {
		return err
	}
	existing.URL = link.URL
	existing.IsActive = link.IsActive
	if err := r.DB.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*link = existing
	return nil
}

func (r *GormRepo) ListSocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialLink, error) {
	return ListOrdered[models.SocialLink](ctx, r.DB, "platform ASC", activeOnly)
}

func (r *GormRepo) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	return ListOrdered[models.Category](ctx, r.DB, "\"order\" ASC", true)
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return ListOrdered[models.Category](ctx, r.DB, "\"order\" ASC", false)
}

func (r *GormRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) ListFeaturedCategories(ctx context.Context, activeOnly bool) ([]models.FeaturedCategory, error) {
	q := r.DB.WithContext(ctx).Model(&models.FeaturedCategory{}).Preload("Category")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.FeaturedCategory
	if err := q.Order("\"order\" ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
