package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/validation"
)

const bannerFolder = "banners"

// CmsService owns the storefront presentation layer: navigation, banners,
// footer and social links.
type CmsService struct {
	Repo    *repo.GormRepo
	Storage storage.Store
}

func NewCmsService(r *repo.GormRepo, st storage.Store) *CmsService {
	return &CmsService{Repo: r, Storage: st}
}

func boolOrDefault(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func notFoundOf(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}

// Categories

func (s *CmsService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	if activeOnly {
		return s.Repo.ListActiveCategories(ctx)
	}
	return s.Repo.ListCategories(ctx)
}

func (s *CmsService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	category := &models.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		Icon:     req.Icon,
		Order:    req.Order,
		IsActive: boolOrDefault(req.IsActive, true),
	}
	if err := repo.Create(ctx, s.Repo.DB, category); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fieldError("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *CmsService) UpdateCategory(ctx context.Context, id uint, req transport.CategoryRequest) (*models.Category, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	category, err := repo.FindByID[models.Category](ctx, s.Repo.DB, id)
	if err != nil {
		return nil, notFoundOf(err, "category", id)
	}
	category.Name = req.Name
	category.Slug = req.Slug
	category.Icon = req.Icon
	category.Order = req.Order
	category.IsActive = boolOrDefault(req.IsActive, category.IsActive)
	if err := repo.Save(ctx, s.Repo.DB, category); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fieldError("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("save category: %w", err)
	}
	return category, nil
}

func (s *CmsService) DeleteCategory(ctx context.Context, id uint) error {
	if err := repo.DeleteByID[models.Category](ctx, s.Repo.DB, id); err != nil {
		return notFoundOf(err, "category", id)
	}
	return nil
}

// Menu items

func (s *CmsService) ListMenuItems(ctx context.Context, activeOnly bool) ([]models.MenuItem, error) {
	return repo.ListOrdered[models.MenuItem](ctx, s.Repo.DB, "\"order\" ASC", activeOnly)
}

func (s *CmsService) CreateMenuItem(ctx context.Context, req transport.MenuItemRequest) (*models.MenuItem, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	item := &models.MenuItem{
		Label:      req.Label,
		Path:       req.Path,
		Slug:       req.Slug,
		Icon:       req.Icon,
		Order:      req.Order,
		IsActive:   boolOrDefault(req.IsActive, true),
		Type:       req.Type,
		CategoryID: req.CategoryID,
	}
	if err := repo.Create(ctx, s.Repo.DB, item); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fieldError("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return item, nil
}

func (s *CmsService) UpdateMenuItem(ctx context.Context, id uint, req transport.MenuItemRequest) (*models.MenuItem, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	item, err := repo.FindByID[models.MenuItem](ctx, s.Repo.DB, id)
	if err != nil {
		return nil, notFoundOf(err, "menu item", id)
	}
	item.Label = req.Label
	item.Path = req.Path
	item.Slug = req.Slug
	item.Icon = req.Icon
	item.Order = req.Order
	item.IsActive = boolOrDefault(req.IsActive, item.IsActive)
	item.Type = req.Type
	item.CategoryID = req.CategoryID
	if err := repo.Save(ctx, s.Repo.DB, item); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fieldError("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("save menu item: %w", err)
	}
	return item, nil
}

func (s *CmsService) DeleteMenuItem(ctx context.Context, id uint) error {
	if err := repo.DeleteByID[models.MenuItem](ctx, s.Repo.DB, id); err != nil {
		return notFoundOf(err, "menu item", id)
	}
	return nil
}

// Featured categories

func (s *CmsService) ListFeaturedCategories(ctx context.Context, activeOnly bool) ([]models.FeaturedCategory, error) {
	return s.Repo.ListFeaturedCategories(ctx, activeOnly)
}

func (s *CmsService) CreateFeaturedCategory(ctx context.Context, req transport.FeaturedCategoryRequest) (*models.FeaturedCategory, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	if _, err := repo.FindByID[models.Category](ctx, s.Repo.DB, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("category_id", "category does not exist")
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	fc := &models.FeaturedCategory{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Icon:            req.Icon,
		ImageURL:        req.ImageURL,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		Order:           req.Order,
		IsActive:        boolOrDefault(req.IsActive, true),
	}
	if err := repo.Create(ctx, s.Repo.DB, fc); err != nil {
		return nil, fmt.Errorf("create featured category: %w", err)
	}
	return fc, nil
}

func (s *CmsService) UpdateFeaturedCategory(ctx context.Context, id uint, req transport.FeaturedCategoryRequest) (*models.FeaturedCategory, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	fc, err := repo.FindByID[models.FeaturedCategory](ctx, s.Repo.DB, id)
	if err != nil {
		return nil, notFoundOf(err, "featured category", id)
	}
	fc.CategoryID = req.CategoryID
	fc.Name = req.Name
	fc.Icon = req.Icon
	fc.ImageURL = req.ImageURL
	fc.BackgroundColor = req.BackgroundColor
	fc.TextColor = req.TextColor
	fc.Order = req.Order
	fc.IsActive = boolOrDefault(req.IsActive, fc.IsActive)
	if err := repo.Save(ctx, s.Repo.DB, fc); err != nil {
		return nil, fmt.Errorf("save featured category: %w", err)
	}
	return fc, nil
}

func (s *CmsService) ToggleFeaturedCategory(ctx context.Context, id uint) (*models.FeaturedCategory, error) {
	fc, err := repo.FindByID[models.FeaturedCategory](ctx, s.Repo.DB, id)
	if err != nil {
		return nil, notFoundOf(err, "featured category", id)
	}
	fc.IsActive = !fc.IsActive
	if err := repo.Save(ctx, s.Repo.DB, fc); err != nil {
		return nil, fmt.Errorf("save featured category: %w", err)
	}
	return fc, nil
}

func (s *CmsService) DeleteFeaturedCategory(ctx context.Context, id uint) error {
	if err := repo.DeleteByID[models.FeaturedCategory](ctx, s.Repo.DB, id); err != nil {
		return notFoundOf(err, "featured category", id)
	}
	return nil
}

// Promotional banners

func (s *CmsService) ListPromotionalBanners(ctx context.Context, activeOnly bool) ([]models.PromotionalBanner, error) {
	return repo.ListOrdered[models.PromotionalBanner](ctx, s.Repo.DB, "\"order\" ASC", activeOnly)
}

func (s *CmsService) CreatePromotionalBanner(ctx context.Context, req transport.PromotionalBannerRequest) (*models.PromotionalBanner, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	banner := &models.PromotionalBanner{
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		ButtonText:      req.ButtonText,
		ButtonLink:      req.ButtonLink,
		ImageLeftURL:    req.ImageLeftURL,
		ImageRightURL:   req.ImageRightURL,
		BackgroundColor: req.BackgroundColor,
		Order:           req.Order,
		IsActive:        boolOrDefault(req.IsActive, true),
	}
	if err := repo.Create(ctx, s.Repo.DB, banner); err != nil {
		return nil, fmt.Errorf("create promotional banner: %w", err)
	}
	return banner, nil
}

func (s *CmsService) UpdatePromotionalBanner(ctx context.Context, id uint, req transport.PromotionalBannerRequest) (*models.PromotionalBanner, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	banner, err := repo.FindByID[models.PromotionalBanner](ctx, s.Repo.DB, id)
	if err != nil {
		return nil, notFoundOf(err, "promotional banner", id)
	}
	banner.Title = req.Title
	banner.Subtitle = req.Subtitle
	banner.ButtonText = req.ButtonText
	banner.ButtonLink = req.ButtonLink
	banner.ImageLeftURL = req.ImageLeftURL
	banner.ImageRightURL = req.ImageRightURL
	banner.BackgroundColor = req.BackgroundColor
	banner.Order = req.Order
	banner.IsActive = boolOrDefault(req.IsActive, banner.IsActive)
	if err := repo.Save(ctx, s.Repo.DB, banner); err != nil {
		return nil, fmt.Errorf("save promotional banner: %w", err)
	}
	return banner, nil
}

func (s *CmsService) DeletePromotionalBanner(ctx context.Context, id uint) error {
	if err := repo.DeleteByID[models.PromotionalBanner](ctx, s.Repo.DB, id); err != nil {
		return notFoundOf(err, "promotional banner", id)
	}
	return nil
}

// Home banners

func (s *CmsService) ListHomeBanners(ctx context.Context, activeOnly bool) ([]models.HomeBanner, error) {
	return repo.ListOrdered[models.HomeBanner](ctx, s.Repo.DB, "\"order\" ASC", activeOnly)
}

func (s *CmsService) CreateHomeBanner(ctx context.Context, req transport.HomeBannerRequest) (*models.HomeBanner, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	banner := &models.HomeBanner{
		Title:              req.Title,
		Subtitle:           req.Subtitle,
		ButtonText:         req.ButtonText,
		ButtonLink:         req.ButtonLink,
		BackgroundImageURL: req.BackgroundImageURL,
		BackgroundColor:    req.BackgroundColor,
		Order:              req.Order,
		IsActive:           boolOrDefault(req.IsActive, true),
	}
	if err := repo.Create(ctx, s.Repo.DB, banner); err != nil {
		return nil, fmt.Errorf("create home banner: %w", err)
	}
	return banner, nil
}

func (s *CmsService) UpdateHomeBanner(ctx context.Context, id uint, req transport.HomeBannerRequest) (*models.HomeBanner, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	banner, err := repo.FindByID[models.HomeBanner](ctx, s.Repo.DB, id)
	if err != nil {
		return nil, notFoundOf(err, "home banner", id)
	}
	banner.Title = req.Title
	banner.Subtitle = req.Subtitle
	banner.ButtonText = req.ButtonText
	banner.ButtonLink = req.ButtonLink
	banner.BackgroundImageURL = req.BackgroundImageURL
	banner.BackgroundColor = req.BackgroundColor
	banner.Order = req.Order
	banner.IsActive = boolOrDefault(req.IsActive, banner.IsActive)
	if err := repo.Save(ctx, s.Repo.DB, banner); err != nil {
		return nil, fmt.Errorf("save home banner: %w", err)
	}
	return banner, nil
}

func (s *CmsService) DeleteHomeBanner(ctx context.Context, id uint) error {
	if err := repo.DeleteByID[models.HomeBanner](ctx, s.Repo.DB, id); err != nil {
		return notFoundOf(err, "home banner", id)
	}
	return nil
}

// UploadBannerImage stores a banner image and returns its relative path. The
// admin panel then references it from a banner record.
func (s *CmsService) UploadBannerImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fieldError("image", "this field is required")
	}
	path, err := s.Storage.Save(ctx, bannerFolder, fh, storage.ImageRule)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", fieldError("image", "file exceeds the 5MB limit")
		}
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", fieldError("image", "must be a jpeg, png, jpg, gif or webp image")
		}
		return "", fmt.Errorf("store banner image: %w", err)
	}
	return path, nil
}

// Top banner

func (s *CmsService) GetTopBanner(ctx context.Context) (*models.TopBannerSetting, error) {
	return s.Repo.GetTopBanner(ctx)
}

func (s *CmsService) UpdateTopBanner(ctx context.Context, req transport.TopBannerRequest) (*models.TopBannerSetting, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	banner, err := s.Repo.GetTopBanner(ctx)
	if err != nil {
		return nil, fmt.Errorf("load top banner: %w", err)
	}
	banner.Text = req.Text
	banner.BackgroundColor = req.BackgroundColor
	banner.TextColor = req.TextColor
	banner.IsActive = boolOrDefault(req.IsActive, banner.IsActive)
	if err := s.Repo.SaveTopBanner(ctx, banner); err != nil {
		return nil, fmt.Errorf("save top banner: %w", err)
	}
	return banner, nil
}

// Footer sections

func (s *CmsService) ListFooterSections(ctx context.Context, activeOnly bool) ([]models.FooterSection, error) {
	return s.Repo.ListFooterSections(ctx, activeOnly)
}

// UpsertFooterSection writes the section at the requested position, creating
// it when absent.
func (s *CmsService) UpsertFooterSection(ctx context.Context, req transport.FooterSectionRequest) (*models.FooterSection, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	section, err := s.Repo.GetFooterSectionByPosition(ctx, req.Position)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		section = &models.FooterSection{Position: req.Position}
	} else if err != nil {
		return nil, fmt.Errorf("load footer section: %w", err)
	}

	section.Title = req.Title
	section.Content = req.Content
	section.LogoURL = req.LogoURL
	section.Description = req.Description
	section.Phone = req.Phone
	section.Email = req.Email
	section.Address = req.Address
	section.Links = req.Links
	section.IsActive = boolOrDefault(req.IsActive, true)

	if section.ID == 0 {
		err = repo.Create(ctx, s.Repo.DB, section)
	} else {
		err = repo.Save(ctx, s.Repo.DB, section)
	}
	if err != nil {
		return nil, fmt.Errorf("save footer section: %w", err)
	}
	return section, nil
}

// Social links

func (s *CmsService) ListSocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialLink, error) {
	return s.Repo.ListSocialLinks(ctx, activeOnly)
}

func (s *CmsService) UpsertSocialLink(ctx context.Context, req transport.SocialLinkRequest) (*models.SocialLink, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	link := &models.SocialLink{
		Platform: req.Platform,
		URL:      req.URL,
		IsActive: boolOrDefault(req.IsActive, true),
	}
	if err := s.Repo.UpsertSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("save social link: %w", err)
	}
	return link, nil
}

func (s *CmsService) DeleteSocialLink(ctx context.Context, id uint) error {
	if err := repo.DeleteByID[models.SocialLink](ctx, s.Repo.DB, id); err != nil {
		return notFoundOf(err, "social link", id)
	}
	return nil
}
