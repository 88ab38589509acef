package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/events"
	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
	"github.com/fatmac/marketplace/internal/validation"
)

const (
	productFolder    = "products"
	maxProductImages = 10
)

type CatalogService struct {
	Repo    *repo.GormRepo
	Storage storage.Store
	Events  events.Publisher
}

func NewCatalogService(r *repo.GormRepo, st storage.Store, ev events.Publisher) *CatalogService {
	return &CatalogService{Repo: r, Storage: st, Events: ev}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repo.ProductFilter, page, size int) (int64, []models.Product, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListProducts(ctx, filter, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *models.User, req transport.CreateProductRequest, images []*multipart.FileHeader) (*models.Product, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	if len(images) > maxProductImages {
		return nil, fieldError("images", fmt.Sprintf("at most %d images per product", maxProductImages))
	}

	if req.CategoryID != nil {
		if _, err := repo.FindByID[models.Category](ctx, s.Repo.DB, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fieldError("category_id", "category does not exist")
			}
			return nil, fmt.Errorf("load category: %w", err)
		}
	}

	product := &models.Product{
		UserID:             actor.ID,
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		Condition:          req.Condition,
		IsNew:              req.IsNew,
		IsFeatured:         req.IsFeatured,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.attachImages(ctx, product, images, 0); err != nil {
		return nil, err
	}

	s.publishProductEvent(ctx, "product_created", product)
	return s.GetProduct(ctx, product.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor *models.User, id uint, req transport.UpdateProductRequest, images []*multipart.FileHeader) (*models.Product, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPercentage != nil {
		product.DiscountPercentage = req.DiscountPercentage
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Condition != nil {
		product.Condition = *req.Condition
	}
	if req.CategoryID != nil {
		if _, err := repo.FindByID[models.Category](ctx, s.Repo.DB, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fieldError("category_id", "category does not exist")
			}
			return nil, fmt.Errorf("load category: %w", err)
		}
		product.CategoryID = req.CategoryID
	}
	if req.IsNew != nil {
		product.IsNew = *req.IsNew
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if len(req.DeleteImages) > 0 {
		owned, err := s.Repo.GetProductImages(ctx, product.ID, req.DeleteImages)
		if err != nil {
			return nil, fmt.Errorf("load images: %w", err)
		}
		for _, img := range owned {
			if err := s.Repo.DeleteProductImage(ctx, img.ID); err != nil {
				return nil, fmt.Errorf("delete image: %w", err)
			}
			if err := s.Storage.Remove(ctx, img.ImagePath); err != nil {
				logging.FromContext(ctx).Warn("image_cleanup_failed", "path", img.ImagePath, "error", err)
			}
		}
	}

	count, err := s.Repo.CountProductImages(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if int(count)+len(images) > maxProductImages {
		return nil, fieldError("images", fmt.Sprintf("at most %d images per product", maxProductImages))
	}
	if err := s.attachImages(ctx, product, images, int(count)); err != nil {
		return nil, err
	}

	product.Images = nil
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.publishProductEvent(ctx, "product_updated", product)
	return s.GetProduct(ctx, product.ID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor *models.User, id uint) error {
	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		paths = append(paths, img.ImagePath)
	}

	if err := s.Repo.DeleteProduct(ctx, product.ID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	for _, path := range paths {
		if err := s.Storage.Remove(ctx, path); err != nil {
			logging.FromContext(ctx).Warn("image_cleanup_failed", "path", path, "error", err)
		}
	}

	s.publishProductEvent(ctx, "product_deleted", product)
	return nil
}

// MyProducts lists the actor's own catalog for the vendor panel.
func (s *CatalogService) MyProducts(ctx context.Context, actor *models.User, page, size int) (int64, []models.Product, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListProducts(ctx, repo.ProductFilter{VendorIDs: []uint{actor.ID}}, offset, limit)
}

// ownedProduct enforces ownership: vendors touch only their rows, admins
// anything.
func (s *CatalogService) ownedProduct(ctx context.Context, actor *models.User, id uint) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && product.UserID != actor.ID {
		return nil, fmt.Errorf("%w: product belongs to another vendor", ErrForbidden)
	}
	return product, nil
}

func (s *CatalogService) attachImages(ctx context.Context, product *models.Product, images []*multipart.FileHeader, startOrder int) error {
	for i, fh := range images {
		path, err := s.Storage.Save(ctx, productFolder, fh, storage.ImageRule)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return fieldError("images", "each image must be at most 5MB")
			}
			if errors.Is(err, storage.ErrUnsupportedType) {
				return fieldError("images", "images must be jpeg, png, jpg, gif or webp")
			}
			return fmt.Errorf("store image: %w", err)
		}
		img := &models.ProductImage{ProductID: product.ID, ImagePath: path, Order: startOrder + i}
		if err := s.Repo.AddProductImage(ctx, img); err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		if product.ImageURL == "" {
			product.ImageURL = path
			if err := s.Repo.SaveProduct(ctx, product); err != nil {
				return fmt.Errorf("save product: %w", err)
			}
		}
	}
	return nil
}

func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, p *models.Product) {
	event := map[string]any{
		"type":       eventType,
		"product_id": p.ID,
		"vendor_id":  p.UserID,
		"name":       p.Name,
	}
	if err := s.Events.PublishEvent(ctx, events.TopicProductEvents, strconv.FormatUint(uint64(p.ID), 10), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", events.TopicProductEvents, "error", err)
	}
}
