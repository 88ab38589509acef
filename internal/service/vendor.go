package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
	"github.com/fatmac/marketplace/internal/validation"
)

const qrFolder = "qr"

type VendorService struct {
	Repo    *repo.GormRepo
	Mailer  mailer.Mailer
	Storage storage.Store
}

func NewVendorService(r *repo.GormRepo, m mailer.Mailer, st storage.Store) *VendorService {
	return &VendorService{Repo: r, Mailer: m, Storage: st}
}

func (s *VendorService) ListVendors(ctx context.Context, status string, page, size int) (int64, []models.User, error) {
	if status != "" && status != models.StatusPending &&
		status != models.StatusApproved && status != models.StatusRejected {
		return 0, nil, fieldError("status", "must be one of: pending, approved, rejected")
	}
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListVendors(ctx, status, offset, limit)
}

func (s *VendorService) PendingCount(ctx context.Context) (int64, error) {
	return s.Repo.CountPendingVendors(ctx)
}

func (s *VendorService) getVendor(ctx context.Context, id uint) (*models.User, error) {
	vendor, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load vendor: %w", err)
	}
	if vendor.Role != models.RoleVendor {
		return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, id)
	}
	return vendor, nil
}

// SetStatus approves or rejects a vendor application and notifies the vendor
// by mail, best-effort.
func (s *VendorService) SetStatus(ctx context.Context, vendorID uint, req transport.VendorStatusRequest) (*models.User, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	vendor, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	vendor.Status = req.Status
	if err := s.Repo.SaveUser(ctx, vendor); err != nil {
		return nil, fmt.Errorf("save vendor: %w", err)
	}

	if err := s.Mailer.Send(ctx, mailer.Message{
		Kind: mailer.KindVendorStatusChanged,
		To:   vendor.Email,
		Data: map[string]any{"name": vendor.Name, "status": vendor.Status},
	}); err != nil {
		logging.FromContext(ctx).Warn("mail_enqueue_failed", "kind", string(mailer.KindVendorStatusChanged), "error", err)
	}
	return vendor, nil
}

// AdminUpdate edits a vendor's basic fields. Email and password are never
// touched here.
func (s *VendorService) AdminUpdate(ctx context.Context, vendorID uint, req transport.AdminUpdateVendorRequest) (*models.User, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	vendor, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		vendor.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		vendor.PhoneNumber = *req.PhoneNumber
	}
	if req.WhatsappNumber != nil {
		vendor.WhatsappNumber = *req.WhatsappNumber
	}
	if req.BusinessDescription != nil {
		vendor.BusinessDescription = *req.BusinessDescription
	}
	if req.BusinessAddress != nil {
		vendor.BusinessAddress = *req.BusinessAddress
	}

	if err := s.Repo.SaveUser(ctx, vendor); err != nil {
		return nil, fmt.Errorf("save vendor: %w", err)
	}
	return vendor, nil
}

// UploadQr stores a payment QR for the vendor and deletes the replaced file.
func (s *VendorService) UploadQr(ctx context.Context, actor *models.User, method string, fh *multipart.FileHeader) (*models.User, error) {
	if method != models.PaymentYape && method != models.PaymentPlin {
		return nil, fieldError("method", "must be one of: yape, plin")
	}
	if fh == nil {
		return nil, fieldError("qr_image", "this field is required")
	}

	path, err := s.Storage.Save(ctx, qrFolder, fh, storage.QrRule)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fieldError("qr_image", "file exceeds the 5MB limit")
		}
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, fieldError("qr_image", "must be a jpeg, png, jpg or gif image")
		}
		return nil, fmt.Errorf("store qr: %w", err)
	}

	var previous string
	switch method {
	case models.PaymentYape:
		previous = actor.YapeQr
		actor.YapeQr = path
	case models.PaymentPlin:
		previous = actor.PlinQr
		actor.PlinQr = path
	}

	if err := s.Repo.SaveUser(ctx, actor); err != nil {
		return nil, fmt.Errorf("save vendor: %w", err)
	}
	if previous != "" {
		if err := s.Storage.Remove(ctx, previous); err != nil {
			logging.FromContext(ctx).Warn("qr_cleanup_failed", "path", previous, "error", err)
		}
	}
	return actor, nil
}

// PublicVendors lists approved vendors for the storefront.
func (s *VendorService) PublicVendors(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListApprovedVendors(ctx)
}

// VendorQr returns the payment QR paths of an approved vendor.
func (s *VendorService) VendorQr(ctx context.Context, vendorID uint) (yape, plin string, err error) {
	vendor, err := s.getVendor(ctx, vendorID)
	if err != nil {
		return "", "", err
	}
	if vendor.Status != models.StatusApproved {
		return "", "", fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
	}
	return vendor.YapeQr, vendor.PlinQr, nil
}
