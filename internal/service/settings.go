package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/validation"
)

const (
	logoFolder     = "logos"
	SettingLogoURL = "logo_url"
)

// SettingsService is the explicit key/value configuration store. Nothing
// reads settings ambiently; callers fetch the keys they need.
type SettingsService struct {
	Repo    *repo.GormRepo
	Storage storage.Store
	BaseURL string
}

func NewSettingsService(r *repo.GormRepo, st storage.Store, baseURL string) *SettingsService {
	return &SettingsService{Repo: r, Storage: st, BaseURL: baseURL}
}

func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.Repo.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: setting %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("load setting: %w", err)
	}
	return setting, nil
}

func (s *SettingsService) List(ctx context.Context) ([]models.Setting, error) {
	return s.Repo.ListSettings(ctx)
}

func (s *SettingsService) Set(ctx context.Context, req transport.SettingRequest) (*models.Setting, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}
	setting, err := s.Repo.SetSetting(ctx, req.Key, req.Value, req.Description)
	if err != nil {
		return nil, fmt.Errorf("save setting: %w", err)
	}
	return setting, nil
}

// UploadLogo stores the site logo, replaces the previous file and records the
// public URL under the logo_url key.
func (s *SettingsService) UploadLogo(ctx context.Context, fh *multipart.FileHeader) (*models.Setting, error) {
	if fh == nil {
		return nil, fieldError("logo", "this field is required")
	}

	path, err := s.Storage.Save(ctx, logoFolder, fh, storage.LogoRule)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fieldError("logo", "file exceeds the 2MB limit")
		}
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, fieldError("logo", "must be a jpeg, png, jpg or svg image")
		}
		return nil, fmt.Errorf("store logo: %w", err)
	}

	var previous string
	if existing, err := s.Repo.GetSetting(ctx, SettingLogoURL); err == nil {
		previous = existing.Value
	}

	setting, err := s.Repo.SetSetting(ctx, SettingLogoURL, storage.PublicURL(s.BaseURL, path), "site logo")
	if err != nil {
		return nil, fmt.Errorf("save setting: %w", err)
	}

	if previous != "" {
		if rel := storage.RelPath(s.BaseURL, previous); rel != "" {
			if err := s.Storage.Remove(ctx, rel); err != nil {
				logging.FromContext(ctx).Warn("logo_cleanup_failed", "path", rel, "error", err)
			}
		}
	}
	return setting, nil
}
