package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
)

func (r *GormRepo) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting writes the value for a key, creating the row if missing.
func (r *GormRepo) SetSetting(ctx context.Context, key, value, description string) (*models.Setting, error) {
	var setting models.Setting
	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{Key: key, Value: value, Description: description}
		if err := translateDuplicate(r.DB.WithContext(ctx).Create(&setting).Error); err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}
	setting.Value = value
	if description != "" {
		setting.Description = description
	}
	if err := r.DB.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *GormRepo) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.DB.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}
