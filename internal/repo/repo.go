package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate marks unique-index violations regardless of driver.
var ErrDuplicate = errors.New("duplicate key")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	// Fallback for drivers without error translation.
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return ErrDuplicate
	}
	return err
}

// Generic CRUD over the flat CMS tables. The presentation entities (menu
// items, banners, featured categories) share the same access shape, so one
// implementation serves them all.

func FindByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func ListOrdered[T any](ctx context.Context, db *gorm.DB, orderCol string, activeOnly bool) ([]T, error) {
	q := db.WithContext(ctx).Model(new(T))
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []T
	if err := q.Order(orderCol).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func Create[T any](ctx context.Context, db *gorm.DB, row *T) error {
	return translateDuplicate(db.WithContext(ctx).Create(row).Error)
}

func Save[T any](ctx context.Context, db *gorm.DB, row *T) error {
	return translateDuplicate(db.WithContext(ctx).Save(row).Error)
}

func DeleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
