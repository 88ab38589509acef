package repo

import (
	"context"

	"github.com/fatmac/marketplace/internal/models"
)

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser relies on the unique email index to arbitrate concurrent
// creation; a lost race surfaces as ErrDuplicate.
func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return translateDuplicate(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *GormRepo) SaveUser(ctx context.Context, user *models.User) error {
	return translateDuplicate(r.DB.WithContext(ctx).Save(user).Error)
}

func (r *GormRepo) ListVendors(ctx context.Context, status string, offset, limit int) (int64, []models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleVendor)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var vendors []models.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&vendors).Error; err != nil {
		return 0, nil, err
	}
	return total, vendors, nil
}

func (r *GormRepo) CountPendingVendors(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND status = ?", models.RoleVendor, models.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *GormRepo) ListApprovedVendors(ctx context.Context) ([]models.User, error) {
	var vendors []models.User
	err := r.DB.WithContext(ctx).
		Where("role = ? AND status = ?", models.RoleVendor, models.StatusApproved).
		Order("name ASC").
		Find(&vendors).Error
	return vendors, err
}

func (r *GormRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	var admins []models.User
	err := r.DB.WithContext(ctx).Where("role = ?", models.RoleAdmin).Find(&admins).Error
	return admins, err
}
