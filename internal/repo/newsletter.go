package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
)

// SubscribeNewsletter creates or reactivates a subscription. The second return
// value reports whether the email was already actively subscribed.
func (r *GormRepo) SubscribeNewsletter(ctx context.Context, email string) (*models.NewsletterSubscription, bool, error) {
	var sub models.NewsletterSubscription
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.NewsletterSubscription{Email: email, IsActive: true, SubscribedAt: time.Now().UTC()}
		if err := translateDuplicate(r.DB.WithContext(ctx).Create(&sub).Error); err != nil {
			return nil, false, err
		}
		return &sub, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if sub.IsActive {
		return &sub, true, nil
	}
	sub.IsActive = true
	sub.SubscribedAt = time.Now().UTC()
	if err := r.DB.WithContext(ctx).Save(&sub).Error; err != nil {
		return nil, false, err
	}
	return &sub, false, nil
}

func (r *GormRepo) UnsubscribeNewsletter(ctx context.Context, email string) error {
	res := r.DB.WithContext(ctx).Model(&models.NewsletterSubscription{}).
		Where("email = ? AND is_active = ?", email, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListNewsletterSubscriptions(ctx context.Context, activeOnly bool, offset, limit int) (int64, []models.NewsletterSubscription, error) {
	q := r.DB.WithContext(ctx).Model(&models.NewsletterSubscription{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var subs []models.NewsletterSubscription
	if err := q.Order("subscribed_at DESC").Offset(offset).Limit(limit).Find(&subs).Error; err != nil {
		return 0, nil, err
	}
	return total, subs, nil
}
