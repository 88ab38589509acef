package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
	"github.com/fatmac/marketplace/internal/validation"
)

type NewsletterService struct {
	Repo *repo.GormRepo
}

func NewNewsletterService(r *repo.GormRepo) *NewsletterService {
	return &NewsletterService{Repo: r}
}

// Subscribe adds or reactivates a subscription. Re-subscribing an active
// email is a no-op reported to the caller.
func (s *NewsletterService) Subscribe(ctx context.Context, req transport.NewsletterRequest) (*models.NewsletterSubscription, bool, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, false, newValidationError(fields)
	}
	sub, already, err := s.Repo.SubscribeNewsletter(ctx, req.Email)
	if err != nil {
		return nil, false, fmt.Errorf("subscribe: %w", err)
	}
	return sub, already, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, req transport.NewsletterRequest) error {
	if fields := validation.Struct(req); fields != nil {
		return newValidationError(fields)
	}
	if err := s.Repo.UnsubscribeNewsletter(ctx, req.Email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no active subscription for %s", ErrNotFound, req.Email)
		}
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

func (s *NewsletterService) List(ctx context.Context, page, size int) (int64, []models.NewsletterSubscription, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListNewsletterSubscriptions(ctx, true, offset, limit)
}
