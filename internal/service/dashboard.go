package service

import (
	"context"

	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
)

type DashboardService struct {
	Repo *repo.GormRepo
}

func NewDashboardService(r *repo.GormRepo) *DashboardService {
	return &DashboardService{Repo: r}
}

// Stats returns panel figures scoped to the actor: vendors get their own
// numbers, admins the whole platform.
func (s *DashboardService) Stats(ctx context.Context, actor *models.User) (*repo.DashboardStats, error) {
	var vendorID *uint
	if actor.Role == models.RoleVendor {
		vendorID = &actor.ID
	}
	return s.Repo.GetDashboardStats(ctx, vendorID)
}
