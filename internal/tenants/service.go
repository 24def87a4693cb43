package tenants

import (
	"context"

	"github.com/warden-authz/warden/internal/authz"
)

// Service orchestrates tenant resolution and dashboard reads.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve maps a tenant id to the tenant context consumed by the resolver.
// It satisfies auth.TenantResolver.
func (s *Service) Resolve(ctx context.Context, id int64) (*authz.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &authz.Tenant{ID: tenant.ID, Name: tenant.Name}, nil
}

// Dashboard returns the tenant-scoped dashboard stats.
func (s *Service) Dashboard(ctx context.Context, tenantID int64) (DashboardStats, error) {
	return s.repo.DashboardStats(ctx, tenantID)
}

// AdminDashboard returns deployment-wide stats.
func (s *Service) AdminDashboard(ctx context.Context) (AdminStats, error) {
	return s.repo.AdminStats(ctx)
}
