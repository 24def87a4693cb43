package users

import (
	"context"
	"strings"

	"github.com/warden-authz/warden/internal/shared"
)

// Service wraps tenant-scoped user operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the tenant's users.
func (s *Service) List(ctx context.Context, tenantID int64) ([]User, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// Get fetches one user within the tenant.
func (s *Service) Get(ctx context.Context, id, tenantID int64) (*User, error) {
	return s.repo.FindInTenant(ctx, id, tenantID)
}

// UpdateEmail changes a user's email within the tenant.
func (s *Service) UpdateEmail(ctx context.Context, id, tenantID int64, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.ErrValidation
	}
	return s.repo.UpdateEmail(ctx, id, tenantID, email)
}

// Delete removes a user within the tenant.
func (s *Service) Delete(ctx context.Context, id, tenantID int64) error {
	return s.repo.Delete(ctx, id, tenantID)
}
