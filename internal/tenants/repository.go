package tenants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warden-authz/warden/internal/shared"
)

// Repository defines persistence operations for tenants.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Tenant, error)
	DashboardStats(ctx context.Context, tenantID int64) (DashboardStats, error)
	AdminStats(ctx context.Context) (AdminStats, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByID fetches a tenant by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Tenant, error) {
	var (
		tenant  Tenant
		created pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM tenants WHERE id = $1`, id).
		Scan(&tenant.ID, &tenant.Name, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	tenant.CreatedAt = created.Time
	return &tenant, nil
}

// DashboardStats counts the tenant's users and items.
func (r *PGRepository) DashboardStats(ctx context.Context, tenantID int64) (DashboardStats, error) {
	var stats DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM items WHERE tenant_id = $1)`, tenantID).
		Scan(&stats.Users, &stats.Items)
	return stats, err
}

// AdminStats counts tenants and users across the deployment.
func (r *PGRepository) AdminStats(ctx context.Context) (AdminStats, error) {
	var stats AdminStats
	err := r.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM tenants), (SELECT COUNT(*) FROM users)`).
		Scan(&stats.Tenants, &stats.Users)
	return stats, err
}

var _ Repository = (*PGRepository)(nil)
