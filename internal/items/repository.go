package items

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for items.
type Repository interface {
	ListByTenant(ctx context.Context, tenantID int64) ([]Item, error)
	Create(ctx context.Context, tenantID, ownerID int64, name string) (*Item, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListByTenant returns the tenant's items, newest first.
func (r *PGRepository) ListByTenant(ctx context.Context, tenantID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, owner_id, name, created_at
		FROM items WHERE tenant_id = $1 ORDER BY id DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		var (
			item    Item
			created pgtype.Timestamptz
		)
		if err := rows.Scan(&item.ID, &item.TenantID, &item.OwnerID, &item.Name, &created); err != nil {
			return nil, err
		}
		item.CreatedAt = created.Time
		result = append(result, item)
	}
	return result, rows.Err()
}

// Create inserts a new item owned by the given user.
func (r *PGRepository) Create(ctx context.Context, tenantID, ownerID int64, name string) (*Item, error) {
	var (
		item    Item
		created pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO items (tenant_id, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, tenant_id, owner_id, name, created_at`, tenantID, ownerID, name).
		Scan(&item.ID, &item.TenantID, &item.OwnerID, &item.Name, &created)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = created.Time
	return &item, nil
}

var _ Repository = (*PGRepository)(nil)
