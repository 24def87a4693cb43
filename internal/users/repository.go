package users

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warden-authz/warden/internal/shared"
)

// Repository defines persistence operations for tenant-scoped users.
type Repository interface {
	ListByTenant(ctx context.Context, tenantID int64) ([]User, error)
	FindInTenant(ctx context.Context, id, tenantID int64) (*User, error)
	UpdateEmail(ctx context.Context, id, tenantID int64, email string) (*User, error)
	Delete(ctx context.Context, id, tenantID int64) error
}

// PGRepository implements Repository using PostgreSQL. Every statement is
// tenant-filtered; rows outside the tenant are indistinguishable from absent.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, tenant_id, email, is_active, created_at, updated_at`

// ListByTenant returns all users in the tenant ordered by email.
func (r *PGRepository) ListByTenant(ctx context.Context, tenantID int64) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE tenant_id = $1 ORDER BY email`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

// FindInTenant fetches one user within the tenant.
func (r *PGRepository) FindInTenant(ctx context.Context, id, tenantID int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateEmail changes a user's email within the tenant.
func (r *PGRepository) UpdateEmail(ctx context.Context, id, tenantID int64, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET email = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+userColumns, id, tenantID, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}

// Delete removes a user within the tenant.
func (r *PGRepository) Delete(ctx context.Context, id, tenantID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user    User
		created pgtype.Timestamptz
		updated pgtype.Timestamptz
	)
	if err := row.Scan(&user.ID, &user.TenantID, &user.Email, &user.IsActive, &created, &updated); err != nil {
		return User{}, err
	}
	user.CreatedAt = created.Time
	user.UpdatedAt = updated.Time
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
