package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warden-authz/warden/internal/platform/db"
	"github.com/warden-authz/warden/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// CreateUserWithRole inserts a new user and assigns the named role in one
	// transaction. A role missing from the tenant is tolerated: the user is
	// still created, just without an assignment.
	CreateUserWithRole(ctx context.Context, tenantID int64, email, passwordHash, roleName string) (*User, error)
	RoleNames(ctx context.Context, userID int64) ([]string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, tenant_id, email, password_hash, is_active, created_at, updated_at`

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUserWithRole inserts a new active user and its role link atomically.
func (r *PGRepository) CreateUserWithRole(ctx context.Context, tenantID int64, email, passwordHash, roleName string) (*User, error) {
	var user *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (tenant_id, email, password_hash, is_active)
			VALUES ($1, $2, $3, TRUE)
			RETURNING `+userColumns, tenantID, email, passwordHash)
		created, err := scanUser(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return shared.ErrDuplicate
			}
			return err
		}
		// Zero rows means the role is not seeded in this tenant; the account
		// is still usable, it just resolves to no permissions.
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT u.id, ro.id
			FROM users u
			JOIN roles ro ON ro.tenant_id = u.tenant_id AND ro.name = $2
			WHERE u.id = $1
			ON CONFLICT DO NOTHING`, created.ID, roleName); err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RoleNames returns the names of every role assigned to the user.
func (r *PGRepository) RoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ro.name
		FROM roles ro
		JOIN user_roles ur ON ur.role_id = ro.id
		WHERE ur.user_id = $1
		ORDER BY ro.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user    User
		created pgtype.Timestamptz
		updated pgtype.Timestamptz
	)
	err := row.Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.IsActive, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = created.Time
	user.UpdatedAt = updated.Time
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
