package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Counts summarises the ledger for compliance reporting.
type Counts struct {
	Total    int64
	Allowed  int64
	Denied   int64
	Degraded int64
}

// Repository defines persistence for ledger entries. The storage layer only
// ever inserts and reads; the table itself rejects UPDATE and DELETE.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	// TailHash returns the entry hash of the most recent healthy entry, or
	// nil when the ledger is empty.
	TailHash(ctx context.Context) (*string, error)
	// ScanForward reads entries in sequence order, starting after the given
	// id. It is the ordered scan used by chain verification.
	ScanForward(ctx context.Context, afterID int64, limit int32) ([]Entry, error)
	// Window reads a page of entries in reverse sequence order for the
	// compliance read surface.
	Window(ctx context.Context, offset, limit int32) ([]Entry, error)
	Counts(ctx context.Context) (Counts, error)
}

// PGRepository implements Repository against PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const entryColumns = `id, user_id, tenant_id, permission, allowed, reason, endpoint, method, context, signature, prev_hash, entry_hash, integrity_ok, created_at`

// Insert appends one entry. There is deliberately no update or delete
// counterpart anywhere in this package.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO authorization_audit_entries
			(user_id, tenant_id, permission, allowed, reason, endpoint, method, context, signature, prev_hash, entry_hash, integrity_ok)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		optionalInt8(entry.UserID),
		optionalInt8(entry.TenantID),
		entry.Permission,
		entry.Allowed,
		optionalText(entry.Reason),
		optionalText(entry.Endpoint),
		optionalText(entry.Method),
		entry.Context,
		entry.Signature,
		optionalTextPtr(entry.PrevHash),
		entry.EntryHash,
		entry.IntegrityOK,
	)
	return err
}

// TailHash fetches the chain tail. Degraded rows never advance the tail, so
// they are excluded here as well.
func (r *PGRepository) TailHash(ctx context.Context) (*string, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `
		SELECT entry_hash FROM authorization_audit_entries
		WHERE integrity_ok ORDER BY id DESC LIMIT 1`).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &hash, nil
}

// ScanForward reads entries ordered by sequence id.
func (r *PGRepository) ScanForward(ctx context.Context, afterID int64, limit int32) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM authorization_audit_entries
		WHERE id > $1 ORDER BY id ASC LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Window reads the newest entries first for the HTTP read surface.
func (r *PGRepository) Window(ctx context.Context, offset, limit int32) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM authorization_audit_entries
		ORDER BY id DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Counts aggregates entry totals.
func (r *PGRepository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE allowed),
		       COUNT(*) FILTER (WHERE NOT allowed),
		       COUNT(*) FILTER (WHERE NOT integrity_ok)
		FROM authorization_audit_entries`).Scan(&c.Total, &c.Allowed, &c.Denied, &c.Degraded)
	return c, err
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			userID   pgtype.Int8
			tenantID pgtype.Int8
			reason   pgtype.Text
			endpoint pgtype.Text
			method   pgtype.Text
			prevHash pgtype.Text
			created  pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &userID, &tenantID, &e.Permission, &e.Allowed, &reason, &endpoint, &method, &e.Context, &e.Signature, &prevHash, &e.EntryHash, &e.IntegrityOK, &created); err != nil {
			return nil, err
		}
		if userID.Valid {
			e.UserID = &userID.Int64
		}
		if tenantID.Valid {
			e.TenantID = &tenantID.Int64
		}
		e.Reason = reason.String
		e.Endpoint = endpoint.String
		e.Method = method.String
		if prevHash.Valid {
			hash := prevHash.String
			e.PrevHash = &hash
		}
		if created.Valid {
			e.CreatedAt = created.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func optionalInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func optionalText(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}

func optionalTextPtr(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *v, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
