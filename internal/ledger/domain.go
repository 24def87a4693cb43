package ledger

import "time"

// Decision is the authorization outcome handed to the ledger. It is created
// once per authorization attempt, immutable, and consumed only here.
type Decision struct {
	UserID   *int64
	TenantID *int64

	Permission string
	Allowed    bool
	Reason     string

	Endpoint string
	Method   string

	// Context carries arbitrary structured metadata, e.g. the denying policy.
	Context map[string]string
}

// Entry is a persisted ledger row. Rows are written exactly once, in decision
// order, and never updated or deleted.
type Entry struct {
	ID int64

	UserID   *int64
	TenantID *int64

	Permission string
	Allowed    bool
	Reason     string
	Endpoint   string
	Method     string

	// Context is the canonical serialization of Decision.Context.
	Context string

	Signature   string
	PrevHash    *string
	EntryHash   string
	IntegrityOK bool

	CreatedAt time.Time
}

// Payload assembles the canonicalization input for signing and verification.
// CreatedAt, the sequence id and the hashes themselves stay outside the
// signed payload.
func (e Entry) Payload() map[string]any {
	return map[string]any{
		"user_id":    e.UserID,
		"tenant_id":  e.TenantID,
		"permission": e.Permission,
		"allowed":    e.Allowed,
		"reason":     e.Reason,
		"endpoint":   e.Endpoint,
		"method":     e.Method,
		"context":    e.Context,
	}
}
