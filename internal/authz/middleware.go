package authz

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warden-authz/warden/internal/ledger"
	"github.com/warden-authz/warden/internal/platform/httpx"
)

// DecisionRecorder receives every authorization decision. The ledger's
// Recorder satisfies it; the call is fire-and-forget and its outcome never
// feeds back into the response.
type DecisionRecorder interface {
	Record(ledger.Decision)
}

// Middleware wires the resolver and the ledger into HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Recorder DecisionRecorder
	Logger   *slog.Logger
}

// Require guards a route with the given permission.
func (m Middleware) Require(perm Permission) func(http.Handler) http.Handler {
	return m.guard(perm, "")
}

// RequireOwner guards a route with the given permission, binding the named
// URL parameter as the resource owner id for self-access policies.
func (m Middleware) RequireOwner(perm Permission, param string) func(http.Handler) http.Handler {
	return m.guard(perm, param)
}

func (m Middleware) guard(perm Permission, ownerParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			tenant := TenantFromContext(r.Context())

			var owner *int64
			if ownerParam != "" {
				raw := chi.URLParam(r, ownerParam)
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid resource id")
					return
				}
				owner = &id
			}

			decision := m.Resolver.Resolve(*principal, perm, tenant, owner)
			m.record(r, principal, tenant, perm, decision)

			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.Int64("user_id", principal.ID),
						slog.String("permission", string(perm)),
						slog.String("reason", string(decision.Reason)))
				}
				httpx.Forbidden(w, string(decision.Reason))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) record(r *http.Request, principal *Principal, tenant *Tenant, perm Permission, decision Decision) {
	if m.Recorder == nil {
		return
	}
	userID := principal.ID
	entry := ledger.Decision{
		UserID:     &userID,
		Permission: string(perm),
		Allowed:    decision.Allowed,
		Reason:     string(decision.Reason),
		Endpoint:   r.URL.Path,
		Method:     r.Method,
	}
	if tenant != nil {
		tenantID := tenant.ID
		entry.TenantID = &tenantID
	}
	if decision.Policy != "" {
		entry.Context = map[string]string{"policy": decision.Policy}
	}
	m.Recorder.Record(entry)
}
