package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/platform/httpx"
	"github.com/warden-authz/warden/internal/shared"
)

// TenantResolver supplies the tenant context for an authenticated user. The
// tenant layer implements it; auth only needs the contract surface.
type TenantResolver interface {
	Resolve(ctx context.Context, id int64) (*authz.Tenant, error)
}

// Authenticator resolves bearer tokens into a principal and tenant placed on
// the request context. Requests without a token pass through anonymously;
// permission middleware turns those into 401s on guarded routes.
func Authenticator(service *Service, tenants TenantResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := service.ResolveToken(r.Context(), token)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) && logger != nil {
					logger.Error("resolve token", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid authentication token")
				return
			}

			principal, err := service.Principal(r.Context(), user)
			if err != nil {
				if logger != nil {
					logger.Error("load principal", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}

			ctx := authz.ContextWithPrincipal(r.Context(), &principal)

			tenant, err := tenants.Resolve(ctx, user.TenantID)
			if err != nil {
				if logger != nil {
					logger.Error("resolve tenant", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "tenant context invalid")
				return
			}
			ctx = authz.ContextWithTenant(ctx, tenant)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
