package tenants

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/platform/httpx"
)

// Handler exposes the tenant and admin dashboards.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   authz.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers dashboard routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(authz.PermTenantRead)).Get("/tenant/dashboard", h.handleTenantDashboard)
	r.With(h.guard.Require(authz.PermAdminDashboard)).Get("/admin/dashboard", h.handleAdminDashboard)
}

func (h *Handler) handleTenantDashboard(w http.ResponseWriter, r *http.Request) {
	tenant := authz.TenantFromContext(r.Context())
	stats, err := h.service.Dashboard(r.Context(), tenant.ID)
	if err != nil {
		h.logger.Error("tenant dashboard", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tenant": map[string]any{"id": tenant.ID, "name": tenant.Name},
		"stats":  stats,
	})
}

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AdminDashboard(r.Context())
	if err != nil {
		h.logger.Error("admin dashboard", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stats": stats})
}
