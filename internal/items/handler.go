package items

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/platform/httpx"
)

// Handler exposes tenant-scoped item endpoints.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo Repository, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, guard: guard, validator: validator.New()}
}

// MountRoutes registers item routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(authz.PermItemsRead)).Get("/", h.handleList)
	r.With(h.guard.Require(authz.PermItemsWrite)).Post("/", h.handleCreate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tenant := authz.TenantFromContext(r.Context())
	list, err := h.repo.ListByTenant(r.Context(), tenant.ID)
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type createItemPayload struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createItemPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}

	principal := authz.PrincipalFromContext(r.Context())
	tenant := authz.TenantFromContext(r.Context())
	item, err := h.repo.Create(r.Context(), tenant.ID, principal.ID, payload.Name)
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}
