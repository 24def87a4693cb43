package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/platform/httpx"
)

// Handler exposes tenant-scoped user endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers user routes. Listing is a tenant-administration
// surface; the {id} routes bind the path id as the resource owner so
// self-access applies.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(authz.PermTenantAdmin)).Get("/", h.handleList)
	r.With(h.guard.RequireOwner(authz.PermUsersRead, "id")).Get("/{id}", h.handleGet)
	r.With(h.guard.RequireOwner(authz.PermUsersWrite, "id")).Put("/{id}", h.handleUpdate)
	r.With(h.guard.Require(authz.PermUsersDelete)).Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tenant := authz.TenantFromContext(r.Context())
	list, err := h.service.List(r.Context(), tenant.ID)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tenant := authz.TenantFromContext(r.Context())
	user, err := h.service.Get(r.Context(), id, tenant.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type updateUserPayload struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload updateUserPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}

	tenant := authz.TenantFromContext(r.Context())
	user, err := h.service.UpdateEmail(r.Context(), id, tenant.ID, payload.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tenant := authz.TenantFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, tenant.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid resource id")
		return 0, false
	}
	return id, true
}
