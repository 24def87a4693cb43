package ledgerhttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/ledger"
	"github.com/warden-authz/warden/internal/platform/httpx"
)

// Handler exposes the compliance read surface of the audit ledger. There is
// no write surface: the only writer is the in-process recorder.
type Handler struct {
	logger  *slog.Logger
	service *ledger.Service
	guard   authz.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *ledger.Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/audit/ledger", func(r chi.Router) {
		r.Use(h.guard.Require(authz.PermAdminDashboard))
		r.Get("/", h.handleWindow)
		r.Get("/verify", h.handleVerify)
	})
}

type entryResponse struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id"`
	TenantID    *int64    `json:"tenant_id"`
	Permission  string    `json:"permission"`
	Allowed     bool      `json:"allowed"`
	Reason      string    `json:"reason,omitempty"`
	Endpoint    string    `json:"endpoint,omitempty"`
	Method      string    `json:"method,omitempty"`
	Context     string    `json:"context,omitempty"`
	Signature   string    `json:"signature"`
	PrevHash    *string   `json:"prev_hash"`
	EntryHash   string    `json:"entry_hash"`
	IntegrityOK bool      `json:"integrity_ok"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) handleWindow(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.service.Window(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("ledger window", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	entries := make([]entryResponse, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, entryResponse{
			ID:          e.ID,
			UserID:      e.UserID,
			TenantID:    e.TenantID,
			Permission:  e.Permission,
			Allowed:     e.Allowed,
			Reason:      e.Reason,
			Endpoint:    e.Endpoint,
			Method:      e.Method,
			Context:     e.Context,
			Signature:   e.Signature,
			PrevHash:    e.PrevHash,
			EntryHash:   e.EntryHash,
			IntegrityOK: e.IntegrityOK,
			CreatedAt:   e.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"paging":  result.Paging,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Verify(r.Context())
	if err != nil {
		h.logger.Error("ledger verify", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"ok":     report.OK(),
		"report": report,
	})
}
