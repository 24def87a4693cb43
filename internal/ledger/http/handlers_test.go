package ledgerhttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/ledger"
)

type stubRepo struct {
	entries []ledger.Entry
}

func (s *stubRepo) Insert(context.Context, ledger.Entry) error { return nil }

func (s *stubRepo) TailHash(context.Context) (*string, error) { return nil, nil }

func (s *stubRepo) ScanForward(_ context.Context, afterID int64, limit int32) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range s.entries {
		if e.ID > afterID {
			out = append(out, e)
			if int32(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *stubRepo) Window(_ context.Context, offset, limit int32) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for i := len(s.entries) - 1 - int(offset); i >= 0; i-- {
		out = append(out, s.entries[i])
		if int32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) Counts(context.Context) (ledger.Counts, error) { return ledger.Counts{}, nil }

func testRouter(repo ledger.Repository) chi.Router {
	signer := ledger.NewSigner("test-key")
	service := ledger.NewService(repo, signer)
	guard := authz.Middleware{Resolver: authz.NewResolver(authz.DefaultBindings(), authz.DefaultRegistry())}
	handler := NewHandler(slog.Default(), service, guard)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func asRole(req *http.Request, role string) *http.Request {
	p := &authz.Principal{ID: 1, TenantID: 1, Roles: []string{role}}
	ctx := authz.ContextWithPrincipal(req.Context(), p)
	ctx = authz.ContextWithTenant(ctx, &authz.Tenant{ID: 1})
	return req.WithContext(ctx)
}

func TestLedgerRoutesRequireAdmin(t *testing.T) {
	router := testRouter(&stubRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/ledger", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/audit/ledger", nil), "user"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLedgerWindow(t *testing.T) {
	uid := int64(9)
	repo := &stubRepo{entries: []ledger.Entry{
		{ID: 1, UserID: &uid, Permission: "users:read", Allowed: true, Reason: "permission_granted", Signature: "sig1", EntryHash: "hash1", IntegrityOK: true},
		{ID: 2, UserID: &uid, Permission: "users:write", Allowed: false, Reason: "policy_denied", Signature: "sig2", EntryHash: "hash2", IntegrityOK: true},
	}}
	router := testRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/audit/ledger?page=1&page_size=10", nil), "admin"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Entries []entryResponse `json:"entries"`
		Paging  struct {
			Page    int  `json:"page"`
			HasNext bool `json:"has_next"`
		} `json:"paging"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	require.Equal(t, int64(2), body.Entries[0].ID)
	require.Equal(t, "users:write", body.Entries[0].Permission)
	require.False(t, body.Paging.HasNext)
}

func TestLedgerVerifyEndpoint(t *testing.T) {
	router := testRouter(&stubRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/audit/ledger/verify", nil), "admin"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.OK)
}
