package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type fakeBackend struct {
	tokens   []string
	approved []string
}

func (f *fakeBackend) PendingUsers(ctx context.Context, token string) ([]map[string]any, error) {
	f.tokens = append(f.tokens, token)
	return []map[string]any{{"id": "1", "username": "new-user"}}, nil
}

func (f *fakeBackend) Employees(ctx context.Context, token string) ([]map[string]any, error) {
	f.tokens = append(f.tokens, token)
	return nil, nil
}

func (f *fakeBackend) ApproveUser(ctx context.Context, token, userID string) error {
	f.tokens = append(f.tokens, token)
	f.approved = append(f.approved, userID)
	return nil
}

func newRouter(backend Backend) chi.Router {
	router := chi.NewRouter()
	NewHandler(nil, backend).MountRoutes(router)
	return router
}

func TestPendingUsersForwardsCallerToken(t *testing.T) {
	backend := &fakeBackend{}
	req := httptest.NewRequest(http.MethodGet, "/admin/pending-users", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	newRouter(backend).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(backend.tokens) != 1 || backend.tokens[0] != "admin-token" {
		t.Fatalf("caller token not forwarded: %v", backend.tokens)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	backend := &fakeBackend{}
	rec := httptest.NewRecorder()
	newRouter(backend).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/employees", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(backend.tokens) != 0 {
		t.Fatalf("upstream must not be called without a token")
	}
}

func TestEmployeesEmptyListRendersArray(t *testing.T) {
	backend := &fakeBackend{}
	req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	newRouter(backend).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestApproveUser(t *testing.T) {
	backend := &fakeBackend{}
	req := httptest.NewRequest(http.MethodPost, "/admin/users/7/approve", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	newRouter(backend).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(backend.approved) != 1 || backend.approved[0] != "7" {
		t.Fatalf("approval not forwarded: %v", backend.approved)
	}
}
