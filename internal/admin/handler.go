// Package admin forwards the user-administration calls the back office
// proxies for the upstream API: pending signups, the employee roster and
// account approval. The caller's bearer token is passed through unchanged;
// the upstream enforces who may administer accounts.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-travel/backoffice/internal/shared"
)

// Backend is the slice of the upstream client the admin surface needs.
type Backend interface {
	PendingUsers(ctx context.Context, token string) ([]map[string]any, error)
	Employees(ctx context.Context, token string) ([]map[string]any, error)
	ApproveUser(ctx context.Context, token, userID string) error
}

// Handler serves the admin endpoints.
type Handler struct {
	logger  *slog.Logger
	backend Backend
}

// NewHandler wires the admin surface.
func NewHandler(logger *slog.Logger, backend Backend) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, backend: backend}
}

// MountRoutes registers the admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/admin/pending-users", h.PendingUsers)
	r.Get("/admin/employees", h.Employees)
	r.Post("/admin/users/{id}/approve", h.ApproveUser)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bearer token required"})
		return
	}
	users, err := h.backend.PendingUsers(r.Context(), token)
	if err != nil {
		h.logger.Error("list pending users", slog.Any("error", err))
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	if users == nil {
		users = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) Employees(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bearer token required"})
		return
	}
	employees, err := h.backend.Employees(r.Context(), token)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	if employees == nil {
		employees = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bearer token required"})
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.backend.ApproveUser(r.Context(), token, id); err != nil {
		h.logger.Error("approve user", slog.String("user", id), slog.Any("error", err))
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved", "id": id})
}
