// Package archive exposes the soft-deleted booking store: listing archived
// records, moving a live booking into the archive and purging entries for
// good. All state lives upstream; this layer only forwards and normalises
// errors.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-travel/backoffice/internal/shared"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

// Backend is the slice of the upstream client the archive needs.
type Backend interface {
	ArchiveAll(ctx context.Context) ([]map[string]any, error)
	PurgeArchived(ctx context.Context, id string) error
	ArchiveBooking(ctx context.Context, kind, id string) error
}

// Handler serves the archive endpoints.
type Handler struct {
	logger  *slog.Logger
	backend Backend
}

// NewHandler wires the archive surface.
func NewHandler(logger *slog.Logger, backend Backend) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, backend: backend}
}

// MountRoutes registers the archive routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/archive", h.List)
	r.Delete("/archive/{id}", h.Purge)
	r.Post("/bookings/{kind}/{id}/archive", h.ArchiveBooking)
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

// List returns every archived record across all booking modules.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.backend.ArchiveAll(r.Context())
	if err != nil {
		h.logger.Error("list archive", slog.Any("error", err))
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Purge permanently removes one archived record.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.PurgeArchived(r.Context(), id); err != nil {
		h.logger.Error("purge archived record", slog.String("id", id), slog.Any("error", err))
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged", "id": id})
}

// ArchiveBooking soft-deletes a live booking into the archive.
func (h *Handler) ArchiveBooking(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")
	if _, ok := upstream.AdapterFor(kind); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown booking module " + kind})
		return
	}
	if err := h.backend.ArchiveBooking(r.Context(), kind, id); err != nil {
		h.logger.Error("archive booking", slog.String("booking", kind+"/"+id), slog.Any("error", err))
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived", "kind": kind, "id": id})
}
