package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridian-travel/backoffice/internal/reconcile"
	"github.com/meridian-travel/backoffice/internal/shared"
)

// Handler exposes the reconciler over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *reconcile.Service
	journal *reconcile.Repository
}

// NewHandler wires the reconciliation endpoints.
func NewHandler(logger *slog.Logger, service *reconcile.Service, journal *reconcile.Repository) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, journal: journal}
}

// MountRoutes registers the payment and saga routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/bookings/{kind}/{id}/payments", h.AddPayment)
	r.Delete("/bookings/{kind}/{id}/payments/{paymentID}", h.DeletePayment)
	r.Get("/sagas/{sagaID}", h.GetSaga)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req reconcile.AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	req.BookingKind = chi.URLParam(r, "kind")
	req.BookingID = chi.URLParam(r, "id")
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	if req.RecordedBy == "" {
		req.RecordedBy = shared.ActorFromContext(r.Context())
	}

	saga, err := h.service.AddPayment(r.Context(), req)
	if err != nil {
		h.logger.Error("add payment", slog.String("booking", req.BookingKind+"/"+req.BookingID), slog.Any("error", err))
		payload := map[string]any{"error": err.Error()}
		if saga != nil {
			payload["saga"] = saga
		}
		if reconcile.ErrIsRetryable(err) {
			payload["retryable"] = true
			w.Header().Set("Retry-After", "5")
		}
		writeJSON(w, statusForError(err), payload)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"saga": saga})
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	req := reconcile.DeletePaymentRequest{
		BookingKind: chi.URLParam(r, "kind"),
		BookingID:   chi.URLParam(r, "id"),
		PaymentID:   chi.URLParam(r, "paymentID"),
		Force:       r.URL.Query().Get("force") == "true",
	}

	saga, report, err := h.service.DeletePayment(r.Context(), req)
	if err != nil {
		if errors.Is(err, shared.ErrMatchNotFound) {
			// The caller must confirm before anything is removed.
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "derived ledger entry could not be matched; repeat with force=true to continue",
				"report": report,
				"saga":   saga,
			})
			return
		}
		h.logger.Error("delete payment", slog.String("payment", req.PaymentID), slog.Any("error", err))
		payload := map[string]any{"error": err.Error()}
		if saga != nil {
			payload["saga"] = saga
		}
		if report != nil {
			payload["report"] = report
		}
		if reconcile.ErrIsRetryable(err) {
			payload["retryable"] = true
			w.Header().Set("Retry-After", "5")
		}
		writeJSON(w, statusForError(err), payload)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saga": saga, "report": report})
}

func (h *Handler) GetSaga(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sagaID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid saga id"})
		return
	}
	if h.journal == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "saga journal not configured"})
		return
	}
	saga, err := h.journal.GetSaga(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "saga not found"})
			return
		}
		h.logger.Error("get saga", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load saga"})
		return
	}
	writeJSON(w, http.StatusOK, saga)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
