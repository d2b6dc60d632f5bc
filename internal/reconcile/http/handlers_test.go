package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-travel/backoffice/internal/reconcile"
	"github.com/meridian-travel/backoffice/internal/shared"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

// downBackend mimics the upstream service being unreachable.
type downBackend struct{}

func (downBackend) FetchBooking(ctx context.Context, kind, id string) (map[string]any, error) {
	return nil, shared.ErrUpstreamUnavailable
}

func (downBackend) CreatePayment(ctx context.Context, kind string, input upstream.PaymentInput) (map[string]any, error) {
	return nil, shared.ErrUpstreamUnavailable
}

func (downBackend) ListPayments(ctx context.Context, kind, bookingID string) ([]map[string]any, error) {
	return nil, shared.ErrUpstreamUnavailable
}

func (downBackend) DeletePayment(ctx context.Context, kind, bookingID, paymentID string) error {
	return shared.ErrUpstreamUnavailable
}

func (downBackend) CreateBankEntry(ctx context.Context, input upstream.BankEntryInput) error {
	return shared.ErrUpstreamUnavailable
}

func (downBackend) CreateAgentEntry(ctx context.Context, input upstream.AgentEntryInput) error {
	return shared.ErrUpstreamUnavailable
}

func (downBackend) DeleteBankEntry(ctx context.Context, bank, id string) error {
	return shared.ErrUpstreamUnavailable
}

func (downBackend) DeleteAgentEntry(ctx context.Context, id string) error {
	return shared.ErrUpstreamUnavailable
}

func (downBackend) AgentEntries(ctx context.Context, agentName string) ([]upstream.LedgerRow, error) {
	return nil, shared.ErrUpstreamUnavailable
}

func (downBackend) BankLedger(ctx context.Context, bank string) ([]upstream.LedgerRow, error) {
	return nil, shared.ErrUpstreamUnavailable
}

func newTestRouter(t *testing.T, backend reconcile.Backend) *chi.Mux {
	t.Helper()
	service := reconcile.NewService(backend, nil, reconcile.ServiceParams{})
	handler := NewHandler(nil, service, nil)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func TestAddPaymentUpstreamDownIsRetryable(t *testing.T) {
	r := newTestRouter(t, downBackend{})

	body := `{"payment_date":"2025-07-01","payed_cash":50,"recorded_by":"ops"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/ticket/77/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"retryable":true`)
}

func TestAddPaymentValidationErrorIsNotRetryable(t *testing.T) {
	r := newTestRouter(t, downBackend{})

	// No amounts at all fails validation before the upstream is touched.
	body := `{"payment_date":"2025-07-01","recorded_by":"ops"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/ticket/77/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Retry-After"))
	assert.NotContains(t, rec.Body.String(), "retryable")
}

func TestDeletePaymentUpstreamDownIsRetryable(t *testing.T) {
	r := newTestRouter(t, downBackend{})

	req := httptest.NewRequest(http.MethodDelete, "/bookings/ticket/77/payments/pay-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"retryable":true`)
}
