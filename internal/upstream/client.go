package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/meridian-travel/backoffice/internal/shared"
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap maps status classes onto the shared sentinels so callers can use
// errors.Is without inspecting codes.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	return shared.ErrUpstreamUnavailable
}

// Client wraps interactions with the agency booking backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a new client. token is the service credential attached
// as a bearer token to every call; admin calls may override it with the
// caller's own token.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrUpstreamUnavailable, method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("upstream: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, dest)
}

// BookingTypeCount is one slice of the backend dashboard breakdown.
type BookingTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// DashboardStats mirrors the backend /dashboard payload.
type DashboardStats struct {
	TotalBookings  int                `json:"totalBookings"`
	BookingsByType []BookingTypeCount `json:"bookingsByType"`
	TotalRevenue   float64            `json:"totalRevenue"`
}

// Dashboard fetches the backend's own headline counters.
func (c *Client) Dashboard(ctx context.Context) (DashboardStats, error) {
	var payload struct {
		Data DashboardStats `json:"data"`
	}
	if err := c.get(ctx, "/dashboard", &payload); err != nil {
		return DashboardStats{}, err
	}
	return payload.Data, nil
}

// FetchModule retrieves one booking collection and unwraps its array key.
// Records stay loosely typed; normalization happens in the booking package.
func (c *Client) FetchModule(ctx context.Context, adapter ModuleAdapter) ([]map[string]any, error) {
	var envelope map[string]json.RawMessage
	if err := c.get(ctx, adapter.Path, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[adapter.ArrayKey]
	if !ok {
		return nil, fmt.Errorf("upstream: %s response missing %q key", adapter.Path, adapter.ArrayKey)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("upstream: decode %s records: %w", adapter.Kind, err)
	}
	return records, nil
}

// FetchBooking retrieves a single booking record by module kind and id.
func (c *Client) FetchBooking(ctx context.Context, kind, id string) (map[string]any, error) {
	adapter, ok := AdapterFor(kind)
	if !ok {
		return nil, fmt.Errorf("upstream: unknown module %q", kind)
	}
	var record map[string]any
	if err := c.get(ctx, adapter.Path+"/"+url.PathEscape(id), &record); err != nil {
		return nil, err
	}
	return record, nil
}

// LedgerRow is a generic bank or agent ledger row. Derived rows written by
// the reconciler are not foreign-keyed to their payment; the entry label,
// date and amounts are the only linkage.
type LedgerRow struct {
	ID        string  `json:"id"`
	Entry     string  `json:"entry"`
	Date      string  `json:"date"`
	Credit    float64 `json:"credit"`
	Debit     float64 `json:"debit"`
	Detail    string  `json:"detail"`
	Balance   float64 `json:"balance"`
	AgentName string  `json:"agent_name,omitempty"`
	BankTitle string  `json:"bank_title,omitempty"`
}

// BankLedger fetches the ledger rows for one bank account. The last row's
// balance is the account's current snapshot.
func (c *Client) BankLedger(ctx context.Context, bank string) ([]LedgerRow, error) {
	var rows []LedgerRow
	if err := c.get(ctx, "/accounts/"+url.PathEscape(bank), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// paymentsBase resolves the payment sub-resource root for a booking kind.
func paymentsBase(kind, bookingID string) (string, error) {
	switch kind {
	case "ticket":
		return "/ticket_payments", nil
	case "umrah":
		return "/umrah_payments", nil
	case "services":
		return "/services/" + url.PathEscape(bookingID) + "/payments", nil
	default:
		return "", fmt.Errorf("upstream: module %q has no payment sub-resource", kind)
	}
}

// PaymentInput is the payload for creating a remaining payment row.
type PaymentInput struct {
	BookingID   string  `json:"booking_id"`
	PaymentDate string  `json:"payment_date"`
	PayedCash   float64 `json:"payed_cash"`
	PaidBank    float64 `json:"paid_bank"`
	BankTitle   *string `json:"bank_title"`
	RecordedBy  string  `json:"recorded_by"`
}

// CreatePayment posts a payment row and returns the backend's record.
func (c *Client) CreatePayment(ctx context.Context, kind string, input PaymentInput) (map[string]any, error) {
	base, err := paymentsBase(kind, input.BookingID)
	if err != nil {
		return nil, err
	}
	var created map[string]any
	if err := c.do(ctx, http.MethodPost, base, "", input, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// ListPayments returns the loosely typed payment rows for one booking.
func (c *Client) ListPayments(ctx context.Context, kind, bookingID string) ([]map[string]any, error) {
	base, err := paymentsBase(kind, bookingID)
	if err != nil {
		return nil, err
	}
	path := base
	if kind != "services" {
		path = base + "/" + url.PathEscape(bookingID)
	}
	var rows []map[string]any
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeletePayment removes a payment row.
func (c *Client) DeletePayment(ctx context.Context, kind, bookingID, paymentID string) error {
	base, err := paymentsBase(kind, bookingID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, base+"/"+url.PathEscape(paymentID), "", nil, nil)
}

// BankEntryInput creates one bank-account ledger row.
type BankEntryInput struct {
	BankTitle string  `json:"bank_title"`
	Entry     string  `json:"entry"`
	Date      string  `json:"date"`
	Credit    float64 `json:"credit"`
	Debit     float64 `json:"debit"`
	Detail    string  `json:"detail"`
}

// CreateBankEntry posts a bank ledger row.
func (c *Client) CreateBankEntry(ctx context.Context, input BankEntryInput) error {
	return c.do(ctx, http.MethodPost, "/accounts", "", input, nil)
}

// DeleteBankEntry removes one bank ledger row.
func (c *Client) DeleteBankEntry(ctx context.Context, bank, id string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(bank)+"/"+url.PathEscape(id), "", nil, nil)
}

// AgentEntryInput creates one agent ledger row.
type AgentEntryInput struct {
	AgentName string  `json:"agent_name"`
	Entry     string  `json:"entry"`
	Date      string  `json:"date"`
	Credit    float64 `json:"credit"`
	Debit     float64 `json:"debit"`
	Detail    string  `json:"detail"`
}

// CreateAgentEntry posts an agent ledger row.
func (c *Client) CreateAgentEntry(ctx context.Context, input AgentEntryInput) error {
	return c.do(ctx, http.MethodPost, "/agent", "", input, nil)
}

// DeleteAgentEntry removes one agent ledger row.
func (c *Client) DeleteAgentEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/agent/"+url.PathEscape(id), "", nil, nil)
}

// AgentEntries fetches the raw agent ledger and filters it to one agent.
func (c *Client) AgentEntries(ctx context.Context, agentName string) ([]LedgerRow, error) {
	records, err := c.FetchModule(ctx, AgentModule)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var rows []LedgerRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	filtered := rows[:0]
	for _, row := range rows {
		if row.AgentName == agentName {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ArchiveAll lists archived (soft-deleted) bookings.
func (c *Client) ArchiveAll(ctx context.Context) ([]map[string]any, error) {
	var payload struct {
		Archive []map[string]any `json:"archive"`
	}
	if err := c.get(ctx, "/archive/all", &payload); err != nil {
		return nil, err
	}
	return payload.Archive, nil
}

// PurgeArchived permanently deletes one archived record.
func (c *Client) PurgeArchived(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/archive/"+url.PathEscape(id), "", nil, nil)
}

// ArchiveBooking soft-deletes a booking; the backend moves it into the
// archive collection rather than removing it.
func (c *Client) ArchiveBooking(ctx context.Context, kind, id string) error {
	adapter, ok := AdapterFor(kind)
	if !ok {
		return fmt.Errorf("upstream: unknown module %q", kind)
	}
	return c.do(ctx, http.MethodDelete, adapter.Path+"/"+url.PathEscape(id), "", nil, nil)
}

// PendingUsers lists employees awaiting approval. The caller's own bearer
// token is forwarded; the service credential is never used for admin calls.
func (c *Client) PendingUsers(ctx context.Context, token string) ([]map[string]any, error) {
	var users []map[string]any
	if err := c.do(ctx, http.MethodGet, "/admin/pending-users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Employees lists approved employees.
func (c *Client) Employees(ctx context.Context, token string) ([]map[string]any, error) {
	var employees []map[string]any
	if err := c.do(ctx, http.MethodGet, "/admin/employees", token, nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// ApproveUser approves a pending employee account.
func (c *Client) ApproveUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, http.MethodPost, "/admin/approve-user/"+url.PathEscape(userID), token, nil, nil)
}
