package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/ledger"
	"github.com/meridian-travel/backoffice/internal/observability"
	"github.com/meridian-travel/backoffice/internal/shared"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

// Backend is the slice of the upstream client the reconciler writes through.
type Backend interface {
	FetchBooking(ctx context.Context, kind, id string) (map[string]any, error)
	CreatePayment(ctx context.Context, kind string, input upstream.PaymentInput) (map[string]any, error)
	ListPayments(ctx context.Context, kind, bookingID string) ([]map[string]any, error)
	DeletePayment(ctx context.Context, kind, bookingID, paymentID string) error
	CreateBankEntry(ctx context.Context, input upstream.BankEntryInput) error
	CreateAgentEntry(ctx context.Context, input upstream.AgentEntryInput) error
	DeleteBankEntry(ctx context.Context, bank, id string) error
	DeleteAgentEntry(ctx context.Context, id string) error
	AgentEntries(ctx context.Context, agentName string) ([]upstream.LedgerRow, error)
	BankLedger(ctx context.Context, bank string) ([]upstream.LedgerRow, error)
}

// Journal records saga progress. The pgx Repository implements it.
type Journal interface {
	CreateSaga(ctx context.Context, saga *Saga) error
	RecordStep(ctx context.Context, sagaID uuid.UUID, step Step) error
	UpdateState(ctx context.Context, sagaID uuid.UUID, state State) error
}

// Notifier broadcasts that payment data changed so cached views refresh.
type Notifier interface {
	PaymentUpdated(ctx context.Context)
}

// ServiceParams groups the optional collaborators.
type ServiceParams struct {
	Locks       *shared.KeyedMutex
	Idempotency *shared.IdempotencyStore
	Notifier    Notifier
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// Service performs the cross-ledger payment fan-out. The three writes are
// sequential with no transaction: if a later write fails the earlier ones
// stay committed, exactly as the back office operates today. The saga
// journal makes that partial state inspectable.
type Service struct {
	backend     Backend
	journal     Journal
	locks       *shared.KeyedMutex
	idempotency *shared.IdempotencyStore
	notifier    Notifier
	validate    *validator.Validate
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewService wires the reconciler.
func NewService(backend Backend, journal Journal, params ServiceParams) *Service {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locks := params.Locks
	if locks == nil {
		locks = shared.NewKeyedMutex()
	}
	return &Service{
		backend:     backend,
		journal:     journal,
		locks:       locks,
		idempotency: params.Idempotency,
		notifier:    params.Notifier,
		validate:    validator.New(),
		logger:      logger,
		metrics:     params.Metrics,
	}
}

func (s *Service) recordStep(ctx context.Context, saga *Saga, name string, status StepStatus, detail string) {
	step := Step{Name: name, Status: status, Detail: detail, At: time.Now().UTC()}
	saga.Steps = append(saga.Steps, step)
	s.metrics.ReconcileStep(name, string(status))
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordStep(ctx, saga.ID, step); err != nil {
		s.logger.Error("record saga step", slog.String("saga", saga.ID.String()), slog.Any("error", err))
	}
}

func (s *Service) setState(ctx context.Context, saga *Saga, state State) {
	saga.State = state
	saga.UpdatedAt = time.Now().UTC()
	if s.journal == nil {
		return
	}
	if err := s.journal.UpdateState(ctx, saga.ID, state); err != nil {
		s.logger.Error("update saga state", slog.String("saga", saga.ID.String()), slog.Any("error", err))
	}
}

func (s *Service) openSaga(ctx context.Context, saga *Saga) {
	if s.journal == nil {
		return
	}
	if err := s.journal.CreateSaga(ctx, saga); err != nil {
		s.logger.Error("create saga", slog.String("saga", saga.ID.String()), slog.Any("error", err))
	}
}

// bookingInfo loads and normalizes the booking the payment belongs to.
func (s *Service) bookingInfo(ctx context.Context, kind, id string) (ledger.Transaction, map[string]any, error) {
	record, err := s.backend.FetchBooking(ctx, kind, id)
	if err != nil {
		return ledger.Transaction{}, nil, fmt.Errorf("reconcile: load booking %s/%s: %w", kind, id, err)
	}
	adapter, ok := upstream.AdapterFor(kind)
	if !ok {
		return ledger.Transaction{}, nil, fmt.Errorf("reconcile: unknown module %q", kind)
	}
	return booking.NormalizeRecord(adapter.Type, record, s.logger), record, nil
}

func stringField(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// recordID extracts the backend identifier of a loosely typed record.
func recordID(record map[string]any) string {
	for _, key := range []string{"id", "_id"} {
		switch v := record[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

// buildDetail assembles the free-text detail written onto derived entries:
// passenger, sector, airline, reference and the formatted dates, tagged (RP).
func buildDetail(tx ledger.Transaction, record map[string]any, paymentDate string) string {
	parts := make([]string, 0, 6)
	add := func(s string) {
		if s != "" && s != "--" {
			parts = append(parts, s)
		}
	}
	add(tx.PassengerName)
	add(stringField(record, "sector", "route"))
	add(stringField(record, "airline"))
	add(stringField(record, "reference_number", "ref_no", "reference"))
	add(tx.BookingDate)
	add(booking.SafeDateLabel(paymentDate))
	return strings.TrimSpace(strings.Join(parts, " ") + " " + RPSuffix)
}

// AddPayment records a remaining payment and fans out the derived ledger
// writes. Returns the saga with every step outcome recorded.
func (s *Service) AddPayment(ctx context.Context, req AddPaymentRequest) (*Saga, error) {
	if err := req.Validate(s.validate); err != nil {
		return nil, fmt.Errorf("reconcile: invalid payment: %w", err)
	}
	if req.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, req.IdempotencyKey, req.BookingKind); err != nil {
			return nil, err
		}
	}

	unlock := s.locks.Lock(shared.BookingLockKey(req.BookingKind, req.BookingID))
	defer unlock()

	tx, record, err := s.bookingInfo(ctx, req.BookingKind, req.BookingID)
	if err != nil {
		return nil, err
	}
	agentName := stringField(record, "agent_name")
	label := EntryLabel(tx.Entry)
	detail := buildDetail(tx, record, req.PaymentDate)

	saga := NewSaga("add-payment", req.BookingKind, req.BookingID)
	s.openSaga(ctx, saga)

	var bankTitle *string
	if req.BankTitle != "" {
		bankTitle = &req.BankTitle
	}
	_, err = s.backend.CreatePayment(ctx, req.BookingKind, upstream.PaymentInput{
		BookingID:   req.BookingID,
		PaymentDate: req.PaymentDate,
		PayedCash:   req.PaidCash,
		PaidBank:    req.PaidBank,
		BankTitle:   bankTitle,
		RecordedBy:  req.RecordedBy,
	})
	if err != nil {
		s.recordStep(ctx, saga, StepPayment, StepFailed, err.Error())
		s.setState(ctx, saga, StateFailed)
		// Nothing committed yet; allow the same key to retry.
		if req.IdempotencyKey != "" && s.idempotency != nil {
			if derr := s.idempotency.Delete(ctx, req.IdempotencyKey); derr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", derr))
			}
		}
		return saga, fmt.Errorf("reconcile: create payment: %w", err)
	}
	s.recordStep(ctx, saga, StepPayment, StepOK, "")

	if req.PaidBank > 0 && req.BankTitle != "" {
		err := s.backend.CreateBankEntry(ctx, upstream.BankEntryInput{
			BankTitle: req.BankTitle,
			Entry:     label,
			Date:      req.PaymentDate,
			Credit:    req.PaidBank,
			Detail:    detail,
		})
		if err != nil {
			// The payment row is already committed; there is no rollback.
			s.recordStep(ctx, saga, StepBankEntry, StepFailed, err.Error())
			s.setState(ctx, saga, StatePartiallyCommitted)
			return saga, fmt.Errorf("reconcile: create bank entry after payment committed: %w", err)
		}
		s.recordStep(ctx, saga, StepBankEntry, StepOK, req.BankTitle)
	} else {
		s.recordStep(ctx, saga, StepBankEntry, StepSkipped, "no bank portion")
	}

	if agentName != "" {
		err := s.backend.CreateAgentEntry(ctx, upstream.AgentEntryInput{
			AgentName: agentName,
			Entry:     label,
			Date:      req.PaymentDate,
			Debit:     req.PaidCash + req.PaidBank,
			Credit:    0,
			Detail:    detail,
		})
		if err != nil {
			s.recordStep(ctx, saga, StepAgentEntry, StepFailed, err.Error())
			s.setState(ctx, saga, StatePartiallyCommitted)
			return saga, fmt.Errorf("reconcile: create agent entry after payment committed: %w", err)
		}
		s.recordStep(ctx, saga, StepAgentEntry, StepOK, agentName)
	} else {
		s.recordStep(ctx, saga, StepAgentEntry, StepSkipped, "booking has no agent")
	}

	s.setState(ctx, saga, StateCommitted)
	if s.notifier != nil {
		s.notifier.PaymentUpdated(ctx)
	}
	return saga, nil
}

// DeletePayment reverses a payment's fan-out. Derived entries are located
// by the best-effort match predicate; when one cannot be found and the
// request is not forced, the match report is returned with ErrMatchNotFound
// so the caller can prompt before anything is removed.
func (s *Service) DeletePayment(ctx context.Context, req DeletePaymentRequest) (*Saga, *MatchReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("reconcile: invalid delete request: %w", err)
	}

	unlock := s.locks.Lock(shared.BookingLockKey(req.BookingKind, req.BookingID))
	defer unlock()

	tx, record, err := s.bookingInfo(ctx, req.BookingKind, req.BookingID)
	if err != nil {
		return nil, nil, err
	}
	agentName := stringField(record, "agent_name")

	payments, err := s.backend.ListPayments(ctx, req.BookingKind, req.BookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("reconcile: list payments: %w", err)
	}
	var payment map[string]any
	for _, p := range payments {
		if recordID(p) == req.PaymentID {
			payment = p
			break
		}
	}
	if payment == nil {
		return nil, nil, fmt.Errorf("reconcile: payment %s: %w", req.PaymentID, shared.ErrNotFound)
	}

	cash := booking.SafeFloat(payment["payed_cash"])
	bank := booking.SafeFloat(payment["paid_bank"])
	bankTitle := stringField(payment, "bank_title")
	paymentDate := stringField(payment, "payment_date")

	criteria := MatchCriteria{
		EntryLabel: EntryLabel(tx.Entry),
		Date:       paymentDate,
		Cash:       cash,
		Bank:       bank,
	}

	report := &MatchReport{
		AgentRequired: agentName != "",
		BankRequired:  bank > 0 && bankTitle != "",
	}
	if report.AgentRequired {
		rows, err := s.backend.AgentEntries(ctx, agentName)
		if err != nil {
			return nil, nil, fmt.Errorf("reconcile: search agent ledger: %w", err)
		}
		for _, row := range rows {
			if MatchAgentEntry(row, criteria) {
				report.AgentFound = true
				report.AgentEntryID = row.ID
				break
			}
		}
	}
	if report.BankRequired {
		rows, err := s.backend.BankLedger(ctx, bankTitle)
		if err != nil {
			return nil, nil, fmt.Errorf("reconcile: search bank ledger: %w", err)
		}
		for _, row := range rows {
			if MatchBankEntry(row, criteria) {
				report.BankFound = true
				report.BankEntryID = row.ID
				break
			}
		}
	}

	saga := NewSaga("delete-payment", req.BookingKind, req.BookingID)
	s.openSaga(ctx, saga)

	if missing := report.Missing(); len(missing) > 0 && !req.Force {
		for _, name := range missing {
			s.recordStep(ctx, saga, name, StepFailed, "no matching entry; awaiting confirmation")
		}
		s.logger.Warn("derived entry match not found",
			slog.String("booking", req.BookingKind+"/"+req.BookingID),
			slog.Any("missing", missing))
		return saga, report, shared.ErrMatchNotFound
	}

	partial := false

	// Deletion order: agent entry, then bank entry, then the payment row.
	if !report.AgentRequired {
		s.recordStep(ctx, saga, StepAgentEntry, StepSkipped, "booking has no agent")
	} else if !report.AgentFound {
		partial = true
		s.recordStep(ctx, saga, StepAgentEntry, StepSkipped, "no match, deletion forced")
	} else if err := s.backend.DeleteAgentEntry(ctx, report.AgentEntryID); err != nil {
		partial = true
		s.recordStep(ctx, saga, StepAgentEntry, StepFailed, err.Error())
	} else {
		s.recordStep(ctx, saga, StepAgentEntry, StepOK, report.AgentEntryID)
	}

	if !report.BankRequired {
		s.recordStep(ctx, saga, StepBankEntry, StepSkipped, "no bank portion")
	} else if !report.BankFound {
		partial = true
		s.recordStep(ctx, saga, StepBankEntry, StepSkipped, "no match, deletion forced")
	} else if err := s.backend.DeleteBankEntry(ctx, bankTitle, report.BankEntryID); err != nil {
		partial = true
		s.recordStep(ctx, saga, StepBankEntry, StepFailed, err.Error())
	} else {
		s.recordStep(ctx, saga, StepBankEntry, StepOK, report.BankEntryID)
	}

	if err := s.backend.DeletePayment(ctx, req.BookingKind, req.BookingID, req.PaymentID); err != nil {
		s.recordStep(ctx, saga, StepPayment, StepFailed, err.Error())
		if partial || report.AgentFound || report.BankFound {
			s.setState(ctx, saga, StatePartiallyReconciled)
		} else {
			s.setState(ctx, saga, StateFailed)
		}
		return saga, report, fmt.Errorf("reconcile: delete payment: %w", err)
	}
	s.recordStep(ctx, saga, StepPayment, StepOK, "")

	if partial {
		s.setState(ctx, saga, StatePartiallyReconciled)
	} else {
		s.setState(ctx, saga, StateReconciledDeleted)
	}
	if s.notifier != nil {
		s.notifier.PaymentUpdated(ctx)
	}
	return saga, report, nil
}

// ErrIsRetryable reports whether the caller may simply retry the request.
func ErrIsRetryable(err error) bool {
	return errors.Is(err, shared.ErrUpstreamUnavailable)
}
