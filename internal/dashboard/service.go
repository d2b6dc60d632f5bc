package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/ledger"
)

// Aggregator builds a fresh booking snapshot from the upstream.
type Aggregator interface {
	Aggregate(ctx context.Context) (*booking.Snapshot, error)
}

// Service serves the read side of the back office: summary cards, the running
// cash ledger and the party balances. Snapshots are cached under the global
// cache version and rebuilt at most once per version through singleflight, so
// a burst of dashboard opens after a payment costs a single upstream fan-out.
type Service struct {
	aggregator Aggregator
	cache      *Cache
	logger     *slog.Logger
	group      singleflight.Group
}

// NewService wires the dashboard service. cache may be nil, which disables
// caching but keeps the singleflight collapse.
func NewService(aggregator Aggregator, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{aggregator: aggregator, cache: cache, logger: logger}
}

// SummaryView carries the dashboard headline figures.
type SummaryView struct {
	CountsByType    map[ledger.Type]int `json:"counts_by_type"`
	TotalReceivable float64             `json:"total_receivable"`
	TotalPaid       float64             `json:"total_paid"`
	TotalRemaining  float64             `json:"total_remaining"`
	TotalProfit     float64             `json:"total_profit"`

	Totals         ledger.GlobalTotals `json:"totals"`
	ClosingBalance float64             `json:"closing_balance"`
	Consistent     bool                `json:"consistent"`

	Degraded []string `json:"degraded,omitempty"`
}

// LedgerView is the running cash ledger, newest first, every row annotated
// with the balance after it.
type LedgerView struct {
	Transactions   []ledger.Transaction `json:"transactions"`
	ClosingBalance float64              `json:"closing_balance"`
	Degraded       []string             `json:"degraded,omitempty"`
}

func (s *Service) snapshot(ctx context.Context) (*booking.Snapshot, error) {
	key, err := s.cache.VersionedKey(ctx, "dashboard", "snapshot")
	if err != nil {
		return nil, err
	}
	value, err, _ := s.group.Do(key, func() (any, error) {
		snap := &booking.Snapshot{}
		if err := s.cache.FetchJSON(ctx, key, snap, func(ctx context.Context) (any, error) {
			return s.aggregator.Aggregate(ctx)
		}); err != nil {
			return nil, err
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*booking.Snapshot), nil
}

// Summary returns the headline figures. The authoritative cash-in-office
// number comes from the global totals; the ledger closing balance is attached
// for cross-checking, with a warning logged when the two disagree.
func (s *Service) Summary(ctx context.Context) (*SummaryView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	_, closing := ledger.ComputeRunning(snap.Transactions)
	consistent := ledger.CheckConsistency(snap.Totals, closing)
	if !consistent {
		s.logger.Warn("cash-in-office figures diverge",
			slog.Float64("global", snap.Totals.CashInOffice),
			slog.Float64("closing_balance", closing))
	}
	return &SummaryView{
		CountsByType:    snap.CountsByType,
		TotalReceivable: snap.TotalReceivable,
		TotalPaid:       snap.TotalPaid,
		TotalRemaining:  snap.TotalRemaining,
		TotalProfit:     snap.TotalProfit,
		Totals:          snap.Totals,
		ClosingBalance:  closing,
		Consistent:      consistent,
		Degraded:        snap.Degraded,
	}, nil
}

// RunningLedger returns every transaction newest first with the running
// cash-in-office balance annotated.
func (s *Service) RunningLedger(ctx context.Context) (*LedgerView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	display, closing := ledger.ComputeRunning(snap.Transactions)
	return &LedgerView{
		Transactions:   display,
		ClosingBalance: closing,
		Degraded:       snap.Degraded,
	}, nil
}

// Vendors returns the per-vendor payable balances.
func (s *Service) Vendors(ctx context.Context) ([]booking.PartyBalance, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Vendors, nil
}

// Agents returns the per-agent receivable balances.
func (s *Service) Agents(ctx context.Context) ([]booking.PartyBalance, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Agents, nil
}

// BankBalances returns the snapshot balance of each configured bank account.
func (s *Service) BankBalances(ctx context.Context) ([]booking.BankBalance, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Banks, nil
}

// PaymentUpdated invalidates every cached view. The reconciler calls it after
// each write so the next dashboard read reflects the new payment.
func (s *Service) PaymentUpdated(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", slog.Any("error", err))
	}
}
