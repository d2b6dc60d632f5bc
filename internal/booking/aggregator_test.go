package booking

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/meridian-travel/backoffice/internal/ledger"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

type fakeBackend struct {
	modules map[string][]map[string]any
	failing map[string]error
	banks   map[string][]upstream.LedgerRow
	calls   map[string]int
}

func (f *fakeBackend) FetchModule(ctx context.Context, adapter upstream.ModuleAdapter) ([]map[string]any, error) {
	if f.calls != nil {
		f.calls[adapter.Kind]++
	}
	if err, ok := f.failing[adapter.Kind]; ok {
		return nil, err
	}
	return f.modules[adapter.Kind], nil
}

func (f *fakeBackend) BankLedger(ctx context.Context, bank string) ([]upstream.LedgerRow, error) {
	rows, ok := f.banks[bank]
	if !ok {
		return nil, errors.New("no such account")
	}
	return rows, nil
}

func fixtureBackend() *fakeBackend {
	return &fakeBackend{
		modules: map[string][]map[string]any{
			"ticket": {
				{"entry": "TK 1/7", "payed_cash": "500", "receivable_amount": 800, "remaining_amount": 300, "profit": 50, "booking_date": "2024-01-02"},
			},
			"umrah": {
				{"entry": "UM 1/7", "paid_cash": 1000, "receivable_amount": 1000, "booking_date": "2024-01-03"},
			},
			"expenses": {
				{"entry": "EX 1/7", "expense_amount": 200, "expense_date": "2024-01-04"},
			},
			"vender": {
				{"vender_name": "Al Noor Travels", "credit": 100, "debit": 0, "date": "2024-01-01"},
				{"vender_name": "Al Noor Travels", "credit": 0, "debit": 30, "date": "2024-01-05"},
			},
			"agent": {
				{"agent_name": "Acme", "credit": 300, "debit": 120},
			},
		},
		failing: map[string]error{},
		banks: map[string][]upstream.LedgerRow{
			"HBL": {
				{Entry: "TK 1/7", Credit: 300, Balance: 300},
				{Entry: "UM 1/7", Credit: 200, Balance: 500},
			},
		},
		calls: map[string]int{},
	}
}

func TestAggregateBuildsSnapshot(t *testing.T) {
	backend := fixtureBackend()
	agg := NewAggregator(backend, []string{"HBL"}, nil, nil)

	snap, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	// ticket + umrah + expense + 2 vendor rows
	if len(snap.Transactions) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(snap.Transactions))
	}
	if snap.CountsByType[ledger.TypeTicket] != 1 || snap.CountsByType[ledger.TypeVendor] != 2 {
		t.Fatalf("counts wrong: %#v", snap.CountsByType)
	}
	if snap.TotalReceivable != 1800 {
		t.Fatalf("total receivable %.2f, want 1800", snap.TotalReceivable)
	}
	if snap.Totals.TotalPaidCash != 1500 || snap.Totals.TotalWithdraw != 230 || snap.Totals.CashInOffice != 1270 {
		t.Fatalf("global totals wrong: %+v", snap.Totals)
	}
	if len(snap.Banks) != 1 || snap.Banks[0].Balance != 500 {
		t.Fatalf("bank snapshot wrong: %#v", snap.Banks)
	}
	if len(snap.Vendors) != 1 || snap.Vendors[0].Remaining != 70 {
		t.Fatalf("vendor grouping wrong: %#v", snap.Vendors)
	}
	if len(snap.Agents) != 1 || snap.Agents[0].Remaining != 180 {
		t.Fatalf("agent grouping wrong: %#v", snap.Agents)
	}
	if len(snap.Degraded) != 0 {
		t.Fatalf("unexpected degradation: %v", snap.Degraded)
	}
}

func TestAggregateDegradesFailedModule(t *testing.T) {
	backend := fixtureBackend()
	backend.failing["umrah"] = errors.New("gateway timeout")
	agg := NewAggregator(backend, []string{"HBL"}, nil, nil)

	snap, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("aggregate must not fail on one module: %v", err)
	}
	if len(snap.Degraded) != 1 || snap.Degraded[0] != "umrah" {
		t.Fatalf("expected umrah degraded, got %v", snap.Degraded)
	}
	// Every other module still contributes; totals stay non-empty.
	if snap.CountsByType[ledger.TypeUmrah] != 0 {
		t.Fatalf("umrah must contribute nothing")
	}
	if snap.CountsByType[ledger.TypeTicket] != 1 || snap.Totals.TotalPaidCash != 500 {
		t.Fatalf("other modules must survive: %+v", snap.Totals)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	backend := fixtureBackend()
	agg := NewAggregator(backend, []string{"HBL"}, nil, nil)

	first, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("first aggregate: %v", err)
	}
	second, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("second aggregate: %v", err)
	}
	if !reflect.DeepEqual(first.Totals, second.Totals) {
		t.Fatalf("totals must not accumulate across calls: %+v vs %+v", first.Totals, second.Totals)
	}
	if first.TotalReceivable != second.TotalReceivable || len(first.Transactions) != len(second.Transactions) {
		t.Fatalf("aggregation must rebuild from scratch every call")
	}
}
