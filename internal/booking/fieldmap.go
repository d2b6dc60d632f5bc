package booking

import (
	"log/slog"

	"github.com/meridian-travel/backoffice/internal/ledger"
)

// fieldMap lists, per canonical field, the source keys a module may use.
// The first present key wins. Keys differ across modules because each
// backend collection grew its own column names.
type fieldMap struct {
	receivable []string
	paidCash   []string
	paidInBank []string
	remaining  []string
	withdraw   []string
	profit     []string
	date       []string
	entry      []string
	employee   []string
	passenger  []string
}

var defaultFields = fieldMap{
	receivable: []string{"receivable_amount", "receiveable_amount", "total_amount"},
	paidCash:   []string{"paid_cash", "payed_cash", "cash_paid"},
	paidInBank: []string{"paid_in_bank", "paid_bank", "bank_paid"},
	remaining:  []string{"remaining_amount", "remaining"},
	withdraw:   []string{"withdraw", "withdraw_amount"},
	profit:     []string{"profit"},
	date:       []string{"booking_date", "date", "created_at", "createdAt"},
	entry:      []string{"entry", "entry_no"},
	employee:   []string{"employee_name", "recorded_by", "employee"},
	passenger:  []string{"passengerDetail", "passenger_detail", "passengers", "customer_detail", "name"},
}

// moduleOverrides patches the default map where a module's column names
// diverge. Missing fields fall through to defaultFields.
var moduleOverrides = map[ledger.Type]fieldMap{
	ledger.TypeExpenses: {
		withdraw: []string{"expense_amount", "withdraw", "amount"},
		date:     []string{"expense_date", "date", "created_at"},
		entry:    []string{"entry", "expense_entry"},
	},
	ledger.TypeRefunded: {
		withdraw: []string{"refund_amount", "paid_amount", "withdraw"},
		date:     []string{"refund_date", "date", "created_at"},
	},
	ledger.TypeProtector: {
		withdraw: []string{"protector_amount", "withdraw", "amount"},
		date:     []string{"protector_date", "date", "created_at"},
	},
	ledger.TypeVendor: {
		withdraw: []string{"debit", "withdraw", "amount"},
		date:     []string{"date", "created_at"},
		entry:    []string{"entry"},
	},
	ledger.TypeGamcaToken: {
		paidCash: []string{"token_price", "paid_cash", "payed_cash"},
		date:     []string{"token_date", "date", "created_at"},
	},
}

func fieldsFor(t ledger.Type) fieldMap {
	f := defaultFields
	override, ok := moduleOverrides[t]
	if !ok {
		return f
	}
	merge := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	merge(&f.receivable, override.receivable)
	merge(&f.paidCash, override.paidCash)
	merge(&f.paidInBank, override.paidInBank)
	merge(&f.remaining, override.remaining)
	merge(&f.withdraw, override.withdraw)
	merge(&f.profit, override.profit)
	merge(&f.date, override.date)
	merge(&f.entry, override.entry)
	merge(&f.employee, override.employee)
	merge(&f.passenger, override.passenger)
	return f
}

func lookup(record map[string]any, keys []string) any {
	for _, key := range keys {
		if v, ok := record[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func lookupString(record map[string]any, keys []string) string {
	if v, ok := lookup(record, keys).(string); ok {
		return v
	}
	return ""
}

// NormalizeRecord collapses one raw module record into the common
// Transaction shape. Every financial field comes out numeric; downstream
// consumers never see a missing amount.
func NormalizeRecord(t ledger.Type, record map[string]any, logger *slog.Logger) ledger.Transaction {
	f := fieldsFor(t)
	rawDate := lookup(record, f.date)
	return ledger.Transaction{
		Type:          t,
		EmployeeName:  lookupString(record, f.employee),
		Entry:         lookupString(record, f.entry),
		PassengerName: PassengerName(lookup(record, f.passenger), logger),
		Receivable:    SafeFloat(lookup(record, f.receivable)),
		PaidCash:      SafeFloat(lookup(record, f.paidCash)),
		PaidInBank:    SafeFloat(lookup(record, f.paidInBank)),
		Remaining:     SafeFloat(lookup(record, f.remaining)),
		Withdraw:      SafeFloat(lookup(record, f.withdraw)),
		Profit:        SafeFloat(lookup(record, f.profit)),
		BookingDate:   SafeDateLabel(rawDate),
		Timestamp:     SafeTimestamp(rawDate),
	}
}
