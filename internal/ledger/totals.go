package ledger

import "github.com/shopspring/decimal"

// GlobalTotals holds the office-wide cash aggregates. They are computed
// directly from the transaction list rather than from the running-balance
// annotations so rounding applied during the ledger walk cannot compound
// into the totals.
type GlobalTotals struct {
	TotalPaidCash float64 `json:"total_paid_cash"`
	TotalWithdraw float64 `json:"total_withdraw"`
	CashInOffice  float64 `json:"cash_in_office"`
}

// ConsistencyTolerance is the largest divergence between the global
// cash-in-office figure and the ledger closing balance that is considered
// rounding noise rather than a classification mismatch.
const ConsistencyTolerance = 0.01

// ComputeGlobalTotals sums paid cash over the cash-generating module types
// and withdrawals over the withdrawing types. CashInOffice derived here is
// the authoritative figure; the running-ledger closing balance is exposed
// alongside it for cross-checking only.
func ComputeGlobalTotals(txs []Transaction) GlobalTotals {
	paid := decimal.Zero
	withdrawn := decimal.Zero
	for _, tx := range txs {
		if CashGenerating(tx.Type) {
			paid = paid.Add(decimal.NewFromFloat(tx.PaidCash))
		}
		if Withdrawing(tx.Type) {
			withdrawn = withdrawn.Add(decimal.NewFromFloat(tx.Withdraw))
		}
	}
	paid = paid.Round(2)
	withdrawn = withdrawn.Round(2)
	return GlobalTotals{
		TotalPaidCash: paid.InexactFloat64(),
		TotalWithdraw: withdrawn.InexactFloat64(),
		CashInOffice:  paid.Sub(withdrawn).Round(2).InexactFloat64(),
	}
}

// CheckConsistency compares the authoritative cash-in-office figure with the
// running-ledger closing balance. A divergence beyond the tolerance means
// some module is classified as cash-generating in one code path and not the
// other; callers surface it as a warning, never an error.
func CheckConsistency(totals GlobalTotals, closingBalance float64) bool {
	diff := decimal.NewFromFloat(totals.CashInOffice).
		Sub(decimal.NewFromFloat(closingBalance)).
		Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(ConsistencyTolerance))
}
