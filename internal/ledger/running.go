package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AscendingByTimestamp sorts a copy of txs oldest first. The sort is stable:
// records sharing a timestamp keep their input order, which the accumulation
// pass relies on.
func AscendingByTimestamp(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// DescendingByTimestamp sorts a copy of txs newest first, again stably.
func DescendingByTimestamp(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

// ComputeRunning annotates every transaction with the cash-in-office balance
// after applying its cash effect. The walk must happen oldest first and the
// balance is rounded to two decimal places at every step, not only at the
// end; deferring the rounding lets float drift compound differently and the
// closing balance stops agreeing with the independently computed totals.
// The returned slice is ordered newest first for display; the second return
// is the balance after the final accumulation step, zero for an empty
// ledger. The closing balance comes from the accumulation pass rather than
// the display slice because records sharing the newest timestamp keep their
// input order under the stable sort, so the first display row is not
// necessarily the last one accumulated.
func ComputeRunning(txs []Transaction) ([]Transaction, float64) {
	ordered := AscendingByTimestamp(txs)
	running := decimal.Zero
	for i := range ordered {
		running = running.
			Add(decimal.NewFromFloat(ordered[i].PaidCash)).
			Sub(decimal.NewFromFloat(ordered[i].Withdraw)).
			Round(2)
		ordered[i].CashInOfficeRunning = running.InexactFloat64()
	}
	return DescendingByTimestamp(ordered), running.InexactFloat64()
}
