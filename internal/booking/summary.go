package booking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-travel/backoffice/internal/ledger"
)

// PartyBalance is the per-vendor or per-agent snapshot: credits and debits
// summed by name with the final payable. No running balance is kept per
// party, only this group-by result.
type PartyBalance struct {
	Name      string  `json:"name"`
	Credit    float64 `json:"credit"`
	Debit     float64 `json:"debit"`
	Remaining float64 `json:"remaining_amount"`
}

// BankBalance is the current snapshot of one bank account, taken from the
// last row of its ledger.
type BankBalance struct {
	Bank    string  `json:"bank"`
	Balance float64 `json:"balance"`
}

// GroupParties aggregates raw ledger entries by party name, summing credits
// and debits. Entries without a recognizable name are dropped. The result
// is sorted by name for stable output.
func GroupParties(records []map[string]any, nameKeys []string) []PartyBalance {
	type sums struct{ credit, debit decimal.Decimal }
	grouped := make(map[string]*sums)
	order := make([]string, 0)
	for _, record := range records {
		name := lookupString(record, nameKeys)
		if name == "" {
			continue
		}
		entry, ok := grouped[name]
		if !ok {
			entry = &sums{}
			grouped[name] = entry
			order = append(order, name)
		}
		entry.credit = entry.credit.Add(decimal.NewFromFloat(SafeFloat(record["credit"])))
		entry.debit = entry.debit.Add(decimal.NewFromFloat(SafeFloat(record["debit"])))
	}
	sort.Strings(order)
	out := make([]PartyBalance, 0, len(order))
	for _, name := range order {
		entry := grouped[name]
		credit := entry.credit.Round(2)
		debit := entry.debit.Round(2)
		out = append(out, PartyBalance{
			Name:      name,
			Credit:    credit.InexactFloat64(),
			Debit:     debit.InexactFloat64(),
			Remaining: credit.Sub(debit).Round(2).InexactFloat64(),
		})
	}
	return out
}

// Snapshot is the full aggregation result for one render cycle. It is
// rebuilt from scratch on every Aggregate call; nothing accumulates across
// calls.
type Snapshot struct {
	Transactions []ledger.Transaction `json:"transactions"`

	CountsByType    map[ledger.Type]int `json:"counts_by_type"`
	TotalReceivable float64             `json:"total_receivable"`
	TotalPaid       float64             `json:"total_paid"`
	TotalRemaining  float64             `json:"total_remaining"`
	TotalProfit     float64             `json:"total_profit"`

	Totals ledger.GlobalTotals `json:"totals"`

	Banks   []BankBalance  `json:"banks"`
	Vendors []PartyBalance `json:"vendors"`
	Agents  []PartyBalance `json:"agents"`

	// Degraded names the modules whose fetch failed and contributed
	// nothing this cycle.
	Degraded []string `json:"degraded,omitempty"`
}

func summarize(snapshot *Snapshot) {
	counts := make(map[ledger.Type]int)
	receivable := decimal.Zero
	paid := decimal.Zero
	remaining := decimal.Zero
	profit := decimal.Zero
	for _, tx := range snapshot.Transactions {
		counts[tx.Type]++
		receivable = receivable.Add(decimal.NewFromFloat(tx.Receivable))
		paid = paid.Add(decimal.NewFromFloat(tx.PaidCash)).Add(decimal.NewFromFloat(tx.PaidInBank))
		remaining = remaining.Add(decimal.NewFromFloat(tx.Remaining))
		profit = profit.Add(decimal.NewFromFloat(tx.Profit))
	}
	snapshot.CountsByType = counts
	snapshot.TotalReceivable = receivable.Round(2).InexactFloat64()
	snapshot.TotalPaid = paid.Round(2).InexactFloat64()
	snapshot.TotalRemaining = remaining.Round(2).InexactFloat64()
	snapshot.TotalProfit = profit.Round(2).InexactFloat64()
	snapshot.Totals = ledger.ComputeGlobalTotals(snapshot.Transactions)
}
