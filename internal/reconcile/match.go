package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

// bankTolerance is the float tolerance used when matching a bank credit.
// Cash-derived amounts are compared exactly.
var bankTolerance = decimal.NewFromFloat(0.01)

// RPSuffix tags derived ledger entries spawned by a remaining payment.
const RPSuffix = "(RP)"

// EntryLabel builds the derived-entry label for a booking entry, e.g.
// "VE 3/12 (RP)". The label is the strongest part of the linkage since no
// foreign key ties the derived rows back to the payment.
func EntryLabel(bookingEntry string) string {
	return bookingEntry + " " + RPSuffix
}

// NormalizeISODate collapses any parseable date representation onto
// YYYY-MM-DD so two dates can be string-compared. Unparsable input yields
// the empty string, which never matches.
func NormalizeISODate(raw string) string {
	ts := booking.SafeTimestamp(raw)
	if ts == 0 {
		return ""
	}
	return time.UnixMilli(ts).UTC().Format("2006-01-02")
}

// MatchCriteria re-derives the identifying fields of the derived ledger
// entries a payment spawned. This is best-effort linkage by design: the
// original system writes the rows without foreign keys and relies on these
// fields staying untouched.
type MatchCriteria struct {
	EntryLabel string
	Date       string
	Cash       float64
	Bank       float64
}

// MatchAgentEntry reports whether row is the agent debit spawned by the
// payment described in c. The debit equals cash plus bank exactly.
func MatchAgentEntry(row upstream.LedgerRow, c MatchCriteria) bool {
	if !labelAndDateMatch(row, c) {
		return false
	}
	want := decimal.NewFromFloat(c.Cash).Add(decimal.NewFromFloat(c.Bank))
	return decimal.NewFromFloat(row.Debit).Equal(want)
}

// MatchBankEntry reports whether row is the bank credit spawned by the
// payment described in c, within the float tolerance.
func MatchBankEntry(row upstream.LedgerRow, c MatchCriteria) bool {
	if !labelAndDateMatch(row, c) {
		return false
	}
	diff := decimal.NewFromFloat(row.Credit).Sub(decimal.NewFromFloat(c.Bank)).Abs()
	return diff.LessThanOrEqual(bankTolerance)
}

func labelAndDateMatch(row upstream.LedgerRow, c MatchCriteria) bool {
	if c.EntryLabel == "" || row.Entry == "" {
		return false
	}
	// The stored entry may carry surrounding text; the constructed label
	// must appear verbatim inside it.
	if !strings.Contains(row.Entry, c.EntryLabel) {
		return false
	}
	date := NormalizeISODate(c.Date)
	return date != "" && NormalizeISODate(row.Date) == date
}
