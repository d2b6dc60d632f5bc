package export

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/dashboard"
)

var printer = message.NewPrinter(language.English)

func formatAmount(value float64) string {
	return printer.Sprintf("%.2f", value)
}

// WriteSummaryCSV serialises the dashboard headline figures to CSV.
func WriteSummaryCSV(w io.Writer, summary *dashboard.SummaryView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Total Receivable", formatAmount(summary.TotalReceivable)},
		{"Total Paid", formatAmount(summary.TotalPaid)},
		{"Total Remaining", formatAmount(summary.TotalRemaining)},
		{"Total Profit", formatAmount(summary.TotalProfit)},
		{"Total Paid Cash", formatAmount(summary.Totals.TotalPaidCash)},
		{"Total Withdraw", formatAmount(summary.Totals.TotalWithdraw)},
		{"Cash In Office", formatAmount(summary.Totals.CashInOffice)},
		{"Closing Balance", formatAmount(summary.ClosingBalance)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLedgerCSV emits the running cash ledger, newest first, one row per
// transaction.
func WriteLedgerCSV(w io.Writer, view *dashboard.LedgerView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	header := []string{"Type", "Passenger", "Booking Date", "Receivable", "Paid Cash", "Paid In Bank", "Remaining", "Withdraw", "Profit", "Cash In Office"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, tx := range view.Transactions {
		if err := writer.Write([]string{
			string(tx.Type),
			tx.PassengerName,
			tx.BookingDate,
			formatAmount(tx.Receivable),
			formatAmount(tx.PaidCash),
			formatAmount(tx.PaidInBank),
			formatAmount(tx.Remaining),
			formatAmount(tx.Withdraw),
			formatAmount(tx.Profit),
			formatAmount(tx.CashInOfficeRunning),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePartiesCSV prints vendor or agent balances to CSV.
func WritePartiesCSV(w io.Writer, parties []booking.PartyBalance) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Name", "Credit", "Debit", "Remaining"}); err != nil {
		return err
	}
	for _, party := range parties {
		if err := writer.Write([]string{
			party.Name,
			formatAmount(party.Credit),
			formatAmount(party.Debit),
			formatAmount(party.Remaining),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
