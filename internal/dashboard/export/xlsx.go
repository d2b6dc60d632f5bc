package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/dashboard"
	"github.com/meridian-travel/backoffice/internal/ledger"
)

// WorkbookPayload bundles every dashboard view destined for one XLSX export.
type WorkbookPayload struct {
	Summary *dashboard.SummaryView
	Ledger  *dashboard.LedgerView
	Vendors []booking.PartyBalance
	Agents  []booking.PartyBalance
	Banks   []booking.BankBalance
}

// WriteWorkbook renders the whole back-office state as a multi-sheet
// spreadsheet: headline figures, the running ledger and the party balances.
func WriteWorkbook(w io.Writer, payload WorkbookPayload) error {
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	if err := writeSummarySheet(book, payload.Summary); err != nil {
		return err
	}
	if err := writeLedgerSheet(book, payload.Ledger); err != nil {
		return err
	}
	if err := writePartySheet(book, "Vendors", payload.Vendors); err != nil {
		return err
	}
	if err := writePartySheet(book, "Agents", payload.Agents); err != nil {
		return err
	}
	if err := writeBankSheet(book, payload.Banks); err != nil {
		return err
	}
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return book.Write(w)
}

func writeRow(book *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return book.SetSheetRow(sheet, cell, &values)
}

func writeSummarySheet(book *excelize.File, summary *dashboard.SummaryView) error {
	const sheet = "Summary"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Receivable", summary.TotalReceivable},
		{"Total Paid", summary.TotalPaid},
		{"Total Remaining", summary.TotalRemaining},
		{"Total Profit", summary.TotalProfit},
		{"Total Paid Cash", summary.Totals.TotalPaidCash},
		{"Total Withdraw", summary.Totals.TotalWithdraw},
		{"Cash In Office", summary.Totals.CashInOffice},
		{"Closing Balance", summary.ClosingBalance},
	}
	kinds := make([]string, 0, len(summary.CountsByType))
	for kind := range summary.CountsByType {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		rows = append(rows, []any{fmt.Sprintf("%s Bookings", kind), summary.CountsByType[ledger.Type(kind)]})
	}
	for i, values := range rows {
		if err := writeRow(book, sheet, i+1, values); err != nil {
			return err
		}
	}
	return nil
}

func writeLedgerSheet(book *excelize.File, view *dashboard.LedgerView) error {
	const sheet = "Running Ledger"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"Type", "Passenger", "Booking Date", "Receivable", "Paid Cash", "Paid In Bank", "Remaining", "Withdraw", "Profit", "Cash In Office"}
	if err := writeRow(book, sheet, 1, header); err != nil {
		return err
	}
	for i, tx := range view.Transactions {
		values := []any{
			string(tx.Type),
			tx.PassengerName,
			tx.BookingDate,
			tx.Receivable,
			tx.PaidCash,
			tx.PaidInBank,
			tx.Remaining,
			tx.Withdraw,
			tx.Profit,
			tx.CashInOfficeRunning,
		}
		if err := writeRow(book, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writePartySheet(book *excelize.File, sheet string, parties []booking.PartyBalance) error {
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRow(book, sheet, 1, []any{"Name", "Credit", "Debit", "Remaining"}); err != nil {
		return err
	}
	for i, party := range parties {
		if err := writeRow(book, sheet, i+2, []any{party.Name, party.Credit, party.Debit, party.Remaining}); err != nil {
			return err
		}
	}
	return nil
}

func writeBankSheet(book *excelize.File, banks []booking.BankBalance) error {
	const sheet = "Banks"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRow(book, sheet, 1, []any{"Bank", "Balance"}); err != nil {
		return err
	}
	for i, bank := range banks {
		if err := writeRow(book, sheet, i+2, []any{bank.Bank, bank.Balance}); err != nil {
			return err
		}
	}
	return nil
}
