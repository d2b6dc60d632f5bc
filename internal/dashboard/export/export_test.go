package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/meridian-travel/backoffice/internal/booking"
	"github.com/meridian-travel/backoffice/internal/dashboard"
	"github.com/meridian-travel/backoffice/internal/ledger"
)

func sampleSummary() *dashboard.SummaryView {
	return &dashboard.SummaryView{
		TotalReceivable: 1500,
		TotalPaid:       230,
		TotalRemaining:  1270,
		Totals: ledger.GlobalTotals{
			TotalPaidCash: 160,
			TotalWithdraw: 40,
			CashInOffice:  120,
		},
		ClosingBalance: 120,
		Consistent:     true,
	}
}

func sampleLedger() *dashboard.LedgerView {
	return &dashboard.LedgerView{
		Transactions: []ledger.Transaction{
			{Type: ledger.TypeUmrah, PassengerName: "Sara Khan", BookingDate: "03/07/2025", PaidCash: 60, CashInOfficeRunning: 120},
			{Type: ledger.TypeTicket, PassengerName: "Ali Raza", BookingDate: "01/07/2025", PaidCash: 100, CashInOfficeRunning: 100},
		},
		ClosingBalance: 120,
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteSummaryCSV(buf, sampleSummary()); err != nil {
		t.Fatalf("summary csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(records))
	}
	if records[7][0] != "Cash In Office" || records[7][1] != "120.00" {
		t.Fatalf("unexpected cash-in-office row: %v", records[7])
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteLedgerCSV(buf, sampleLedger()); err != nil {
		t.Fatalf("ledger csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][0] != "Umrah" || records[1][1] != "Sara Khan" {
		t.Fatalf("newest row wrong: %v", records[1])
	}
	if records[1][9] != "120.00" {
		t.Fatalf("running balance wrong: %v", records[1])
	}
}

func TestWritePartiesCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	parties := []booking.PartyBalance{{Name: "Al Noor Travels", Credit: 100, Debit: 30, Remaining: 70}}
	if err := WritePartiesCSV(buf, parties); err != nil {
		t.Fatalf("parties csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(records))
	}
	if records[1][3] != "70.00" {
		t.Fatalf("remaining wrong: %v", records[1])
	}
}

func TestWriteWorkbookSheets(t *testing.T) {
	buf := &bytes.Buffer{}
	payload := WorkbookPayload{
		Summary: sampleSummary(),
		Ledger:  sampleLedger(),
		Vendors: []booking.PartyBalance{{Name: "Al Noor Travels", Credit: 100, Debit: 30, Remaining: 70}},
		Agents:  []booking.PartyBalance{{Name: "Bashir", Credit: 50, Debit: 0, Remaining: 50}},
		Banks:   []booking.BankBalance{{Bank: "meezan", Balance: 900}},
	}
	if err := WriteWorkbook(buf, payload); err != nil {
		t.Fatalf("workbook error: %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = book.Close() }()
	for _, sheet := range []string{"Summary", "Running Ledger", "Vendors", "Agents", "Banks"} {
		if idx, err := book.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("missing sheet %q (idx %d, err %v)", sheet, idx, err)
		}
	}
	value, err := book.GetCellValue("Banks", "A2")
	if err != nil || value != "meezan" {
		t.Fatalf("bank cell wrong: %q err %v", value, err)
	}
}
