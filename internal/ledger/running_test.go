package ledger

import (
	"math/rand"
	"testing"
)

func sample() []Transaction {
	return []Transaction{
		{Type: TypeTicket, Entry: "TK 1/7", PaidCash: 100, Timestamp: 1},
		{Type: TypeExpenses, Entry: "EX 1/7", Withdraw: 40, Timestamp: 2},
		{Type: TypeUmrah, Entry: "UM 1/7", PaidCash: 50, Timestamp: 3},
	}
}

func TestComputeRunningBalances(t *testing.T) {
	// Feed the same records in several shuffled orders; the accumulation
	// must always happen oldest first.
	for i := 0; i < 10; i++ {
		txs := sample()
		rand.Shuffle(len(txs), func(a, b int) { txs[a], txs[b] = txs[b], txs[a] })

		got, closing := ComputeRunning(txs)
		if len(got) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(got))
		}
		want := map[int64]float64{1: 100, 2: 60, 3: 110}
		for _, tx := range got {
			if tx.CashInOfficeRunning != want[tx.Timestamp] {
				t.Fatalf("t=%d: running balance %.2f, want %.2f", tx.Timestamp, tx.CashInOfficeRunning, want[tx.Timestamp])
			}
		}
		if closing != 110 {
			t.Fatalf("closing balance %.2f, want 110", closing)
		}
		// Display order is newest first.
		if got[0].Timestamp != 3 || got[2].Timestamp != 1 {
			t.Fatalf("display order wrong: %d..%d", got[0].Timestamp, got[2].Timestamp)
		}
	}
}

func TestComputeRunningRoundsEachStep(t *testing.T) {
	txs := []Transaction{
		{Type: TypeTicket, PaidCash: 0.105, Timestamp: 1},
		{Type: TypeTicket, PaidCash: 0.105, Timestamp: 2},
	}
	got, _ := ComputeRunning(txs)
	// 0.105 rounds to 0.11 at the first step, so the second step yields
	// 0.22 rather than round(0.21, 2).
	if got[1].CashInOfficeRunning != 0.11 {
		t.Fatalf("first step %.4f, want 0.11", got[1].CashInOfficeRunning)
	}
	if got[0].CashInOfficeRunning != 0.22 {
		t.Fatalf("second step %.4f, want 0.22", got[0].CashInOfficeRunning)
	}
}

func TestComputeRunningStableOnTies(t *testing.T) {
	txs := []Transaction{
		{Type: TypeTicket, Entry: "TK 1/7", PaidCash: 10, Timestamp: 5},
		{Type: TypeTicket, Entry: "TK 2/7", PaidCash: 20, Timestamp: 5},
	}
	got, _ := ComputeRunning(txs)
	// Insertion order decides accumulation order on equal timestamps.
	byEntry := map[string]float64{}
	for _, tx := range got {
		byEntry[tx.Entry] = tx.CashInOfficeRunning
	}
	if byEntry["TK 1/7"] != 10 || byEntry["TK 2/7"] != 30 {
		t.Fatalf("tie-break accumulation wrong: %#v", byEntry)
	}
}

func TestClosingBalanceOnTiedNewestTimestamps(t *testing.T) {
	// Date-only source strings parse to midnight, so every same-day booking
	// shares a timestamp. The stable descending sort then leaves the
	// first-accumulated row on top of the display slice; the closing balance
	// must still be the final accumulated figure, not that row's.
	txs := []Transaction{
		{Type: TypeTicket, Entry: "TK 1/7", PaidCash: 10, Timestamp: 5},
		{Type: TypeTicket, Entry: "TK 2/7", PaidCash: 20, Timestamp: 5},
	}
	got, closing := ComputeRunning(txs)
	if closing != 30 {
		t.Fatalf("closing balance %.2f, want 30", closing)
	}
	if got[0].CashInOfficeRunning != 10 {
		t.Fatalf("tied display head %.2f, want the first-accumulated 10", got[0].CashInOfficeRunning)
	}
	if !CheckConsistency(GlobalTotals{CashInOffice: 30}, closing) {
		t.Fatalf("consistency check must accept the final balance")
	}
}

func TestClosingBalance(t *testing.T) {
	if _, closing := ComputeRunning(nil); closing != 0 {
		t.Fatalf("empty ledger closing balance must be 0")
	}
	_, closing := ComputeRunning(sample())
	if closing != 110 {
		t.Fatalf("closing balance %.2f, want 110", closing)
	}
}

func TestInvalidDatesSortFirst(t *testing.T) {
	txs := []Transaction{
		{Type: TypeTicket, PaidCash: 5, Timestamp: 100},
		{Type: TypeExpenses, Withdraw: 2, Timestamp: 0}, // unparsable source date
	}
	got, closing := ComputeRunning(txs)
	if got[1].Timestamp != 0 || got[1].CashInOfficeRunning != -2 {
		t.Fatalf("epoch-zero record must accumulate first, got %+v", got[1])
	}
	if closing != 3 {
		t.Fatalf("closing balance %.2f, want 3", closing)
	}
}
