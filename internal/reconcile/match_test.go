package reconcile

import (
	"testing"

	"github.com/meridian-travel/backoffice/internal/upstream"
)

func TestNormalizeISODate(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15T18:45:00Z", "2024-03-15"},
		{"15/03/2024", "2024-03-15"},
		{"not-a-date", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeISODate(tc.in); got != tc.want {
			t.Fatalf("NormalizeISODate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchAgentEntry(t *testing.T) {
	criteria := MatchCriteria{
		EntryLabel: EntryLabel("VE 3/12"),
		Date:       "2024-03-15",
		Cash:       200,
		Bank:       100,
	}
	row := upstream.LedgerRow{Entry: "VE 3/12 (RP)", Date: "2024-03-15T00:00:00Z", Debit: 300}
	if !MatchAgentEntry(row, criteria) {
		t.Fatalf("expected agent entry to match")
	}

	// Debit is matched exactly, no tolerance.
	row.Debit = 300.01
	if MatchAgentEntry(row, criteria) {
		t.Fatalf("agent debit mismatch must not match")
	}

	row.Debit = 300
	row.Date = "2024-03-16"
	if MatchAgentEntry(row, criteria) {
		t.Fatalf("different date must not match")
	}

	row.Date = "2024-03-15"
	row.Entry = "VE 4/12 (RP)"
	if MatchAgentEntry(row, criteria) {
		t.Fatalf("different entry label must not match")
	}
}

func TestMatchBankEntryTolerance(t *testing.T) {
	criteria := MatchCriteria{
		EntryLabel: EntryLabel("TK 1/7"),
		Date:       "2024-03-15",
		Bank:       300,
	}
	row := upstream.LedgerRow{Entry: "TK 1/7 (RP)", Date: "2024-03-15", Credit: 300.01}
	if !MatchBankEntry(row, criteria) {
		t.Fatalf("credit within tolerance must match")
	}
	row.Credit = 300.02
	if MatchBankEntry(row, criteria) {
		t.Fatalf("credit beyond tolerance must not match")
	}
}

func TestMatchRejectsEmptyLabelOrDate(t *testing.T) {
	row := upstream.LedgerRow{Entry: " (RP)", Date: "2024-03-15", Debit: 100}
	if MatchAgentEntry(row, MatchCriteria{EntryLabel: "", Date: "2024-03-15", Cash: 100}) {
		t.Fatalf("empty criteria label must never match")
	}
	if MatchAgentEntry(upstream.LedgerRow{Entry: "VE 1/1 (RP)", Date: "garbage", Debit: 100},
		MatchCriteria{EntryLabel: EntryLabel("VE 1/1"), Date: "garbage", Cash: 100}) {
		t.Fatalf("unparsable dates must never match each other")
	}
}
