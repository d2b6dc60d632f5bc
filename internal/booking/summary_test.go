package booking

import "testing"

func TestGroupPartiesSumsPerName(t *testing.T) {
	records := []map[string]any{
		{"vender_name": "Al Noor Travels", "credit": 100, "debit": 0},
		{"vender_name": "Al Noor Travels", "credit": 0, "debit": 30},
		{"vender_name": "Sky Express", "credit": "50", "debit": "5"},
		{"credit": 999}, // nameless rows are dropped
	}
	got := GroupParties(records, vendorNameKeys)
	if len(got) != 2 {
		t.Fatalf("expected 2 parties, got %d: %#v", len(got), got)
	}
	if got[0].Name != "Al Noor Travels" || got[0].Credit != 100 || got[0].Debit != 30 || got[0].Remaining != 70 {
		t.Fatalf("unexpected first party %+v", got[0])
	}
	if got[1].Name != "Sky Express" || got[1].Remaining != 45 {
		t.Fatalf("unexpected second party %+v", got[1])
	}
}

func TestGroupPartiesStringAmounts(t *testing.T) {
	records := []map[string]any{
		{"agent_name": "Acme", "credit": "abc", "debit": "12.5"},
	}
	got := GroupParties(records, agentNameKeys)
	if len(got) != 1 || got[0].Credit != 0 || got[0].Debit != 12.5 || got[0].Remaining != -12.5 {
		t.Fatalf("unexpected grouping %#v", got)
	}
}
