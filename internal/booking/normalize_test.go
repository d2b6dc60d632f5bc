package booking

import (
	"math"
	"testing"
	"time"
)

func TestSafeFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"numeric string", "12.5", 12.5},
		{"negative", -3, -3},
		{"negative string", "-3", -3},
		{"float", 7.25, 7.25},
		{"trailing junk", "12.5 PKR", 12.5},
		{"whitespace", "  40 ", 40},
		{"bool", true, 0},
		{"double dot", "1.2.3", 1.2},
		{"exponent", "1e5", 100000},
		{"exponent with sign", "2.5e-2", 0.025},
		{"exponent then junk", "1e3 PKR", 1000},
		{"bare exponent marker", "1e", 1},
		{"signless exponent tail", "1e-", 1},
	}
	for _, tc := range cases {
		got := SafeFloat(tc.in)
		if math.IsNaN(got) {
			t.Fatalf("%s: SafeFloat returned NaN", tc.name)
		}
		if got != tc.want {
			t.Fatalf("%s: SafeFloat(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestSafeTimestamp(t *testing.T) {
	iso := "2024-03-15T10:30:00Z"
	wantISO := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC).UnixMilli()
	dateOnly := "2024-03-15"
	wantDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()

	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"nil", nil, 0},
		{"empty", "", 0},
		{"garbage", "not-a-date", 0},
		{"iso datetime", iso, wantISO},
		{"date only", dateOnly, wantDate},
		{"epoch millis", float64(wantISO), wantISO},
		{"zero time", time.Time{}, 0},
	}
	for _, tc := range cases {
		if got := SafeTimestamp(tc.in); got != tc.want {
			t.Fatalf("%s: SafeTimestamp(%v) = %d, want %d", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestSafeDateLabel(t *testing.T) {
	if got := SafeDateLabel("not-a-date"); got != "--" {
		t.Fatalf("invalid date label %q, want --", got)
	}
	if got := SafeDateLabel("2024-03-15"); got != "15/03/2024" {
		t.Fatalf("date label %q, want 15/03/2024", got)
	}
}

func TestPassengerName(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"plain string", "Ali Raza", "Ali Raza"},
		{"json array string", `[{"name":"Sara Khan"}]`, "Sara Khan"},
		{"json object string", `{"passenger_name":"Bilal"}`, "Bilal"},
		{"malformed json", `[{"name":`, ""},
		{"pre-parsed array", []any{map[string]any{"name": "Hamza"}}, "Hamza"},
		{"pre-parsed object", map[string]any{"full_name": "Noor"}, "Noor"},
		{"empty array", []any{}, ""},
		{"number", 42.0, ""},
	}
	for _, tc := range cases {
		if got := PassengerName(tc.in, nil); got != tc.want {
			t.Fatalf("%s: PassengerName = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeRecordNeverMissesAmounts(t *testing.T) {
	tx := NormalizeRecord("Ticket", map[string]any{
		"entry":             "TK 3/12",
		"employee_name":     "Adeel",
		"receivable_amount": "1500",
		"payed_cash":        "500",
		"paid_in_bank":      nil,
		"remaining_amount":  "abc",
		"booking_date":      "2024-03-15",
		"passengerDetail":   `[{"name":"Sara Khan"}]`,
	}, nil)

	if tx.Receivable != 1500 || tx.PaidCash != 500 {
		t.Fatalf("amounts not coerced: %+v", tx)
	}
	if tx.PaidInBank != 0 || tx.Remaining != 0 || tx.Withdraw != 0 || tx.Profit != 0 {
		t.Fatalf("absent amounts must be zero: %+v", tx)
	}
	if tx.PassengerName != "Sara Khan" {
		t.Fatalf("passenger name %q", tx.PassengerName)
	}
	if tx.Timestamp == 0 || tx.BookingDate != "15/03/2024" {
		t.Fatalf("date not normalized: %+v", tx)
	}
}

func TestNormalizeRecordModuleOverrides(t *testing.T) {
	tx := NormalizeRecord("Expenses", map[string]any{
		"expense_amount": "250.75",
		"expense_date":   "2024-01-10",
	}, nil)
	if tx.Withdraw != 250.75 {
		t.Fatalf("expense withdraw %v, want 250.75", tx.Withdraw)
	}

	vendor := NormalizeRecord("Vendor", map[string]any{"debit": 90}, nil)
	if vendor.Withdraw != 90 {
		t.Fatalf("vendor withdraw %v, want 90", vendor.Withdraw)
	}
}
