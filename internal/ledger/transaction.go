package ledger

// Type identifies the booking module a transaction originated from.
type Type string

const (
	TypeTicket         Type = "Ticket"
	TypeUmrah          Type = "Umrah"
	TypeVisaProcessing Type = "VisaProcessing"
	TypeGamcaToken     Type = "GamcaToken"
	TypeServices       Type = "Services"
	TypeNavtcc         Type = "Navtcc"
	TypeProtector      Type = "Protector"
	TypeExpenses       Type = "Expenses"
	TypeRefunded       Type = "Refunded"
	TypeVendor         Type = "Vendor"
)

// cashGenerating lists the modules whose paid cash increases the office balance.
var cashGenerating = map[Type]bool{
	TypeTicket:         true,
	TypeUmrah:          true,
	TypeVisaProcessing: true,
	TypeGamcaToken:     true,
	TypeServices:       true,
	TypeNavtcc:         true,
}

// withdrawing lists the modules whose withdraw amount decreases the office balance.
var withdrawing = map[Type]bool{
	TypeProtector: true,
	TypeExpenses:  true,
	TypeRefunded:  true,
	TypeVendor:    true,
}

// CashGenerating reports whether paid cash of this module type counts toward cash in office.
func CashGenerating(t Type) bool { return cashGenerating[t] }

// Withdrawing reports whether withdrawals of this module type count against cash in office.
func Withdrawing(t Type) bool { return withdrawing[t] }

// Transaction is the normalized shape every booking module collapses into.
// All financial fields are guaranteed numeric: the aggregator coerces
// missing or malformed source values to zero before a Transaction is built,
// so downstream consumers never see NaN.
type Transaction struct {
	Type          Type   `json:"type"`
	EmployeeName  string `json:"employee_name"`
	Entry         string `json:"entry"`
	PassengerName string `json:"passenger_name,omitempty"`

	Receivable float64 `json:"receivable_amount"`
	PaidCash   float64 `json:"paid_cash"`
	PaidInBank float64 `json:"paid_in_bank"`
	Remaining  float64 `json:"remaining_amount"`
	Withdraw   float64 `json:"withdraw"`
	Profit     float64 `json:"profit"`

	// BookingDate is the display label; Timestamp is the sortable epoch
	// millisecond value. Invalid dates carry Timestamp 0 and sort first.
	BookingDate string `json:"booking_date"`
	Timestamp   int64  `json:"timestamp"`

	// CashInOfficeRunning is populated only by ComputeRunning.
	CashInOfficeRunning float64 `json:"cash_in_office_running"`
}
