package reconcile

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// AddPaymentRequest records a remaining payment against a booking.
type AddPaymentRequest struct {
	BookingKind string  `json:"booking_kind" validate:"required,oneof=ticket umrah services"`
	BookingID   string  `json:"booking_id" validate:"required"`
	PaymentDate string  `json:"payment_date" validate:"required"`
	PaidCash    float64 `json:"payed_cash" validate:"gte=0"`
	PaidBank    float64 `json:"paid_bank" validate:"gte=0"`
	BankTitle   string  `json:"bank_title,omitempty"`
	RecordedBy  string  `json:"recorded_by" validate:"required"`

	// IdempotencyKey is taken from the Idempotency-Key header, never the body.
	IdempotencyKey string `json:"-"`
}

// Validate applies struct rules plus the cross-field constraints the form
// enforced: at least one amount positive, and a bank payment needs a bank.
func (r AddPaymentRequest) Validate(v *validator.Validate) error {
	if err := v.Struct(r); err != nil {
		return err
	}
	if r.PaidCash <= 0 && r.PaidBank <= 0 {
		return errors.New("at least one of payed_cash or paid_bank must be positive")
	}
	if r.PaidBank > 0 && r.BankTitle == "" {
		return errors.New("bank_title is required when paid_bank is positive")
	}
	return nil
}

// DeletePaymentRequest reverses a payment and its derived ledger entries.
type DeletePaymentRequest struct {
	BookingKind string `json:"booking_kind" validate:"required,oneof=ticket umrah services"`
	BookingID   string `json:"booking_id" validate:"required"`
	PaymentID   string `json:"payment_id" validate:"required"`

	// Force continues the deletion even when a derived entry cannot be
	// matched. The first attempt without it surfaces the match report so
	// the user can confirm.
	Force bool `json:"force"`
}

// MatchReport names which derived entries were searched for and whether
// each was located. It is returned alongside ErrMatchNotFound so the user
// is prompted instead of the wrong entry being deleted silently.
type MatchReport struct {
	AgentRequired bool   `json:"agent_required"`
	AgentFound    bool   `json:"agent_found"`
	AgentEntryID  string `json:"agent_entry_id,omitempty"`
	BankRequired  bool   `json:"bank_required"`
	BankFound     bool   `json:"bank_found"`
	BankEntryID   string `json:"bank_entry_id,omitempty"`
}

// Missing lists the derived entries that were required but not located.
func (r MatchReport) Missing() []string {
	var missing []string
	if r.AgentRequired && !r.AgentFound {
		missing = append(missing, StepAgentEntry)
	}
	if r.BankRequired && !r.BankFound {
		missing = append(missing, StepBankEntry)
	}
	return missing
}
