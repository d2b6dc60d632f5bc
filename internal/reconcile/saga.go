package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of one reconciliation saga.
type State string

const (
	// StatePendingSubmit is set while the fan-out writes are in flight.
	StatePendingSubmit State = "pending-submit"
	// StateCommitted means the payment row and every required derived
	// entry were written.
	StateCommitted State = "committed"
	// StatePartiallyCommitted means the payment row committed but a later
	// derived write failed. There is no rollback; the partial state is
	// left for manual cleanup.
	StatePartiallyCommitted State = "partially-committed"
	// StateFailed means the first write never committed; nothing to clean up.
	StateFailed State = "failed"
	// StatePendingDelete is set while a deletion saga is matching and
	// removing derived entries.
	StatePendingDelete State = "pending-delete"
	// StateReconciledDeleted means every located entry and the payment row
	// were removed.
	StateReconciledDeleted State = "reconciled-deleted"
	// StatePartiallyReconciled means the payment row was deleted but one
	// or more derived entries were not found or not removed. Terminal;
	// requires manual cleanup.
	StatePartiallyReconciled State = "partially-reconciled"
)

// StepStatus is the recorded outcome of one saga step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Step names used by both the add and delete sagas.
const (
	StepPayment    = "payment"
	StepBankEntry  = "bank_entry"
	StepAgentEntry = "agent_entry"
)

// Step is one recorded write or delete attempt within a saga.
type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
	At     time.Time  `json:"at"`
}

// Saga records the 1-to-3 write fan-out (or its reversal) for one payment,
// step by step, so partial failure states are inspectable instead of only
// visible in logs.
type Saga struct {
	ID          uuid.UUID `json:"id"`
	Operation   string    `json:"operation"` // "add-payment" or "delete-payment"
	BookingKind string    `json:"booking_kind"`
	BookingID   string    `json:"booking_id"`
	State       State     `json:"state"`
	Steps       []Step    `json:"steps"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSaga starts a saga in the pending state appropriate for the operation.
func NewSaga(operation, bookingKind, bookingID string) *Saga {
	state := StatePendingSubmit
	if operation == "delete-payment" {
		state = StatePendingDelete
	}
	now := time.Now().UTC()
	return &Saga{
		ID:          uuid.New(),
		Operation:   operation,
		BookingKind: bookingKind,
		BookingID:   bookingID,
		State:       state,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
