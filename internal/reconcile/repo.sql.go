package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-travel/backoffice/internal/shared"
)

// Repository persists the saga journal. Booking data itself lives in the
// upstream backend; only our own reconciliation bookkeeping is local.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the journal repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSaga inserts the saga header row.
func (r *Repository) CreateSaga(ctx context.Context, saga *Saga) error {
	if r == nil || r.pool == nil {
		return errors.New("reconcile: repository not initialised")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reconciliation_sagas (id, operation, booking_kind, booking_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		saga.ID, saga.Operation, saga.BookingKind, saga.BookingID, string(saga.State), saga.CreatedAt, saga.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reconcile: create saga: %w", err)
	}
	return nil
}

// RecordStep appends one step outcome to the journal.
func (r *Repository) RecordStep(ctx context.Context, sagaID uuid.UUID, step Step) error {
	if r == nil || r.pool == nil {
		return errors.New("reconcile: repository not initialised")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reconciliation_saga_steps (saga_id, name, status, detail, at)
		VALUES ($1, $2, $3, $4, $5)`,
		sagaID, step.Name, string(step.Status), step.Detail, step.At)
	if err != nil {
		return fmt.Errorf("reconcile: record step: %w", err)
	}
	return nil
}

// UpdateState moves the saga to a new lifecycle state.
func (r *Repository) UpdateState(ctx context.Context, sagaID uuid.UUID, state State) error {
	if r == nil || r.pool == nil {
		return errors.New("reconcile: repository not initialised")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE reconciliation_sagas SET state = $2, updated_at = $3 WHERE id = $1`,
		sagaID, string(state), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reconcile: update state: %w", err)
	}
	return nil
}

// GetSaga loads one saga with its steps in recorded order.
func (r *Repository) GetSaga(ctx context.Context, id uuid.UUID) (*Saga, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("reconcile: repository not initialised")
	}
	saga := &Saga{}
	var state string
	err := r.pool.QueryRow(ctx, `
		SELECT id, operation, booking_kind, booking_id, state, created_at, updated_at
		FROM reconciliation_sagas WHERE id = $1`, id).
		Scan(&saga.ID, &saga.Operation, &saga.BookingKind, &saga.BookingID, &state, &saga.CreatedAt, &saga.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("reconcile: get saga: %w", err)
	}
	saga.State = State(state)

	rows, err := r.pool.Query(ctx, `
		SELECT name, status, detail, at
		FROM reconciliation_saga_steps WHERE saga_id = $1 ORDER BY at, name`, id)
	if err != nil {
		return nil, fmt.Errorf("reconcile: get saga steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var step Step
		var status string
		if err := rows.Scan(&step.Name, &status, &step.Detail, &step.At); err != nil {
			return nil, fmt.Errorf("reconcile: scan step: %w", err)
		}
		step.Status = StepStatus(status)
		saga.Steps = append(saga.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reconcile: iterate steps: %w", err)
	}
	return saga, nil
}

// Cleanup prunes journal entries older than retention.
func (r *Repository) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if r == nil || r.pool == nil {
		return nil
	}
	cutoff := time.Now().Add(-olderThan)
	if _, err := r.pool.Exec(ctx, `
		DELETE FROM reconciliation_saga_steps WHERE saga_id IN
			(SELECT id FROM reconciliation_sagas WHERE created_at < $1)`, cutoff); err != nil {
		return fmt.Errorf("reconcile: cleanup steps: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `
		DELETE FROM reconciliation_sagas WHERE created_at < $1`, cutoff); err != nil {
		return fmt.Errorf("reconcile: cleanup sagas: %w", err)
	}
	return nil
}
