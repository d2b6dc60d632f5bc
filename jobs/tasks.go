package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup rebuilds the dashboard snapshot so the first page
	// load after a cache bump does not pay the upstream fan-out.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskReconcileCleanup prunes finished sagas and expired idempotency keys.
	TaskReconcileCleanup = "reconcile:cleanup"
)

// DashboardWarmupPayload parameterises a warmup run.
type DashboardWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// ReconcileCleanupPayload carries the retention windows for a cleanup run.
type ReconcileCleanupPayload struct {
	SagaRetention        time.Duration `json:"saga_retention"`
	IdempotencyRetention time.Duration `json:"idempotency_retention"`
}

// NewReconcileCleanupTask constructs an Asynq task.
func NewReconcileCleanupTask(payload ReconcileCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileCleanup, data), nil
}
