package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-travel/backoffice/internal/jobs"
	"github.com/meridian-travel/backoffice/internal/reconcile"
	"github.com/meridian-travel/backoffice/internal/shared"
)

// ReconcileCleanupJob prunes reconciliation sagas past their retention and
// idempotency keys old enough that a retry can no longer be in flight.
type ReconcileCleanupJob struct {
	Journal     *reconcile.Repository
	Idempotency *shared.IdempotencyStore
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewReconcileCleanupJob wires dependencies for the cleanup handler.
func NewReconcileCleanupJob(journal *reconcile.Repository, idempotency *shared.IdempotencyStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReconcileCleanupJob {
	return &ReconcileCleanupJob{Journal: journal, Idempotency: idempotency, Logger: logger, Metrics: metrics}
}

// Handle processes reconcile cleanup tasks.
func (j *ReconcileCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reconcile cleanup: handler not configured")
	}
	var payload ReconcileCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.SagaRetention <= 0 {
		payload.SagaRetention = 720 * time.Hour
	}
	if payload.IdempotencyRetention <= 0 {
		payload.IdempotencyRetention = 24 * time.Hour
	}

	tracker := j.metrics().Track(TaskReconcileCleanup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if j.Journal != nil {
		if err := j.Journal.Cleanup(ctx, payload.SagaRetention); err != nil {
			resultErr = err
			logger.Error("prune sagas", slog.Any("error", err))
			return resultErr
		}
	}
	if j.Idempotency != nil {
		if err := j.Idempotency.Cleanup(ctx, payload.IdempotencyRetention); err != nil {
			resultErr = err
			logger.Error("prune idempotency keys", slog.Any("error", err))
			return resultErr
		}
	}
	logger.Info("completed reconcile cleanup",
		slog.Duration("saga_retention", payload.SagaRetention),
		slog.Duration("idempotency_retention", payload.IdempotencyRetention))
	return resultErr
}

func (j *ReconcileCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReconcileCleanup))
	}
	return slog.Default().With(slog.String("job", TaskReconcileCleanup))
}

func (j *ReconcileCleanupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
