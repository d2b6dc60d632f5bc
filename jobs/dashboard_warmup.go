package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-travel/backoffice/internal/dashboard"
	jobmetrics "github.com/meridian-travel/backoffice/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardWarmupJob rebuilds the dashboard snapshot in the background so
// interactive reads find a warm cache. It also runs the cash consistency
// check, which is cheap here and easy to alert on.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc *dashboard.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: svc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}
	logger.Info("starting dashboard warmup")

	start := j.now()
	warmCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	view, err := j.Dashboard.Summary(warmCtx)
	if err != nil {
		resultErr = err
		logger.Error("build dashboard snapshot", slog.Any("error", err))
		return resultErr
	}
	if !view.Consistent {
		j.metrics().AddDivergence()
		logger.Warn("cash figures diverge",
			slog.Float64("global", view.Totals.CashInOffice),
			slog.Float64("closing_balance", view.ClosingBalance))
	}
	if len(view.Degraded) > 0 {
		logger.Warn("snapshot built with degraded modules", slog.Any("modules", view.Degraded))
	}

	logger.Info("completed dashboard warmup",
		slog.Float64("cash_in_office", view.Totals.CashInOffice),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
