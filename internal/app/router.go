package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-travel/backoffice/internal/admin"
	"github.com/meridian-travel/backoffice/internal/archive"
	dashboardhttp "github.com/meridian-travel/backoffice/internal/dashboard/http"
	"github.com/meridian-travel/backoffice/internal/observability"
	reconcilehttp "github.com/meridian-travel/backoffice/internal/reconcile/http"
	"github.com/meridian-travel/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	DashboardHandler *dashboardhttp.Handler
	ReconcileHandler *reconcilehttp.Handler
	ArchiveHandler   *archive.Handler
	AdminHandler     *admin.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with back-office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.DashboardHandler != nil {
		params.DashboardHandler.MountRoutes(r)
	}
	if params.ReconcileHandler != nil {
		params.ReconcileHandler.MountRoutes(r)
	}
	if params.ArchiveHandler != nil {
		params.ArchiveHandler.MountRoutes(r)
	}
	if params.AdminHandler != nil {
		params.AdminHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
