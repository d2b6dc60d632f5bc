package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-travel/backoffice/internal/dashboard"
	"github.com/meridian-travel/backoffice/internal/dashboard/export"
	"github.com/meridian-travel/backoffice/internal/shared"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

// StatsBackend fetches the backend's own headline counters, served next to
// the locally computed views for cross-checking.
type StatsBackend interface {
	Dashboard(ctx context.Context) (upstream.DashboardStats, error)
}

// Handler exposes the dashboard read views and their file exports.
type Handler struct {
	logger  *slog.Logger
	service *dashboard.Service
	stats   StatsBackend
}

// NewHandler wires the dashboard endpoints. stats may be nil, which leaves
// the upstream-stats route unmounted.
func NewHandler(logger *slog.Logger, service *dashboard.Service, stats StatsBackend) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, stats: stats}
}

// MountRoutes registers the view and export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.Summary)
	r.Get("/dashboard/ledger", h.RunningLedger)
	r.Get("/dashboard/vendors", h.Vendors)
	r.Get("/dashboard/agents", h.Agents)
	r.Get("/dashboard/banks", h.BankBalances)
	if h.stats != nil {
		r.Get("/dashboard/upstream-stats", h.UpstreamStats)
	}
	r.Get("/dashboard/export/ledger.csv", h.ExportLedgerCSV)
	r.Get("/dashboard/export/summary.csv", h.ExportSummaryCSV)
	r.Get("/dashboard/export/vendors.csv", h.ExportVendorsCSV)
	r.Get("/dashboard/export/agents.csv", h.ExportAgentsCSV)
	r.Get("/dashboard/export/workbook.xlsx", h.ExportWorkbook)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) fail(w http.ResponseWriter, route string, err error) {
	h.logger.Error("dashboard view", slog.String("route", route), slog.Any("error", err))
	status := http.StatusInternalServerError
	if errors.Is(err, shared.ErrUpstreamUnavailable) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) RunningLedger(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RunningLedger(r.Context())
	if err != nil {
		h.fail(w, "ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Vendors(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.Vendors(r.Context())
	if err != nil {
		h.fail(w, "vendors", err)
		return
	}
	writeJSON(w, http.StatusOK, parties)
}

func (h *Handler) Agents(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.Agents(r.Context())
	if err != nil {
		h.fail(w, "agents", err)
		return
	}
	writeJSON(w, http.StatusOK, parties)
}

func (h *Handler) UpstreamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "upstream-stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) BankBalances(w http.ResponseWriter, r *http.Request) {
	banks, err := h.service.BankBalances(r.Context())
	if err != nil {
		h.fail(w, "banks", err)
		return
	}
	writeJSON(w, http.StatusOK, banks)
}

func (h *Handler) ExportLedgerCSV(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RunningLedger(r.Context())
	if err != nil {
		h.fail(w, "export/ledger.csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="running-ledger.csv"`)
	if err := export.WriteLedgerCSV(w, view); err != nil {
		h.logger.Error("ledger csv export", slog.Any("error", err))
	}
}

func (h *Handler) ExportSummaryCSV(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, "export/summary.csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.csv"`)
	if err := export.WriteSummaryCSV(w, view); err != nil {
		h.logger.Error("summary csv export", slog.Any("error", err))
	}
}

func (h *Handler) ExportVendorsCSV(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.Vendors(r.Context())
	if err != nil {
		h.fail(w, "export/vendors.csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="vendors.csv"`)
	if err := export.WritePartiesCSV(w, parties); err != nil {
		h.logger.Error("vendors csv export", slog.Any("error", err))
	}
}

func (h *Handler) ExportAgentsCSV(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.Agents(r.Context())
	if err != nil {
		h.fail(w, "export/agents.csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="agents.csv"`)
	if err := export.WritePartiesCSV(w, parties); err != nil {
		h.logger.Error("agents csv export", slog.Any("error", err))
	}
}

func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.fail(w, "export/workbook.xlsx", err)
		return
	}
	ledgerView, err := h.service.RunningLedger(ctx)
	if err != nil {
		h.fail(w, "export/workbook.xlsx", err)
		return
	}
	vendors, err := h.service.Vendors(ctx)
	if err != nil {
		h.fail(w, "export/workbook.xlsx", err)
		return
	}
	agents, err := h.service.Agents(ctx)
	if err != nil {
		h.fail(w, "export/workbook.xlsx", err)
		return
	}
	banks, err := h.service.BankBalances(ctx)
	if err != nil {
		h.fail(w, "export/workbook.xlsx", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="backoffice.xlsx"`)
	payload := export.WorkbookPayload{
		Summary: summary,
		Ledger:  ledgerView,
		Vendors: vendors,
		Agents:  agents,
		Banks:   banks,
	}
	if err := export.WriteWorkbook(w, payload); err != nil {
		h.logger.Error("workbook export", slog.Any("error", err))
	}
}
