package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/workshop/internal/service"
)

// ReportsHandler serves read-only views: service history and dashboard counters
type ReportsHandler struct {
	history   *service.HistoryService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

func NewReportsHandler(history *service.HistoryService, dashboard *service.DashboardService, logger *slog.Logger) *ReportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsHandler{history: history, dashboard: dashboard, logger: logger}
}

// ServiceHistory handles GET /api/service-history
func (h *ReportsHandler) ServiceHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list service history", err)
		return
	}
	writeData(w, http.StatusOK, records)
}

// DashboardStats handles GET /api/dashboard/stats
func (h *ReportsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "dashboard stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
