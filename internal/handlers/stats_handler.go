package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"stock-advisor-go/internal/service"
)

// StatsHandler serves the derived dashboard figures.
type StatsHandler struct {
	stats  service.StatsService
	logger *zap.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// RegisterRoutes registers stats routes on the authenticated and admin routers.
func (h *StatsHandler) RegisterRoutes(api, admin *mux.Router) {
	// Performance is public to every authenticated account; the track record
	// is the selling point shown to FREE users too.
	api.HandleFunc("/performance", h.Performance).Methods("GET")

	admin.HandleFunc("/stats", h.Dashboard).Methods("GET")
}

// Dashboard returns the admin headline counters.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", zap.Error(err))
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// Performance returns the overall and per-segment win-rate report.
func (h *StatsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.Performance(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute performance report", zap.Error(err))
		http.Error(w, "Failed to compute performance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
