package handler

import (
	"net/http"

	"github.com/pizza-nz/print-routing-service/internal/service"
)

// StatsHandler serves fleet statistics
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{
		stats: stats,
	}
}

// HandleStatistics returns a point-in-time fleet statistics snapshot
func (h *StatsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := h.stats.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, snapshot)
}
