package handlers

import (
	"net/http"

	"github.com/nextgencrm/nextgencrm-go/internal/infra/database"
)

type DashboardHandler struct {
	stats *database.StatsRepository
}

func NewDashboardHandler(stats *database.StatsRepository) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.DashboardStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	activities, err := h.stats.RecentActivities(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load recent activities")
		return
	}

	writeJSON(w, http.StatusOK, activities)
}
