package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/ishop4u/internal/domain"
)

type Dashboard interface {
	Overview(ctx context.Context, tr domain.TimeRange) (*domain.Overview, error)
}

type DashboardHandler struct {
	dashboard Dashboard
	timeout   time.Duration
}

func NewDashboardHandler(d Dashboard, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{dashboard: d, timeout: timeout}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	tr, err := domain.ParseTimeRange(r.URL.Query().Get("time_range"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_time_range", err.Error())
		return
	}

	overview, err := h.dashboard.Overview(ctx, tr)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, overview)
}
