package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
	"github.com/tradelink/backend/internal/middleware"
	"github.com/tradelink/backend/pkg/response"
)

type DashboardHandler struct {
	dashboard *domain.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *domain.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// GetStats handles GET /dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	stats, err := h.dashboard.GetStats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load dashboard stats", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.OK(w, stats)
}
