package domain

import (
	"context"

	"github.com/google/uuid"
)

// DashboardStats are the counters shown on the landing view.
type DashboardStats struct {
	ActiveConnections int `json:"active_connections"`
	Conversations     int `json:"conversations"`
	// PendingRequests counts pending connections awaiting this user's
	// response; requests the user sent are not included.
	PendingRequests int `json:"pending_requests"`
}

// StatsRepository defines aggregate counters over the ledger stores.
type StatsRepository interface {
	CountDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}

type DashboardService struct {
	repo StatsRepository
}

func NewDashboardService(repo StatsRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) GetStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	return s.repo.CountDashboardStats(ctx, userID)
}
