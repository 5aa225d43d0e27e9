package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/db"
)

// AnalyticsService serves the seller dashboard aggregates.
type AnalyticsService struct {
	orders locationStats
}

func NewAnalyticsService(orders locationStats) *AnalyticsService {
	return &AnalyticsService{orders: orders}
}

// Locations reports order volume and revenue per shipping destination,
// busiest first.
func (s *AnalyticsService) Locations(ctx context.Context, storeID uuid.UUID) ([]db.LocationStat, error) {
	stats, err := s.orders.LocationStats(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []db.LocationStat{}
	}
	return stats, nil
}
