package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/modesense/tmd-backend-go/internal/metrics"
	"github.com/modesense/tmd-backend-go/internal/models"
	"github.com/modesense/tmd-backend-go/internal/repository"
)

// VehicleService handles business logic for transit vehicle positions
type VehicleService struct {
	repo      *repository.VehicleRepository
	collector *metrics.Collector
	log       *logrus.Logger
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(repo *repository.VehicleRepository, collector *metrics.Collector, log *logrus.Logger) *VehicleService {
	return &VehicleService{repo: repo, collector: collector, log: log}
}

// Ingest validates and stores a batch of vehicle observations. Rows with an
// unknown route type are kept; the fusion scorer treats them as non-transit.
func (s *VehicleService) Ingest(ctx context.Context, positions []models.VehiclePosition) (int, error) {
	for i := range positions {
		p := &positions[i]
		if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
			return 0, fmt.Errorf("vehicle %s: coordinates out of range (%.4f, %.4f)",
				p.VehicleID, p.Latitude, p.Longitude)
		}
		if p.Timestamp <= 0 {
			return 0, fmt.Errorf("vehicle %s: missing timestamp", p.VehicleID)
		}
		if _, known := models.RouteTypeToMode[p.RouteType]; !known {
			p.RouteType = models.RouteTypeOther
		}
	}

	if err := s.repo.UpsertPositions(ctx, positions); err != nil {
		return 0, fmt.Errorf("failed to store vehicle positions: %w", err)
	}

	s.collector.VehiclesIngested.Add(float64(len(positions)))
	s.log.WithField("count", len(positions)).Debug("stored vehicle positions")
	return len(positions), nil
}

// Nearby returns recent vehicles around a point, applying lookup defaults.
func (s *VehicleService) Nearby(ctx context.Context, q models.VehicleQuery, now int64) ([]models.VehiclePosition, error) {
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = DefaultVehicleRadiusMeters
	}
	if q.WindowSecs <= 0 {
		q.WindowSecs = DefaultVehicleWindowSecs
	}

	vehicles, err := s.repo.Nearby(ctx, q, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby vehicles: %w", err)
	}
	return vehicles, nil
}
